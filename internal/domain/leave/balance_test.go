package leave

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyKeepsRemainingInvariant(t *testing.T) {
	b := newBalance("u1", "t1", 2026, dec("25"))

	steps := []struct {
		event Event
		days  string
	}{
		{EventPending, "5"},
		{EventApproved, "5"},
		{EventPending, "3"},
		{EventRejected, "3"},
		{EventCancelled, "2"},
	}

	for _, step := range steps {
		if err := b.apply(step.event, dec(step.days)); err != nil {
			t.Fatalf("apply %s: %v", step.event, err)
		}
		want := b.TotalAllowance.Sub(b.UsedDays).Sub(b.PendingDays)
		if !b.RemainingDays.Equal(want) {
			t.Fatalf("after %s: remaining = %s, want %s", step.event, b.RemainingDays, want)
		}
	}

	if !b.UsedDays.Equal(dec("3")) {
		t.Fatalf("used = %s, want 3", b.UsedDays)
	}
	if !b.PendingDays.IsZero() {
		t.Fatalf("pending = %s, want 0", b.PendingDays)
	}
	if !b.RemainingDays.Equal(dec("22")) {
		t.Fatalf("remaining = %s, want 22", b.RemainingDays)
	}
}

func TestApplyUnknownEvent(t *testing.T) {
	b := newBalance("u1", "t1", 2026, dec("25"))
	err := b.apply(Event("ESCALATED"), dec("1"))
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}

func TestApplyDoesNotClamp(t *testing.T) {
	b := newBalance("u1", "t1", 2026, dec("5"))
	if err := b.apply(EventApproved, dec("8")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !b.PendingDays.Equal(dec("-8")) {
		t.Fatalf("pending = %s, want -8", b.PendingDays)
	}
	if !b.RemainingDays.Equal(dec("5")) {
		t.Fatalf("remaining = %s, want 5", b.RemainingDays)
	}
}

func TestHasSufficient(t *testing.T) {
	b := newBalance("u1", "t1", 2026, dec("10"))
	if !b.HasSufficient(dec("10")) {
		t.Fatal("exact remaining should be sufficient")
	}
	if b.HasSufficient(dec("10.5")) {
		t.Fatal("over remaining should be insufficient")
	}
}

func TestPercentageUsed(t *testing.T) {
	cases := []struct {
		total string
		used  string
		want  int
	}{
		{"25", "5", 20},
		{"25", "0", 0},
		{"0", "3", 0},
		{"3", "1", 33},
		{"3", "2", 67},
	}
	for _, tc := range cases {
		b := Balance{TotalAllowance: dec(tc.total), UsedDays: dec(tc.used)}
		if got := b.PercentageUsed(); got != tc.want {
			t.Errorf("PercentageUsed(%s/%s) = %d, want %d", tc.used, tc.total, got, tc.want)
		}
	}
}

func TestPercentageUsedRoundsHalfUp(t *testing.T) {
	b := Balance{TotalAllowance: decimal.NewFromInt(8), UsedDays: decimal.NewFromInt(1)}
	// 12.5 rounds to 13, not down to 12.
	if got := b.PercentageUsed(); got != 13 {
		t.Fatalf("PercentageUsed = %d, want 13", got)
	}
}
