package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a lifecycle notification posted by the approval workflow
// against an existing balance row.
type Event string

const (
	EventPending   Event = "PENDING"
	EventApproved  Event = "APPROVED"
	EventRejected  Event = "REJECTED"
	EventCancelled Event = "CANCELLED"
)

// Balance is the ledger row for one (user, leave type, year) triple.
// RemainingDays is derived: it is recomputed inside this package after
// every mutation and is never accepted from callers.
type Balance struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	LeaveTypeID     string          `json:"leaveTypeId"`
	Year            int             `json:"year"`
	TotalAllowance  decimal.Decimal `json:"totalAllowance"`
	UsedDays        decimal.Decimal `json:"usedDays"`
	PendingDays     decimal.Decimal `json:"pendingDays"`
	RemainingDays   decimal.Decimal `json:"remainingDays"`
	CarriedOverDays decimal.Decimal `json:"carriedOverDays"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`

	// Filled by list queries for display; empty on single-row reads.
	UserName       string `json:"userName,omitempty"`
	LeaveTypeName  string `json:"leaveTypeName,omitempty"`
	LeaveTypeColor string `json:"leaveTypeColor,omitempty"`
}

func newBalance(userID, leaveTypeID string, year int, allowance decimal.Decimal) *Balance {
	b := &Balance{
		UserID:          userID,
		LeaveTypeID:     leaveTypeID,
		Year:            year,
		TotalAllowance:  allowance,
		UsedDays:        decimal.Zero,
		PendingDays:     decimal.Zero,
		CarriedOverDays: decimal.Zero,
	}
	b.recalc()
	return b
}

// recalc restores the invariant remaining = total - used - pending.
// Every mutating path in this package ends with a recalc.
func (b *Balance) recalc() {
	b.RemainingDays = b.TotalAllowance.Sub(b.UsedDays).Sub(b.PendingDays)
}

// apply moves days between the pending and used buckets. Amounts are
// not clamped: the approval workflow is trusted to post amounts
// consistent with its own request state.
func (b *Balance) apply(event Event, days decimal.Decimal) error {
	switch event {
	case EventPending:
		b.PendingDays = b.PendingDays.Add(days)
	case EventApproved:
		b.PendingDays = b.PendingDays.Sub(days)
		b.UsedDays = b.UsedDays.Add(days)
	case EventRejected:
		b.PendingDays = b.PendingDays.Sub(days)
	case EventCancelled:
		b.UsedDays = b.UsedDays.Sub(days)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, event)
	}
	b.recalc()
	return nil
}

// HasSufficient reports whether the row can cover the requested days.
func (b *Balance) HasSufficient(requested decimal.Decimal) bool {
	return b.RemainingDays.GreaterThanOrEqual(requested)
}

// PercentageUsed returns round(used/total*100), or 0 when no allowance
// has been granted.
func (b *Balance) PercentageUsed() int {
	if !b.TotalAllowance.IsPositive() {
		return 0
	}
	pct := b.UsedDays.Div(b.TotalAllowance).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}
