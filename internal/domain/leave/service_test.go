package leave

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(users ...string) (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, &memDirectory{ids: users}), store
}

func TestInitializeUserBalances(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	store.addType(LeaveType{Name: "Sabbatical", DefaultAnnualAllowance: dec("90"), IsActive: false})

	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	rows, err := store.ListBalances(context.Background(), "u1", 2026)
	require.NoError(t, err)
	require.Len(t, rows, 1, "inactive types must not be initialized")

	b := rows[0]
	require.Equal(t, paid.ID, b.LeaveTypeID)
	require.True(t, b.TotalAllowance.Equal(dec("25")))
	require.True(t, b.UsedDays.IsZero())
	require.True(t, b.PendingDays.IsZero())
	require.True(t, b.CarriedOverDays.IsZero())
	require.True(t, b.RemainingDays.Equal(dec("25")))
}

func TestInitializeUserBalancesIdempotent(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	// Burn some days, then re-run: the existing row must survive intact.
	_, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("4"), EventPending)
	require.NoError(t, err)

	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	b, err := store.GetBalance(context.Background(), "u1", paid.ID, 2026)
	require.NoError(t, err)
	require.True(t, b.PendingDays.Equal(dec("4")), "re-init must not reset buckets")
}

func TestInitializeUserBalancesUnknownUser(t *testing.T) {
	svc, _ := newTestService("u1")
	err := svc.InitializeUserBalances(context.Background(), "ghost", 2026)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInitializeAllUsersForYearContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	// u2 is listed by the directory but fails the existence check,
	// standing in for a user deleted between the two reads.
	svc := NewService(store, &flakyDirectory{ids: []string{"u1", "u2", "u3"}, missing: "u2"})

	results, err := svc.InitializeAllUsersForYear(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, ErrNotFound)
	require.NoError(t, results[2].Err)

	u3, err := store.ListBalances(context.Background(), "u3", 2026)
	require.NoError(t, err)
	require.Len(t, u3, 1, "failure for one user must not block the rest")
}

type flakyDirectory struct {
	ids     []string
	missing string
}

func (d *flakyDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	if userID == d.missing {
		return false, nil
	}
	for _, id := range d.ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *flakyDirectory) ListUserIDs(ctx context.Context) ([]string, error) {
	return d.ids, nil
}

func TestGetUserBalancesAutoInitializes(t *testing.T) {
	svc, store := newTestService("u1")
	store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	rows, err := svc.GetUserBalances(context.Background(), "u1", 2026)
	require.NoError(t, err)
	require.Len(t, rows, 1, "first read of a new year initializes")
}

func TestGetUserBalanceForTypeDoesNotAutoInitialize(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	_, err := svc.GetUserBalanceForType(context.Background(), "u1", paid.ID, 2026)
	require.ErrorIs(t, err, ErrNotFound)

	rows, listErr := store.ListBalances(context.Background(), "u1", 2026)
	require.NoError(t, listErr)
	require.Empty(t, rows, "single-row read must not create rows")
}

func TestApplyEventLifecycle(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	b, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("5"), EventPending)
	require.NoError(t, err)
	require.True(t, b.PendingDays.Equal(dec("5")))
	require.True(t, b.RemainingDays.Equal(dec("20")))

	b, err = svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("5"), EventApproved)
	require.NoError(t, err)
	require.True(t, b.PendingDays.IsZero())
	require.True(t, b.UsedDays.Equal(dec("5")))
	require.True(t, b.RemainingDays.Equal(dec("20")))

	b, err = svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("5"), EventCancelled)
	require.NoError(t, err)
	require.True(t, b.UsedDays.IsZero())
	require.True(t, b.RemainingDays.Equal(dec("25")), "cancel restores the full allowance")
}

func TestApplyEventRejectedReleasesPending(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	_, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("3"), EventPending)
	require.NoError(t, err)

	b, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("3"), EventRejected)
	require.NoError(t, err)
	require.True(t, b.PendingDays.IsZero())
	require.True(t, b.UsedDays.IsZero())
	require.True(t, b.RemainingDays.Equal(dec("25")))
}

func TestApplyEventMissingRow(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	_, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("1"), EventPending)
	require.ErrorIs(t, err, ErrNotFound, "events never create rows")
}

func TestApplyEventUnknownAction(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	_, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("1"), Event("PAUSED"))
	require.ErrorIs(t, err, ErrInvalidAction)

	b, getErr := store.GetBalance(context.Background(), "u1", paid.ID, 2026)
	require.NoError(t, getErr)
	require.True(t, b.RemainingDays.Equal(dec("25")), "failed event must not change the row")
}

func TestSetUserBalanceOverwritesAllowance(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	_, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("5"), EventPending)
	require.NoError(t, err)
	_, err = svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("5"), EventApproved)
	require.NoError(t, err)

	b, err := svc.SetUserBalance(context.Background(), "u1", paid.ID, 2026, dec("30"))
	require.NoError(t, err)
	require.True(t, b.TotalAllowance.Equal(dec("30")))
	require.True(t, b.UsedDays.Equal(dec("5")), "buckets survive an allowance change")
	require.True(t, b.RemainingDays.Equal(dec("25")))
}

func TestSetUserBalanceCreatesMissingRow(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	b, err := svc.SetUserBalance(context.Background(), "u1", paid.ID, 2026, dec("12"))
	require.NoError(t, err)
	require.True(t, b.TotalAllowance.Equal(dec("12")))
	require.True(t, b.RemainingDays.Equal(dec("12")))
}

func TestSetUserBalanceAllowsNegativeRemaining(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	_, err := svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("10"), EventPending)
	require.NoError(t, err)
	_, err = svc.ApplyEvent(context.Background(), "u1", paid.ID, 2026, dec("10"), EventApproved)
	require.NoError(t, err)

	b, err := svc.SetUserBalance(context.Background(), "u1", paid.ID, 2026, dec("6"))
	require.NoError(t, err)
	require.True(t, b.RemainingDays.Equal(dec("-4")), "admin overwrite is unconditional")
}

func TestCarryOverCapsAtTypeMaximum(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{
		Name:                   TypePaidLeave,
		DefaultAnnualAllowance: dec("25"),
		AllowCarryOver:         true,
		MaxCarryOverDays:       10,
		IsActive:               true,
	})

	store.putBalance(Balance{
		UserID: "u1", LeaveTypeID: paid.ID, Year: 2025,
		TotalAllowance: dec("25"), UsedDays: dec("10"),
		PendingDays: decimal.Zero, CarriedOverDays: decimal.Zero,
		RemainingDays: dec("15"),
	})

	summary, err := svc.CarryOverBalances(context.Background(), 2025, 2026)
	require.NoError(t, err)
	require.Equal(t, CarryOverSummary{RowsExamined: 1, RowsCarried: 1}, summary)

	b, err := store.GetBalance(context.Background(), "u1", paid.ID, 2026)
	require.NoError(t, err)
	require.True(t, b.CarriedOverDays.Equal(dec("10")), "15 remaining, cap 10")
	require.True(t, b.TotalAllowance.Equal(dec("35")), "default 25 + carry 10")
	require.True(t, b.RemainingDays.Equal(dec("35")))
}

func TestCarryOverUncappedWhenMaxIsZero(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{
		Name:                   TypePaidLeave,
		DefaultAnnualAllowance: dec("25"),
		AllowCarryOver:         true,
		MaxCarryOverDays:       0,
		IsActive:               true,
	})

	store.putBalance(Balance{
		UserID: "u1", LeaveTypeID: paid.ID, Year: 2025,
		TotalAllowance: dec("25"), UsedDays: dec("5"),
		PendingDays: decimal.Zero, CarriedOverDays: decimal.Zero,
		RemainingDays: dec("20"),
	})

	_, err := svc.CarryOverBalances(context.Background(), 2025, 2026)
	require.NoError(t, err)

	b, err := store.GetBalance(context.Background(), "u1", paid.ID, 2026)
	require.NoError(t, err)
	require.True(t, b.CarriedOverDays.Equal(dec("20")))
}

func TestCarryOverSkipsIneligibleRows(t *testing.T) {
	svc, store := newTestService("u1", "u2")
	special := store.addType(LeaveType{
		Name:                   TypeSpecialLeave,
		DefaultAnnualAllowance: dec("10"),
		AllowCarryOver:         false,
		IsActive:               true,
	})
	paid := store.addType(LeaveType{
		Name:                   TypePaidLeave,
		DefaultAnnualAllowance: dec("25"),
		AllowCarryOver:         true,
		MaxCarryOverDays:       10,
		IsActive:               true,
	})

	// No-carry type with days left: excluded.
	store.putBalance(Balance{
		UserID: "u1", LeaveTypeID: special.ID, Year: 2025,
		TotalAllowance: dec("10"), UsedDays: dec("2"),
		PendingDays: decimal.Zero, CarriedOverDays: decimal.Zero,
		RemainingDays: dec("8"),
	})
	// Carry-enabled type fully spent: excluded.
	store.putBalance(Balance{
		UserID: "u2", LeaveTypeID: paid.ID, Year: 2025,
		TotalAllowance: dec("25"), UsedDays: dec("25"),
		PendingDays: decimal.Zero, CarriedOverDays: decimal.Zero,
		RemainingDays: dec("0"),
	})

	summary, err := svc.CarryOverBalances(context.Background(), 2025, 2026)
	require.NoError(t, err)
	require.Equal(t, 0, summary.RowsCarried)

	_, err = store.GetBalance(context.Background(), "u1", special.ID, 2026)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetBalance(context.Background(), "u2", paid.ID, 2026)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCarryOverOverwritesExistingTarget(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{
		Name:                   TypePaidLeave,
		DefaultAnnualAllowance: dec("25"),
		AllowCarryOver:         true,
		MaxCarryOverDays:       10,
		IsActive:               true,
	})

	store.putBalance(Balance{
		UserID: "u1", LeaveTypeID: paid.ID, Year: 2025,
		TotalAllowance: dec("25"), UsedDays: dec("19"),
		PendingDays: decimal.Zero, CarriedOverDays: decimal.Zero,
		RemainingDays: dec("6"),
	})

	_, err := svc.CarryOverBalances(context.Background(), 2025, 2026)
	require.NoError(t, err)
	_, err = svc.CarryOverBalances(context.Background(), 2025, 2026)
	require.NoError(t, err)

	b, err := store.GetBalance(context.Background(), "u1", paid.ID, 2026)
	require.NoError(t, err)
	require.True(t, b.TotalAllowance.Equal(dec("31")), "re-running the same transition is not additive")
	require.True(t, b.CarriedOverDays.Equal(dec("6")))
}

func TestHasSufficientBalance(t *testing.T) {
	svc, store := newTestService("u1")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})
	require.NoError(t, svc.InitializeUserBalances(context.Background(), "u1", 2026))

	require.True(t, svc.HasSufficientBalance(context.Background(), "u1", paid.ID, 2026, dec("25")))
	require.False(t, svc.HasSufficientBalance(context.Background(), "u1", paid.ID, 2026, dec("26")))

	// Any lookup failure reads as false, never as an error.
	require.False(t, svc.HasSufficientBalance(context.Background(), "ghost", paid.ID, 2026, dec("1")))
	require.False(t, svc.HasSufficientBalance(context.Background(), "u1", "no-such-type", 2026, dec("1")))
	require.False(t, svc.HasSufficientBalance(context.Background(), "u1", paid.ID, 2030, dec("1")))
}

func TestTeamUsedDays(t *testing.T) {
	svc, store := newTestService("u1", "u2", "u3")
	paid := store.addType(LeaveType{Name: TypePaidLeave, DefaultAnnualAllowance: dec("25"), IsActive: true})

	store.userTeams["u1"] = "team-a"
	store.userTeams["u2"] = "team-a"
	store.userTeams["u3"] = "team-b"

	for user, used := range map[string]string{"u1": "3", "u2": "4.5", "u3": "7"} {
		store.putBalance(Balance{
			UserID: user, LeaveTypeID: paid.ID, Year: 2026,
			TotalAllowance: dec("25"), UsedDays: dec(used),
			PendingDays: decimal.Zero, CarriedOverDays: decimal.Zero,
			RemainingDays: dec("25").Sub(dec(used)),
		})
	}

	total, err := svc.TeamUsedDays(context.Background(), "team-a", 2026)
	require.NoError(t, err)
	require.True(t, total.Equal(dec("7.5")))
}
