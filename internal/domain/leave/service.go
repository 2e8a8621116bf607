package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Service is the balance engine. It is the only writer of ledger rows;
// every mutation runs as one store transaction that locks the row,
// adjusts the buckets, recomputes the remaining amount and persists.
type Service struct {
	Store StoreAPI
	Users Directory
}

func NewService(store StoreAPI, users Directory) *Service {
	return &Service{Store: store, Users: users}
}

// InitializeUserBalances creates a zeroed row seeded with the default
// annual allowance for every active leave type the user has no row for
// yet. Re-invoking it is a no-op for rows that already exist.
func (s *Service) InitializeUserBalances(ctx context.Context, userID string, year int) error {
	ok, err := s.Users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	types, err := s.Store.ListActiveTypes(ctx)
	if err != nil {
		return err
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return err
	}

	for _, t := range types {
		_, err := tx.GetBalanceForUpdate(ctx, userID, t.ID, year)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.InsertBalance(ctx, newBalance(userID, t.ID, year, t.DefaultAnnualAllowance)); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	return tx.Commit(ctx)
}

// InitResult reports the outcome of one user's initialization within a
// batch run.
type InitResult struct {
	UserID string `json:"userId"`
	Err    error  `json:"-"`
}

// InitializeAllUsersForYear initializes every known user. Each user is
// its own unit of work: a failure is recorded and skipped, it does not
// abort the remaining users or roll back completed ones.
func (s *Service) InitializeAllUsersForYear(ctx context.Context, year int) ([]InitResult, error) {
	ids, err := s.Users.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]InitResult, 0, len(ids))
	for _, id := range ids {
		err := s.InitializeUserBalances(ctx, id, year)
		if err != nil {
			slog.Warn("balance init failed", "user", id, "year", year, "err", err)
		}
		results = append(results, InitResult{UserID: id, Err: err})
	}
	return results, nil
}

// GetUserBalances returns all of the user's rows for the year.
//
// Side effect: if the user has no rows for that year, they are
// initialized first. First read of a new year therefore writes.
func (s *Service) GetUserBalances(ctx context.Context, userID string, year int) ([]Balance, error) {
	ok, err := s.Users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	balances, err := s.Store.ListBalances(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		if err := s.InitializeUserBalances(ctx, userID, year); err != nil {
			return nil, err
		}
		balances, err = s.Store.ListBalances(ctx, userID, year)
		if err != nil {
			return nil, err
		}
	}
	return balances, nil
}

// GetUserBalanceForType returns a single row or ErrNotFound. Unlike the
// plural read it never auto-initializes.
func (s *Service) GetUserBalanceForType(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error) {
	ok, err := s.Users.UserExists(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	if !ok {
		return Balance{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if _, err := s.Store.GetType(ctx, leaveTypeID); err != nil {
		return Balance{}, err
	}
	return s.Store.GetBalance(ctx, userID, leaveTypeID, year)
}

// ApplyEvent posts a request-lifecycle event against an existing row:
//
//	PENDING    pending += days
//	APPROVED   pending -= days, used += days
//	REJECTED   pending -= days
//	CANCELLED  used -= days
//
// The row must already be initialized; any other event name fails with
// ErrInvalidAction. Buckets are not clamped.
func (s *Service) ApplyEvent(ctx context.Context, userID, leaveTypeID string, year int, days decimal.Decimal, event Event) (Balance, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return Balance{}, err
	}

	b, err := tx.GetBalanceForUpdate(ctx, userID, leaveTypeID, year)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Balance{}, err
	}
	if err := b.apply(event, days); err != nil {
		_ = tx.Rollback(ctx)
		return Balance{}, err
	}
	if err := tx.UpdateBalance(ctx, b); err != nil {
		_ = tx.Rollback(ctx)
		return Balance{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Balance{}, err
	}
	return *b, nil
}

// SetUserBalance sets the row's total allowance, creating the row with
// zeroed buckets when absent. The overwrite is unconditional: an admin
// can set an allowance below the used days and drive the remaining
// amount negative.
func (s *Service) SetUserBalance(ctx context.Context, userID, leaveTypeID string, year int, allowance decimal.Decimal) (Balance, error) {
	ok, err := s.Users.UserExists(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	if !ok {
		return Balance{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if _, err := s.Store.GetType(ctx, leaveTypeID); err != nil {
		return Balance{}, err
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return Balance{}, err
	}

	b, err := tx.GetBalanceForUpdate(ctx, userID, leaveTypeID, year)
	switch {
	case err == nil:
		b.TotalAllowance = allowance
		b.recalc()
		err = tx.UpdateBalance(ctx, b)
	case errors.Is(err, ErrNotFound):
		b = newBalance(userID, leaveTypeID, year, allowance)
		err = tx.InsertBalance(ctx, b)
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		return Balance{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Balance{}, err
	}
	return *b, nil
}

// CarryOverSummary reports how many source rows a carry-over run
// examined and how many target rows it wrote.
type CarryOverSummary struct {
	RowsExamined int `json:"rowsExamined"`
	RowsCarried  int `json:"rowsCarried"`
}

// CarryOverBalances rolls unused eligible days from fromYear into
// toYear. For each source row with remaining days and a carry-enabled
// type it writes min(remaining, cap) into the target row, overwriting
// any allowance already there. Running the same year pair twice is not
// additive; the transition is meant to run once.
func (s *Service) CarryOverBalances(ctx context.Context, fromYear, toYear int) (CarryOverSummary, error) {
	var summary CarryOverSummary

	sources, err := s.Store.BalancesToCarryOver(ctx, fromYear)
	if err != nil {
		return summary, err
	}
	summary.RowsExamined = len(sources)

	for _, old := range sources {
		t, err := s.Store.GetType(ctx, old.LeaveTypeID)
		if err != nil {
			return summary, err
		}

		carry := old.RemainingDays
		if t.MaxCarryOverDays > 0 {
			cap := decimal.NewFromInt(int64(t.MaxCarryOverDays))
			if carry.GreaterThan(cap) {
				carry = cap
			}
		}
		if !carry.IsPositive() {
			continue
		}

		tx, err := s.Store.Begin(ctx)
		if err != nil {
			return summary, err
		}

		b, err := tx.GetBalanceForUpdate(ctx, old.UserID, old.LeaveTypeID, toYear)
		switch {
		case err == nil:
			b.CarriedOverDays = carry
			b.TotalAllowance = t.DefaultAnnualAllowance.Add(carry)
			b.recalc()
			err = tx.UpdateBalance(ctx, b)
		case errors.Is(err, ErrNotFound):
			b = newBalance(old.UserID, old.LeaveTypeID, toYear, t.DefaultAnnualAllowance.Add(carry))
			b.CarriedOverDays = carry
			err = tx.InsertBalance(ctx, b)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return summary, err
		}
		if err := tx.Commit(ctx); err != nil {
			return summary, err
		}
		summary.RowsCarried++
	}

	return summary, nil
}

// HasSufficientBalance is a yes/no gate for the approval workflow. Any
// failure (missing user, type, or row) reads as false; it never
// returns an error.
func (s *Service) HasSufficientBalance(ctx context.Context, userID, leaveTypeID string, year int, requested decimal.Decimal) bool {
	b, err := s.GetUserBalanceForType(ctx, userID, leaveTypeID, year)
	if err != nil {
		return false
	}
	return b.HasSufficient(requested)
}

// LowBalances lists rows whose remaining days fall below the threshold
// for the year.
func (s *Service) LowBalances(ctx context.Context, threshold decimal.Decimal, year int) ([]Balance, error) {
	return s.Store.LowBalances(ctx, threshold, year)
}

// TeamUsedDays totals the used days across a team for a year.
func (s *Service) TeamUsedDays(ctx context.Context, teamID string, year int) (decimal.Decimal, error) {
	return s.Store.TeamUsedDays(ctx, teamID, year)
}
