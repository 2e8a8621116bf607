package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// StoreAPI is the persistence contract for the catalog and the balance
// ledger. *Store implements it against Postgres; tests use an
// in-memory fake.
type StoreAPI interface {
	Begin(ctx context.Context) (Tx, error)

	ListTypes(ctx context.Context) ([]LeaveType, error)
	ListActiveTypes(ctx context.Context) ([]LeaveType, error)
	SearchTypes(ctx context.Context, query string) ([]LeaveType, error)
	GetType(ctx context.Context, id string) (LeaveType, error)
	CreateType(ctx context.Context, t LeaveType) (LeaveType, error)
	UpdateType(ctx context.Context, t LeaveType) (LeaveType, error)
	DeleteType(ctx context.Context, id string) error
	TypeNameExists(ctx context.Context, name, excludeID string) (bool, error)

	ListBalances(ctx context.Context, userID string, year int) ([]Balance, error)
	GetBalance(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error)
	LowBalances(ctx context.Context, threshold decimal.Decimal, year int) ([]Balance, error)
	BalancesToCarryOver(ctx context.Context, year int) ([]Balance, error)
	TeamUsedDays(ctx context.Context, teamID string, year int) (decimal.Decimal, error)
}

// Tx is one atomic read-modify-write unit over ledger rows. The row
// returned by GetBalanceForUpdate is locked until Commit or Rollback,
// so concurrent events on the same (user, type, year) key cannot
// interleave.
type Tx interface {
	GetBalanceForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (*Balance, error)
	InsertBalance(ctx context.Context, b *Balance) error
	UpdateBalance(ctx context.Context, b *Balance) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Directory is the slice of the user directory the engine needs. It
// never mutates user records.
type Directory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}
