package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store is the Postgres-backed StoreAPI. Day amounts live in NUMERIC
// columns and cross the wire as text to keep decimal precision.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

type storeTx struct {
	tx pgx.Tx
}

func (t *storeTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *storeTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (t *storeTx) GetBalanceForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (*Balance, error) {
	row := t.tx.QueryRow(ctx, `
    SELECT id, user_id, leave_type_id, year,
           total_allowance::text, used_days::text, pending_days::text,
           carried_over_days::text, remaining_days::text,
           created_at, updated_at
    FROM leave_balances
    WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
    FOR UPDATE
  `, userID, leaveTypeID, year)

	b, err := scanBalance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("balance %s/%s/%d: %w", userID, leaveTypeID, year, ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (t *storeTx) InsertBalance(ctx context.Context, b *Balance) error {
	return t.tx.QueryRow(ctx, `
    INSERT INTO leave_balances
      (user_id, leave_type_id, year, total_allowance, used_days, pending_days, carried_over_days, remaining_days)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id, created_at
  `,
		b.UserID, b.LeaveTypeID, b.Year,
		b.TotalAllowance.String(), b.UsedDays.String(), b.PendingDays.String(),
		b.CarriedOverDays.String(), b.RemainingDays.String(),
	).Scan(&b.ID, &b.CreatedAt)
}

func (t *storeTx) UpdateBalance(ctx context.Context, b *Balance) error {
	_, err := t.tx.Exec(ctx, `
    UPDATE leave_balances
    SET total_allowance = $1, used_days = $2, pending_days = $3,
        carried_over_days = $4, remaining_days = $5, updated_at = now()
    WHERE id = $6
  `,
		b.TotalAllowance.String(), b.UsedDays.String(), b.PendingDays.String(),
		b.CarriedOverDays.String(), b.RemainingDays.String(), b.ID,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (*Balance, error) {
	var b Balance
	var total, used, pending, carried, remaining string
	if err := row.Scan(
		&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
		&total, &used, &pending, &carried, &remaining,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := parseDecimals(map[*decimal.Decimal]string{
		&b.TotalAllowance:  total,
		&b.UsedDays:        used,
		&b.PendingDays:     pending,
		&b.CarriedOverDays: carried,
		&b.RemainingDays:   remaining,
	}); err != nil {
		return nil, err
	}
	return &b, nil
}

func parseDecimals(fields map[*decimal.Decimal]string) error {
	for dst, raw := range fields {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parse numeric %q: %w", raw, err)
		}
		*dst = d
	}
	return nil
}
