package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const typeColumns = `
    id, name, description, requires_approval, is_paid, deducts_from_balance,
    max_days_per_year::text, default_annual_allowance::text,
    allow_carry_over, max_carry_over_days, is_active, color, display_order,
    created_at, updated_at`

func (s *Store) ListTypes(ctx context.Context) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+typeColumns+`
    FROM leave_types
    ORDER BY display_order, name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTypes(rows)
}

func (s *Store) ListActiveTypes(ctx context.Context) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+typeColumns+`
    FROM leave_types
    WHERE is_active
    ORDER BY display_order, name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTypes(rows)
}

func (s *Store) SearchTypes(ctx context.Context, query string) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+typeColumns+`
    FROM leave_types
    WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
    ORDER BY display_order, name
  `, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTypes(rows)
}

func (s *Store) GetType(ctx context.Context, id string) (LeaveType, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+typeColumns+`
    FROM leave_types
    WHERE id = $1
  `, id)

	t, err := scanType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeaveType{}, fmt.Errorf("leave type %s: %w", id, ErrNotFound)
		}
		return LeaveType{}, err
	}
	return t, nil
}

func (s *Store) CreateType(ctx context.Context, t LeaveType) (LeaveType, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types
      (name, description, requires_approval, is_paid, deducts_from_balance,
       max_days_per_year, default_annual_allowance, allow_carry_over,
       max_carry_over_days, is_active, color, display_order)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    RETURNING id, created_at
  `,
		t.Name, t.Description, t.RequiresApproval, t.IsPaid, t.DeductsFromBalance,
		t.MaxDaysPerYear.String(), t.DefaultAnnualAllowance.String(), t.AllowCarryOver,
		t.MaxCarryOverDays, t.IsActive, t.Color, t.DisplayOrder,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return LeaveType{}, err
	}
	return t, nil
}

func (s *Store) UpdateType(ctx context.Context, t LeaveType) (LeaveType, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_types
    SET name = $1, description = $2, requires_approval = $3, is_paid = $4,
        deducts_from_balance = $5, max_days_per_year = $6,
        default_annual_allowance = $7, allow_carry_over = $8,
        max_carry_over_days = $9, is_active = $10, color = $11,
        display_order = $12, updated_at = now()
    WHERE id = $13
    RETURNING `+typeColumns+`
  `,
		t.Name, t.Description, t.RequiresApproval, t.IsPaid, t.DeductsFromBalance,
		t.MaxDaysPerYear.String(), t.DefaultAnnualAllowance.String(), t.AllowCarryOver,
		t.MaxCarryOverDays, t.IsActive, t.Color, t.DisplayOrder, t.ID,
	)

	updated, err := scanType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeaveType{}, fmt.Errorf("leave type %s: %w", t.ID, ErrNotFound)
		}
		return LeaveType{}, err
	}
	return updated, nil
}

func (s *Store) DeleteType(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM leave_types WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("leave type %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) TypeNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM leave_types WHERE LOWER(name) = LOWER($1)"
	args := []any{name}
	if excludeID != "" {
		query += " AND id::text <> $2"
		args = append(args, excludeID)
	}

	var count int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const balanceColumns = `
    lb.id, lb.user_id, lb.leave_type_id, lb.year,
    lb.total_allowance::text, lb.used_days::text, lb.pending_days::text,
    lb.carried_over_days::text, lb.remaining_days::text,
    lb.created_at, lb.updated_at`

func (s *Store) ListBalances(ctx context.Context, userID string, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+balanceColumns+`,
           u.first_name || ' ' || u.last_name, lt.name, lt.color
    FROM leave_balances lb
    JOIN users u ON lb.user_id = u.id
    JOIN leave_types lt ON lb.leave_type_id = lt.id
    WHERE lb.user_id = $1 AND lb.year = $2
    ORDER BY lt.display_order, lt.name
  `, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetailedBalances(rows)
}

func (s *Store) GetBalance(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+balanceColumns+`
    FROM leave_balances lb
    WHERE lb.user_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
  `, userID, leaveTypeID, year)

	b, err := scanBalance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, fmt.Errorf("balance %s/%s/%d: %w", userID, leaveTypeID, year, ErrNotFound)
		}
		return Balance{}, err
	}
	return *b, nil
}

func (s *Store) LowBalances(ctx context.Context, threshold decimal.Decimal, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+balanceColumns+`,
           u.first_name || ' ' || u.last_name, lt.name, lt.color
    FROM leave_balances lb
    JOIN users u ON lb.user_id = u.id
    JOIN leave_types lt ON lb.leave_type_id = lt.id
    WHERE lb.remaining_days < $1 AND lb.year = $2
    ORDER BY lb.remaining_days
  `, threshold.String(), year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetailedBalances(rows)
}

func (s *Store) BalancesToCarryOver(ctx context.Context, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+balanceColumns+`
    FROM leave_balances lb
    JOIN leave_types lt ON lb.leave_type_id = lt.id
    WHERE lb.year = $1 AND lb.remaining_days > 0 AND lt.allow_carry_over
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) TeamUsedDays(ctx context.Context, teamID string, year int) (decimal.Decimal, error) {
	var total string
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(lb.used_days), 0)::text
    FROM leave_balances lb
    JOIN users u ON lb.user_id = u.id
    WHERE u.team_id = $1 AND lb.year = $2
  `, teamID, year).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}

func collectTypes(rows pgx.Rows) ([]LeaveType, error) {
	var out []LeaveType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanType(row rowScanner) (LeaveType, error) {
	var t LeaveType
	var maxDays, allowance string
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.RequiresApproval, &t.IsPaid,
		&t.DeductsFromBalance, &maxDays, &allowance, &t.AllowCarryOver,
		&t.MaxCarryOverDays, &t.IsActive, &t.Color, &t.DisplayOrder,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return LeaveType{}, err
	}
	if err := parseDecimals(map[*decimal.Decimal]string{
		&t.MaxDaysPerYear:         maxDays,
		&t.DefaultAnnualAllowance: allowance,
	}); err != nil {
		return LeaveType{}, err
	}
	return t, nil
}

func collectDetailedBalances(rows pgx.Rows) ([]Balance, error) {
	var out []Balance
	for rows.Next() {
		var b Balance
		var total, used, pending, carried, remaining string
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
			&total, &used, &pending, &carried, &remaining,
			&b.CreatedAt, &b.UpdatedAt,
			&b.UserName, &b.LeaveTypeName, &b.LeaveTypeColor,
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
		out = append(out, b)
	}
	return out, rows.Err()
}
