package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"leavehq/internal/domain/auth"
	"leavehq/internal/domain/directory"
	"leavehq/internal/domain/leave"
	"leavehq/internal/platform/config"
)

type seedType struct {
	name               string
	description        string
	requiresApproval   bool
	isPaid             bool
	deductsFromBalance bool
	maxDaysPerYear     string
	annualAllowance    string
	allowCarryOver     bool
	maxCarryOverDays   int
	color              string
	displayOrder       int
}

// The built-in leave types. Their names are protected from deletion in
// the catalog; re-running the seed never duplicates or overwrites them.
var systemTypes = []seedType{
	{
		name:               leave.TypePaidLeave,
		description:        "Annual paid leave",
		requiresApproval:   true,
		isPaid:             true,
		deductsFromBalance: true,
		maxDaysPerYear:     "25",
		annualAllowance:    "25",
		allowCarryOver:     true,
		maxCarryOverDays:   10,
		color:              "#4CAF50",
		displayOrder:       1,
	},
	{
		name:               leave.TypeSickLeave,
		description:        "Sick leave with medical certificate",
		requiresApproval:   true,
		isPaid:             true,
		deductsFromBalance: false,
		maxDaysPerYear:     "365",
		annualAllowance:    "0",
		allowCarryOver:     false,
		color:              "#F44336",
		displayOrder:       2,
	},
	{
		name:               leave.TypeUnpaidLeave,
		description:        "Unpaid leave of absence",
		requiresApproval:   true,
		isPaid:             false,
		deductsFromBalance: false,
		maxDaysPerYear:     "30",
		annualAllowance:    "0",
		allowCarryOver:     false,
		color:              "#9E9E9E",
		displayOrder:       3,
	},
	{
		name:               leave.TypeSpecialLeave,
		description:        "Special leave for family events",
		requiresApproval:   true,
		isPaid:             true,
		deductsFromBalance: true,
		maxDaysPerYear:     "10",
		annualAllowance:    "10",
		allowCarryOver:     false,
		color:              "#2196F3",
		displayOrder:       4,
	},
}

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	for _, t := range systemTypes {
		if err := ensureLeaveType(ctx, pool, t); err != nil {
			return err
		}
	}
	return ensureAdminUser(ctx, pool, cfg)
}

func ensureLeaveType(ctx context.Context, pool *pgxpool.Pool, t seedType) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM leave_types WHERE name = $1", t.name).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := pool.Exec(ctx, `
    INSERT INTO leave_types
      (name, description, requires_approval, is_paid, deducts_from_balance,
       max_days_per_year, default_annual_allowance, allow_carry_over,
       max_carry_over_days, is_active, color, display_order)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true,$10,$11)
  `,
		t.name, t.description, t.requiresApproval, t.isPaid, t.deductsFromBalance,
		t.maxDaysPerYear, t.annualAllowance, t.allowCarryOver,
		t.maxCarryOverDays, t.color, t.displayOrder,
	)
	return err
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		slog.Warn("seed admin skipped, SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set")
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE LOWER(email) = LOWER($1)", cfg.SeedAdminEmail).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (username, email, password_hash, first_name, last_name, role)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, cfg.SeedAdminUsername, cfg.SeedAdminEmail, hash, "System", "Administrator", directory.RoleAdmin)
	return err
}
