package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `
    u.id, u.username, u.email, u.first_name, u.last_name, u.role, u.active,
    u.team_id, COALESCE(t.name, ''), u.created_at, u.updated_at`

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users u
    LEFT JOIN teams t ON u.team_id = t.id
    ORDER BY u.last_name, u.first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users u
    LEFT JOIN teams t ON u.team_id = t.id
    WHERE u.id = $1
  `, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, payload CreateUser, passwordHash string) (User, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, email, password_hash, first_name, last_name, role, team_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, payload.Username, payload.Email, passwordHash, payload.FirstName, payload.LastName, payload.Role, payload.TeamID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateUser
		}
		return User{}, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) UpdateUser(ctx context.Context, u User, passwordHash string) (User, error) {
	query := `
    UPDATE users
    SET email = $1, first_name = $2, last_name = $3, role = $4,
        active = $5, team_id = $6, updated_at = now()
    WHERE id = $7
  `
	args := []any{u.Email, u.FirstName, u.LastName, u.Role, u.Active, u.TeamID, u.ID}
	if passwordHash != "" {
		query = `
    UPDATE users
    SET email = $1, first_name = $2, last_name = $3, role = $4,
        active = $5, team_id = $6, password_hash = $7, updated_at = now()
    WHERE id = $8
  `
		args = []any{u.Email, u.FirstName, u.LastName, u.Role, u.Active, u.TeamID, passwordHash, u.ID}
	}

	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateUser
		}
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}
	return s.GetUser(ctx, u.ID)
}

// DeleteUser removes the user; the schema cascades the deletion to the
// user's balance rows.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE id = $1", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const teamColumns = `
    t.id, t.name, t.description, t.leader_id,
    (SELECT COUNT(1) FROM users m WHERE m.team_id = t.id),
    t.created_at, t.updated_at`

func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+teamColumns+`
    FROM teams t
    ORDER BY t.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.MemberCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTeam(ctx context.Context, id string) (Team, error) {
	var t Team
	err := s.DB.QueryRow(ctx, `
    SELECT `+teamColumns+`
    FROM teams t
    WHERE t.id = $1
  `, id).Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.MemberCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, fmt.Errorf("team %s: %w", id, ErrNotFound)
		}
		return Team{}, err
	}
	return t, nil
}

func (s *Store) CreateTeam(ctx context.Context, name, description string, leaderID *string) (Team, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO teams (name, description, leader_id)
    VALUES ($1,$2,$3)
    RETURNING id
  `, name, description, leaderID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return Team{}, ErrDuplicateTeam
		}
		return Team{}, err
	}
	return s.GetTeam(ctx, id)
}

func (s *Store) UpdateTeam(ctx context.Context, t Team) (Team, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE teams
    SET name = $1, description = $2, leader_id = $3, updated_at = now()
    WHERE id = $4
  `, t.Name, t.Description, t.LeaderID, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Team{}, ErrDuplicateTeam
		}
		return Team{}, err
	}
	if tag.RowsAffected() == 0 {
		return Team{}, fmt.Errorf("team %s: %w", t.ID, ErrNotFound)
	}
	return s.GetTeam(ctx, t.ID)
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM teams WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		&u.Active, &u.TeamID, &u.TeamName, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
