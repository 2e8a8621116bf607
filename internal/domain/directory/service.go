package directory

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service manages users and teams. Passwords are hashed with bcrypt
// before they reach the store; plaintext never leaves this package.
type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

const minPasswordLength = 8

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.Store.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.Store.GetUser(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, payload CreateUser) (User, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if payload.Username == "" || payload.Email == "" || payload.FirstName == "" || payload.LastName == "" {
		return User{}, fmt.Errorf("create user: %w", ErrMissingField)
	}
	if payload.Role == "" {
		payload.Role = RoleEmployee
	}
	if !ValidRole(payload.Role) {
		return User{}, fmt.Errorf("role %q: %w", payload.Role, ErrInvalidRole)
	}
	if len(payload.Password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.Store.CreateUser(ctx, payload, string(hash))
}

func (s *Service) UpdateUser(ctx context.Context, id string, patch UpdateUser) (User, error) {
	current, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}

	if patch.Email != nil {
		current.Email = strings.TrimSpace(strings.ToLower(*patch.Email))
	}
	if patch.FirstName != nil {
		current.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		current.LastName = *patch.LastName
	}
	if patch.Role != nil {
		if !ValidRole(*patch.Role) {
			return User{}, fmt.Errorf("role %q: %w", *patch.Role, ErrInvalidRole)
		}
		current.Role = *patch.Role
	}
	if patch.Active != nil {
		current.Active = *patch.Active
	}
	if patch.TeamID != nil {
		if *patch.TeamID == "" {
			current.TeamID = nil
		} else {
			current.TeamID = patch.TeamID
		}
	}

	var hash string
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return User{}, ErrWeakPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		hash = string(hashed)
	}

	return s.Store.UpdateUser(ctx, current, hash)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.Store.DeleteUser(ctx, id)
}

func (s *Service) UserExists(ctx context.Context, id string) (bool, error) {
	return s.Store.UserExists(ctx, id)
}

func (s *Service) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.Store.ListUserIDs(ctx)
}

func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	return s.Store.ListTeams(ctx)
}

func (s *Service) GetTeam(ctx context.Context, id string) (Team, error) {
	return s.Store.GetTeam(ctx, id)
}

func (s *Service) CreateTeam(ctx context.Context, name, description string, leaderID *string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, fmt.Errorf("create team: %w", ErrMissingField)
	}
	return s.Store.CreateTeam(ctx, name, description, leaderID)
}

func (s *Service) UpdateTeam(ctx context.Context, t Team) (Team, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return Team{}, fmt.Errorf("update team: %w", ErrMissingField)
	}
	return s.Store.UpdateTeam(ctx, t)
}

func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	return s.Store.DeleteTeam(ctx, id)
}
