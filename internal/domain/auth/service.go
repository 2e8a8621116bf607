package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Mailer delivers the password-reset message. The SMTP implementation
// lives in the platform layer; tests use a recording fake.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type Service struct {
	Store     *Store
	Blacklist *Blacklist
	Mailer    Mailer
	Secret    string
	TokenTTL  time.Duration
	ResetTTL  time.Duration
}

type Session struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expiresAt"`
	User      AuthUser `json:"-"`
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.TokenTTL)
	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, Role: user.Role}, s.TokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login", "userId", user.ID, "error", err)
	}

	user.Password = ""
	return Session{Token: token, ExpiresAt: expiresAt.Unix(), User: user}, nil
}

// Logout blacklists the presented token until it would have expired
// anyway. Tokens that fail to parse are ignored.
func (s *Service) Logout(token string) {
	claims, err := ParseToken(s.Secret, token)
	if err != nil {
		return
	}
	expiresAt := time.Now().Add(s.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.Blacklist.Revoke(token, expiresAt)
}

// RequestPasswordReset always reports success to the caller; whether the
// email is registered is not disclosed.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expires := time.Now().Add(s.ResetTTL)
	if err := s.Store.CreatePasswordReset(ctx, user.ID, hashToken(token), expires); err != nil {
		return err
	}

	if err := s.Mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		slog.Error("send password reset email", "userId", user.ID, "error", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	tokenHash := hashToken(token)
	userID, err := s.Store.PasswordResetUserID(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.Store.MarkPasswordResetUsed(ctx, tokenHash)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
