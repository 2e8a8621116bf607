package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leavehq/internal/domain/auth"
	"leavehq/internal/transport/http/api"
	"leavehq/internal/transport/http/middleware"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/request-reset", h.handleRequestReset)
	r.Post("/auth/reset", h.handleResetPassword)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	session, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user": map[string]string{
			"id":        session.User.ID,
			"username":  session.User.Username,
			"email":     session.User.Email,
			"firstName": session.User.FirstName,
			"lastName":  session.User.LastName,
			"role":      session.User.Role,
		},
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r); ok {
		h.Service.Logout(token)
	}
	api.Success(w, map[string]string{"status": "logged out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email is required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_request_failed", "failed to process reset request", middleware.GetRequestID(r.Context()))
		return
	}

	// Always the same answer, so the endpoint cannot be used to probe for
	// registered addresses.
	api.Success(w, map[string]string{"status": "if the address is registered, a reset email was sent"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "token and newPassword are required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired reset token", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "reset_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "password updated"}, middleware.GetRequestID(r.Context()))
}
