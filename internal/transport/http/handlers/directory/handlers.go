package directoryhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leavehq/internal/domain/directory"
	"leavehq/internal/transport/http/api"
	"leavehq/internal/transport/http/middleware"
)

type Handler struct {
	Service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.handleGetSelf)
		r.Get("/{userID}", h.handleGetUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(directory.RoleAdmin))
			r.Get("/", h.handleListUsers)
			r.Post("/", h.handleCreateUser)
			r.Put("/{userID}", h.handleUpdateUser)
			r.Delete("/{userID}", h.handleDeleteUser)
		})
	})

	r.Route("/teams", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListTeams)
		r.Get("/{teamID}", h.handleGetTeam)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(directory.RoleAdmin))
			r.Post("/", h.handleCreateTeam)
			r.Put("/{teamID}", h.handleUpdateTeam)
			r.Delete("/{teamID}", h.handleDeleteTeam)
		})
	})
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	found, err := h.Service.GetUser(r.Context(), user.UserID)
	if err != nil {
		h.failUser(w, r, err)
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID := chi.URLParam(r, "userID")
	if user.UserID != targetID && user.Role != directory.RoleAdmin && user.Role != directory.RoleApprover {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}

	found, err := h.Service.GetUser(r.Context(), targetID)
	if err != nil {
		h.failUser(w, r, err)
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload directory.CreateUser
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.CreateUser(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrDuplicateUser):
			api.Fail(w, http.StatusConflict, "duplicate_user", "username or email already in use", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrInvalidRole), errors.Is(err, directory.ErrWeakPassword), errors.Is(err, directory.ErrMissingField):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch directory.UpdateUser
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.UpdateUser(r.Context(), chi.URLParam(r, "userID"), patch)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrDuplicateUser):
			api.Fail(w, http.StatusConflict, "duplicate_user", "username or email already in use", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrInvalidRole), errors.Is(err, directory.ErrWeakPassword):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID := chi.URLParam(r, "userID")
	if user.UserID == targetID {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cannot delete your own account", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.DeleteUser(r.Context(), targetID); err != nil {
		h.failUser(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Service.ListTeams(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "teams_failed", "failed to list teams", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, teams, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.Service.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "teams_failed", "failed to load team", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, team, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		LeaderID    *string `json:"leaderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.CreateTeam(r.Context(), payload.Name, payload.Description, payload.LeaderID)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrDuplicateTeam):
			api.Fail(w, http.StatusConflict, "duplicate_team", "team name already in use", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrMissingField):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "team_create_failed", "failed to create team", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var payload directory.Team
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "teamID")

	updated, err := h.Service.UpdateTeam(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrDuplicateTeam):
			api.Fail(w, http.StatusConflict, "duplicate_team", "team name already in use", middleware.GetRequestID(r.Context()))
		case errors.Is(err, directory.ErrMissingField):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "team_update_failed", "failed to update team", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "team_delete_failed", "failed to delete team", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failUser(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "users_failed", "user operation failed", middleware.GetRequestID(r.Context()))
}
