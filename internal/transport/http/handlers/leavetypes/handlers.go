package leavetypeshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"leavehq/internal/domain/directory"
	"leavehq/internal/domain/leave"
	"leavehq/internal/transport/http/api"
	"leavehq/internal/transport/http/middleware"
)

type Handler struct {
	Catalog *leave.Catalog
}

func NewHandler(catalog *leave.Catalog) *Handler {
	return &Handler{Catalog: catalog}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave-types", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/active", h.handleListActive)
		r.Get("/search", h.handleSearch)
		r.Get("/check-name", h.handleCheckName)
		r.Get("/{typeID}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(directory.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Put("/{typeID}", h.handleUpdate)
			r.Delete("/{typeID}", h.handleDelete)
			r.Patch("/{typeID}/toggle", h.handleToggleActive)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	types, err := h.Catalog.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	types, err := h.Catalog.ListActive(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	types, err := h.Catalog.Search(r.Context(), query)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to search leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name is required", middleware.GetRequestID(r.Context()))
		return
	}

	available, err := h.Catalog.IsNameAvailable(r.Context(), name, r.URL.Query().Get("excludeId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to check name", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"available": available}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "typeID"))
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to load leave type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var spec leave.TypeSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if spec.MaxDaysPerYear.IsNegative() || spec.DefaultAnnualAllowance.IsNegative() || spec.MaxCarryOverDays < 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_allowance", leave.ErrInvalidAllowance.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Catalog.Create(r.Context(), spec)
	if err != nil {
		if errors.Is(err, leave.ErrDuplicateName) {
			api.Fail(w, http.StatusConflict, "duplicate_name", "leave type name already in use", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "leave_type_create_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch leave.TypePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if (patch.MaxDaysPerYear != nil && patch.MaxDaysPerYear.IsNegative()) ||
		(patch.DefaultAnnualAllowance != nil && patch.DefaultAnnualAllowance.IsNegative()) ||
		(patch.MaxCarryOverDays != nil && *patch.MaxCarryOverDays < 0) {
		api.Fail(w, http.StatusBadRequest, "invalid_allowance", leave.ErrInvalidAllowance.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "typeID"), patch)
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, leave.ErrDuplicateName):
			api.Fail(w, http.StatusConflict, "duplicate_name", "leave type name already in use", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_type_update_failed", "failed to update leave type", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Catalog.Delete(r.Context(), chi.URLParam(r, "typeID"))
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, leave.ErrProtectedType):
			api.Fail(w, http.StatusConflict, "protected_type", "system leave type cannot be deleted", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_type_delete_failed", "failed to delete leave type", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	t, err := h.Catalog.ToggleActive(r.Context(), chi.URLParam(r, "typeID"))
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_type_update_failed", "failed to toggle leave type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}
