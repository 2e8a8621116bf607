package balanceshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"leavehq/internal/domain/auth"
	"leavehq/internal/domain/directory"
	"leavehq/internal/domain/leave"
	"leavehq/internal/transport/http/api"
	"leavehq/internal/transport/http/middleware"
	"leavehq/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
}

func NewHandler(service *leave.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave-balances", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.handleMyBalances)
		r.Get("/user/{userID}", h.handleUserBalances)
		r.Get("/user/{userID}/type/{typeID}", h.handleUserBalanceForType)
		r.Get("/sufficient", h.handleSufficient)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(directory.RoleAdmin))
			r.Post("/initialize/{userID}", h.handleInitializeUser)
			r.Post("/initialize-all", h.handleInitializeAll)
			r.Post("/carry-over", h.handleCarryOver)
			r.Put("/user/{userID}/type/{typeID}", h.handleSetBalance)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(directory.RoleAdmin, directory.RoleApprover))
			r.Post("/events", h.handleApplyEvent)
		})
	})
}

// canViewUser allows a user to read their own rows; reading anyone
// else's requires an elevated role.
func canViewUser(user auth.UserContext, targetID string) bool {
	if user.UserID == targetID {
		return true
	}
	return user.Role == directory.RoleAdmin || user.Role == directory.RoleApprover
}

func (h *Handler) handleMyBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	balances, err := h.Service.GetUserBalances(r.Context(), user.UserID, year)
	if err != nil {
		h.failBalance(w, r, err, "failed to load balances")
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUserBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID := chi.URLParam(r, "userID")
	if !canViewUser(user, targetID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}

	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	balances, err := h.Service.GetUserBalances(r.Context(), targetID, year)
	if err != nil {
		h.failBalance(w, r, err, "failed to load balances")
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUserBalanceForType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID := chi.URLParam(r, "userID")
	if !canViewUser(user, targetID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}

	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.GetUserBalanceForType(r.Context(), targetID, chi.URLParam(r, "typeID"), year)
	if err != nil {
		h.failBalance(w, r, err, "failed to load balance")
		return
	}
	api.Success(w, balanceWithUsage(balance), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSufficient(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	query := r.URL.Query()

	targetID := query.Get("userId")
	if targetID == "" {
		targetID = user.UserID
	}
	if !canViewUser(user, targetID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
		return
	}

	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	days, err := shared.Days(query.Get("days"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_allowance", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	sufficient := h.Service.HasSufficientBalance(r.Context(), targetID, query.Get("typeId"), year, days)
	api.Success(w, map[string]bool{"sufficient": sufficient}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleInitializeUser(w http.ResponseWriter, r *http.Request) {
	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.Service.InitializeUserBalances(r.Context(), userID, year); err != nil {
		h.failBalance(w, r, err, "failed to initialize balances")
		return
	}
	api.Success(w, map[string]any{"userId": userID, "year": year}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleInitializeAll(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Year int `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Year == 0 {
		payload.Year = time.Now().Year()
	}

	results, err := h.Service.InitializeAllUsersForYear(r.Context(), payload.Year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "init_failed", "failed to initialize balances", middleware.GetRequestID(r.Context()))
		return
	}

	type itemResult struct {
		UserID string `json:"userId"`
		OK     bool   `json:"ok"`
		Error  string `json:"error,omitempty"`
	}
	items := make([]itemResult, 0, len(results))
	for _, res := range results {
		item := itemResult{UserID: res.UserID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		items = append(items, item)
	}
	api.Success(w, map[string]any{"year": payload.Year, "results": items}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCarryOver(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FromYear int `json:"fromYear"`
		ToYear   int `json:"toYear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FromYear == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "fromYear is required", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.ToYear == 0 {
		payload.ToYear = payload.FromYear + 1
	}
	if payload.ToYear <= payload.FromYear {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "toYear must come after fromYear", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.CarryOverBalances(r.Context(), payload.FromYear, payload.ToYear)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "carry_over_failed", "carry-over run failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Year           int             `json:"year"`
		TotalAllowance decimal.Decimal `json:"totalAllowance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "year and totalAllowance are required", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.TotalAllowance.IsNegative() {
		api.Fail(w, http.StatusBadRequest, "invalid_allowance", leave.ErrInvalidAllowance.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.SetUserBalance(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "typeID"), payload.Year, payload.TotalAllowance)
	if err != nil {
		h.failBalance(w, r, err, "failed to set balance")
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApplyEvent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID      string          `json:"userId"`
		LeaveTypeID string          `json:"leaveTypeId"`
		Year        int             `json:"year"`
		Event       string          `json:"event"`
		Days        decimal.Decimal `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UserID == "" || payload.LeaveTypeID == "" || payload.Year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId, leaveTypeId, year and event are required", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Days.IsNegative() {
		api.Fail(w, http.StatusBadRequest, "invalid_allowance", leave.ErrInvalidAllowance.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.ApplyEvent(r.Context(), payload.UserID, payload.LeaveTypeID, payload.Year, payload.Days, leave.Event(payload.Event))
	if err != nil {
		if errors.Is(err, leave.ErrInvalidAction) {
			api.Fail(w, http.StatusBadRequest, "invalid_action", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		h.failBalance(w, r, err, "failed to apply balance event")
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failBalance(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, leave.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "balance_failed", fallback, middleware.GetRequestID(r.Context()))
}

func balanceWithUsage(b leave.Balance) map[string]any {
	return map[string]any{
		"balance":        b,
		"percentageUsed": b.PercentageUsed(),
	}
}
