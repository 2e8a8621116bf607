package reportshandler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"leavehq/internal/domain/directory"
	"leavehq/internal/domain/leave"
	"leavehq/internal/transport/http/api"
	"leavehq/internal/transport/http/middleware"
	"leavehq/internal/transport/http/shared"
)

type Handler struct {
	Service          *leave.Service
	DefaultThreshold decimal.Decimal
}

func NewHandler(service *leave.Service, defaultThreshold decimal.Decimal) *Handler {
	return &Handler{Service: service, DefaultThreshold: defaultThreshold}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireRole(directory.RoleAdmin, directory.RoleApprover))
		r.Get("/low-balances", h.handleLowBalances)
		r.Get("/balances/export", h.handleExportBalances)
		r.Get("/teams/{teamID}/used-days", h.handleTeamUsedDays)
	})
}

func (h *Handler) handleLowBalances(w http.ResponseWriter, r *http.Request) {
	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	threshold := h.DefaultThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err = shared.Days(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
	}

	balances, err := h.Service.LowBalances(r.Context(), threshold, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build low balance report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"year":      year,
		"threshold": threshold,
		"balances":  balances,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportBalances(w http.ResponseWriter, r *http.Request) {
	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId is required", middleware.GetRequestID(r.Context()))
		return
	}

	balances, err := h.Service.GetUserBalances(r.Context(), userID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to load balances", middleware.GetRequestID(r.Context()))
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Leave balances %d", year))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if len(balances) > 0 && balances[0].UserName != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", balances[0].UserName))
		pdf.Ln(10)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 8, "Leave type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Allowance", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Used", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Pending", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Remaining", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, b := range balances {
		pdf.CellFormat(60, 8, b.LeaveTypeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, b.TotalAllowance.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, b.UsedDays.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, b.PendingDays.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, b.RemainingDays.String(), "1", 1, "R", false, 0, "")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"leave-balances-%d.pdf\"", year))
	if err := pdf.Output(w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleTeamUsedDays(w http.ResponseWriter, r *http.Request) {
	year, err := shared.Year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	teamID := chi.URLParam(r, "teamID")
	total, err := h.Service.TeamUsedDays(r.Context(), teamID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to total team used days", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"teamId":   teamID,
		"year":     year,
		"usedDays": total,
	}, middleware.GetRequestID(r.Context()))
}
