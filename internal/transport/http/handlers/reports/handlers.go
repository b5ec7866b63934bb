package reportshandler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"attendance/internal/domain/auth"
	"attendance/internal/domain/reports"
	"attendance/internal/transport/http/api"
	"attendance/internal/transport/http/middleware"
	"attendance/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/attendance", h.handleAttendance)
		r.Get("/leave", h.handleLeave)
		r.Post("/export", h.handleExport)
	})
	r.With(middleware.RequireAuth).Get("/dashboard/stats", h.handleDashboardStats)
}

func (h *Handler) scopeFromQuery(w http.ResponseWriter, r *http.Request, reqID string) (reports.Scope, bool) {
	v := shared.NewValidator()
	start, _ := v.Date("startDate", queryOr(r, "startDate", firstOfMonth()))
	end, _ := v.Date("endDate", queryOr(r, "endDate", time.Now().Format("2006-01-02")))
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return reports.Scope{}, false
	}
	user, _ := middleware.GetUser(r.Context())
	return scopeForCaller(user, reports.Scope{
		UserID:     strings.TrimSpace(r.URL.Query().Get("userId")),
		Department: strings.TrimSpace(r.URL.Query().Get("department")),
		StartDate:  start,
		EndDate:    end,
	}), true
}

// scopeForCaller pins non-admin callers to their own records. Only
// admins may widen a report to another user or a department.
func scopeForCaller(user *auth.Claims, scope reports.Scope) reports.Scope {
	if user.Role != auth.RoleAdmin {
		scope.UserID = user.UserID
		scope.Department = ""
	}
	return scope
}

func (h *Handler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	scope, ok := h.scopeFromQuery(w, r, reqID)
	if !ok {
		return
	}
	report, err := h.Service.Attendance(r.Context(), scope)
	if err != nil {
		slog.Error("attendance report failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build attendance report", reqID)
		return
	}
	api.Success(w, report, reqID)
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	scope, ok := h.scopeFromQuery(w, r, reqID)
	if !ok {
		return
	}
	report, err := h.Service.Leave(r.Context(), scope)
	if err != nil {
		slog.Error("leave report failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build leave report", reqID)
		return
	}
	api.Success(w, report, reqID)
}

type exportRequest struct {
	ReportType string `json:"reportType"`
	Format     string `json:"format"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	UserID     string `json:"userId"`
	Department string `json:"department"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload exportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	reportType := strings.ToLower(strings.TrimSpace(payload.ReportType))
	format := strings.ToLower(strings.TrimSpace(payload.Format))
	v := shared.NewValidator()
	v.Required("reportType", reportType, "report type is required")
	v.Enum("reportType", reportType, []string{"attendance", "leave"}, "report type must be attendance or leave")
	v.Enum("format", format, []string{"csv", "pdf"}, "format must be csv or pdf")
	v.Required("format", format, "format is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return
	}

	scope := scopeForCaller(user, reports.Scope{
		UserID:     strings.TrimSpace(payload.UserID),
		Department: strings.TrimSpace(payload.Department),
		StartDate:  start,
		EndDate:    end,
	})

	var table reports.Table
	var err error
	switch reportType {
	case "leave":
		table, err = h.Service.LeaveExport(r.Context(), scope)
	default:
		table, err = h.Service.AttendanceExport(r.Context(), scope)
	}
	if err != nil {
		slog.Error("export query failed", "reportType", reportType, "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build export", reqID)
		return
	}

	filename := fmt.Sprintf("%s-%s-%s.%s", reportType, start.Format("20060102"), end.Format("20060102"), format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = reports.WriteCSV(w, table)
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		title := "Attendance Report"
		if reportType == "leave" {
			title = "Leave Report"
		}
		title = fmt.Sprintf("%s %s to %s", title, start.Format("2006-01-02"), end.Format("2006-01-02"))
		err = reports.WritePDF(w, title, table)
	}
	if err != nil {
		slog.Error("export write failed", "err", err, "requestId", reqID)
	}
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	stats, err := h.Service.Dashboard(r.Context(), user.UserID)
	if err != nil {
		slog.Error("dashboard stats failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func queryOr(r *http.Request, key, fallback string) string {
	if value := strings.TrimSpace(r.URL.Query().Get(key)); value != "" {
		return value
	}
	return fallback
}

func firstOfMonth() string {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
}
