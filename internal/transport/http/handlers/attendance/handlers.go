package attendancehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"attendance/internal/domain/attendance"
	"attendance/internal/transport/http/api"
	"attendance/internal/transport/http/middleware"
	"attendance/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Get("/today", h.handleToday)
		r.Get("/history", h.handleHistory)
	})
}

type checkInRequest struct {
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload checkInRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
			return
		}
	}

	result, err := h.Service.CheckIn(r.Context(), user.UserID, strings.TrimSpace(payload.Location), strings.TrimSpace(payload.Notes))
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			api.Fail(w, http.StatusBadRequest, "already_checked_in", "already checked in today", reqID)
			return
		}
		slog.Error("check-in failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "check_in_failed", "failed to record check-in", reqID)
		return
	}

	api.SuccessMessage(w, "checked in", result, reqID)
}

type checkOutRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload checkOutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
			return
		}
	}

	result, err := h.Service.CheckOut(r.Context(), user.UserID, strings.TrimSpace(payload.Notes))
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNotCheckedIn):
			api.Fail(w, http.StatusBadRequest, "not_checked_in", "no open check-in today", reqID)
		case errors.Is(err, attendance.ErrAlreadyCheckedOut):
			api.Fail(w, http.StatusBadRequest, "already_checked_out", "already checked out today", reqID)
		default:
			slog.Error("check-out failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "check_out_failed", "failed to record check-out", reqID)
		}
		return
	}

	api.SuccessMessage(w, "checked out", result, reqID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.Today(r.Context(), user.UserID)
	if err != nil {
		slog.Error("attendance today failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "attendance_today_failed", "failed to load today's attendance", reqID)
		return
	}
	// record is nil when nothing was recorded today, clients treat that
	// as "not checked in yet"
	api.Success(w, record, reqID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	p := shared.ParsePagination(r, 31, 100)
	month := queryInt(r, "month", 0)
	year := queryInt(r, "year", 0)
	if month < 0 || month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be between 1 and 12", reqID)
		return
	}

	result, err := h.Service.History(r.Context(), user.UserID, month, year, p.Limit, p.Offset())
	if err != nil {
		slog.Error("attendance history failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "attendance_history_failed", "failed to load attendance history", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
