package leavehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"attendance/internal/domain/auth"
	"attendance/internal/domain/leave"
	"attendance/internal/transport/http/api"
	"attendance/internal/transport/http/middleware"
	"attendance/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
}

func NewHandler(service *leave.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/request", h.handleSubmit)
		r.Get("/request", h.handleListOwn)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Get("/all", h.handleListAll)
	})
	r.Route("/leave-requests/{requestID}", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Post("/approve", h.handleApprove)
		r.Post("/reject", h.handleReject)
	})
}

type submitRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("leave_type", payload.LeaveType, "leave type is required")
	if payload.LeaveType != "" && !leave.ValidType(strings.ToLower(payload.LeaveType)) {
		v.Add("leave_type", "unknown leave type")
	}
	v.Required("reason", payload.Reason, "reason is required")
	start, startOK := v.Date("start_date", payload.StartDate)
	end, endOK := v.Date("end_date", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("start_date", start, "end_date", end)
	}
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Submit(r.Context(), user.UserID, strings.ToLower(payload.LeaveType), start, end, strings.TrimSpace(payload.Reason))
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrInvalidRange):
			api.Fail(w, http.StatusBadRequest, "invalid_range", "end date must not be before start date", reqID)
		case errors.Is(err, leave.ErrOverlap):
			api.Fail(w, http.StatusBadRequest, "leave_overlap", "an overlapping leave request already exists", reqID)
		default:
			slog.Error("leave submit failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "leave_submit_failed", "failed to submit leave request", reqID)
		}
		return
	}

	api.Created(w, result, reqID)
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	p := shared.ParsePagination(r, 20, 100)
	filter := leave.ListFilter{
		UserID:    user.UserID,
		Status:    strings.ToLower(r.URL.Query().Get("status")),
		LeaveType: strings.ToLower(r.URL.Query().Get("leaveType")),
	}

	result, err := h.Service.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		slog.Error("leave list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	p := shared.ParsePagination(r, 20, 100)
	filter := leave.ListFilter{
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		Status:    strings.ToLower(r.URL.Query().Get("status")),
		LeaveType: strings.ToLower(r.URL.Query().Get("leaveType")),
	}

	result, err := h.Service.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		slog.Error("leave list all failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	if err := h.Service.Approve(r.Context(), user.UserID, requestID); err != nil {
		h.writeDecisionError(w, err, reqID, "approve")
		return
	}
	api.SuccessMessage(w, "leave request approved", nil, reqID)
}

type rejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var payload rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.Reject(r.Context(), user.UserID, requestID, strings.TrimSpace(payload.RejectionReason)); err != nil {
		if errors.Is(err, leave.ErrReasonRequired) {
			api.Fail(w, http.StatusBadRequest, "reason_required", "rejection reason is required", reqID)
			return
		}
		h.writeDecisionError(w, err, reqID, "reject")
		return
	}
	api.SuccessMessage(w, "leave request rejected", nil, reqID)
}

func (h *Handler) writeDecisionError(w http.ResponseWriter, err error, reqID, action string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "leave_not_found", "leave request not found", reqID)
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusNotFound, "already_processed", "leave request already processed", reqID)
	default:
		slog.Error("leave decision failed", "action", action, "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "leave_decision_failed", "failed to process leave request", reqID)
	}
}
