package schedulehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"attendance/internal/domain/auth"
	"attendance/internal/domain/schedule"
	"attendance/internal/transport/http/api"
	"attendance/internal/transport/http/middleware"
)

type Handler struct {
	Service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/schedule", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleReplace)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/users", h.handleUsers)
	})
}

// handleGet returns the caller's weekly schedule, or an admin-requested
// user's schedule via the userId query parameter. A default week is created
// on first access.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	targetID := user.UserID
	if requested := strings.TrimSpace(r.URL.Query().Get("userId")); requested != "" && requested != user.UserID {
		if !auth.Permit(user, auth.RoleAdmin) {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's schedule", reqID)
			return
		}
		targetID = requested
	}

	entries, err := h.Service.ForUser(r.Context(), targetID)
	if err != nil {
		slog.Error("schedule load failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "schedule_load_failed", "failed to load schedule", reqID)
		return
	}
	api.Success(w, entries, reqID)
}

type replaceRequest struct {
	UserID  string           `json:"userId"`
	Entries []schedule.Entry `json:"entries"`
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if strings.TrimSpace(payload.UserID) == "" {
		api.Fail(w, http.StatusBadRequest, "user_required", "userId is required", reqID)
		return
	}

	if err := h.Service.Replace(r.Context(), payload.UserID, payload.Entries); err != nil {
		if errors.Is(err, schedule.ErrNoEntries) {
			api.Fail(w, http.StatusBadRequest, "no_entries", "no schedule entries provided", reqID)
			return
		}
		if errors.Is(err, schedule.ErrInvalidEntry) {
			api.Fail(w, http.StatusBadRequest, "invalid_entry", err.Error(), reqID)
			return
		}
		slog.Error("schedule replace failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "schedule_save_failed", "failed to save schedule", reqID)
		return
	}
	api.SuccessMessage(w, "schedule saved", nil, reqID)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	users, err := h.Service.ScheduleUsers(r.Context())
	if err != nil {
		slog.Error("schedule users failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "schedule_users_failed", "failed to list users", reqID)
		return
	}
	api.Success(w, users, reqID)
}
