package usershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"attendance/internal/domain/auth"
	"attendance/internal/domain/reports"
	"attendance/internal/domain/users"
	"attendance/internal/transport/http/api"
	"attendance/internal/transport/http/middleware"
	"attendance/internal/transport/http/shared"
)

type Handler struct {
	Users   *users.Service
	Auth    *auth.Service
	Reports *reports.Service
}

func NewHandler(usersSvc *users.Service, authSvc *auth.Service, reportsSvc *reports.Service) *Handler {
	return &Handler{Users: usersSvc, Auth: authSvc, Reports: reportsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/users", h.handleList)
		r.Post("/users", h.handleCreate)
		r.Get("/users/{userID}", h.handleGet)
		r.Put("/users/{userID}", h.handleUpdate)
		r.Delete("/users/{userID}", h.handleDeactivate)
		r.Get("/dashboard", h.handleDashboard)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	p := shared.ParsePagination(r, 20, 100)
	filter := users.ListFilter{
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		Department: strings.TrimSpace(r.URL.Query().Get("department")),
		Role:       strings.ToLower(r.URL.Query().Get("role")),
	}

	result, err := h.Users.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		slog.Error("user list failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", reqID)
		return
	}
	api.Success(w, result, reqID)
}

type createUserRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employee_id", payload.EmployeeID, "employee id is required")
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Email("email", payload.Email)
	v.Required("password", payload.Password, "password is required")
	if len(payload.Password) > 0 && len(payload.Password) < 6 {
		v.Add("password", "must be at least 6 characters")
	}
	v.Enum("role", payload.Role, []string{auth.RoleAdmin, auth.RoleManager, auth.RoleEmployee}, "unknown role")
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Auth.Register(r.Context(), auth.NewUser{
		EmployeeID: strings.TrimSpace(payload.EmployeeID),
		Name:       strings.TrimSpace(payload.Name),
		Email:      strings.TrimSpace(payload.Email),
		Password:   payload.Password,
		Role:       strings.ToLower(strings.TrimSpace(payload.Role)),
		Department: strings.TrimSpace(payload.Department),
		Position:   strings.TrimSpace(payload.Position),
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			api.Fail(w, http.StatusConflict, "duplicate_user", "email or employee id already registered", reqID)
			return
		}
		slog.Error("user create failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	user, err := h.Users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", reqID)
			return
		}
		slog.Error("user get failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "user_get_failed", "failed to load user", reqID)
		return
	}
	api.Success(w, user, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload users.Update
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Role != nil && !auth.ValidRole(strings.ToLower(*payload.Role)) {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", reqID)
		return
	}

	if err := h.Users.Update(r.Context(), chi.URLParam(r, "userID"), payload); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", reqID)
			return
		}
		slog.Error("user update failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", reqID)
		return
	}
	api.SuccessMessage(w, "user updated", nil, reqID)
}

// handleDeactivate soft-deletes: the account is flagged inactive and drops
// out of login and listings, history stays intact.
func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	if err := h.Users.Deactivate(r.Context(), chi.URLParam(r, "userID")); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", reqID)
			return
		}
		slog.Error("user deactivate failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "user_deactivate_failed", "failed to deactivate user", reqID)
		return
	}
	api.SuccessMessage(w, "user deactivated", nil, reqID)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	stats, err := h.Reports.AdminDashboard(r.Context())
	if err != nil {
		slog.Error("admin dashboard failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", reqID)
		return
	}
	api.Success(w, stats, reqID)
}
