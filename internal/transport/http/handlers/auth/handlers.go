package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"attendance/internal/domain/auth"
	"attendance/internal/transport/http/api"
	"attendance/internal/transport/http/middleware"
	"attendance/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/register", h.handleRegister)
		r.Post("/refresh", h.handleRefresh)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
			return
		}
		slog.Error("login failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}

	api.Success(w, map[string]any{
		"token": result.Token,
		"user": userPayload{
			ID:         result.User.ID,
			EmployeeID: result.User.EmployeeID,
			Name:       result.User.Name,
			Email:      result.User.Email,
			Role:       result.User.Role,
			Department: result.User.Department,
			Position:   result.User.Position,
		},
	}, reqID)
}

type registerRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload registerRequest
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

	id, err := h.Service.Register(r.Context(), auth.NewUser{
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
		slog.Error("register failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "register_failed", "registration failed", reqID)
		return
	}

	api.Created(w, map[string]string{"id": id}, reqID)
}

// handleRefresh reissues a token from a still-valid one presented in the
// Authorization header. Expired tokens cannot be refreshed.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "bearer token required", reqID)
		return
	}

	token, err := h.Service.Refresh(parts[1])
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired", reqID)
		return
	}

	api.Success(w, map[string]string{"token": token}, reqID)
}
