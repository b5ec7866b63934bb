package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance/internal/domain/auth"
)

const testSecret = "middleware-test-secret"

func issueToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:     "user-1",
		EmployeeID: "EMP001",
		Role:       role,
		Name:       "Test User",
		Email:      "test@example.com",
	}, ttl)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func TestAuthSetsUser(t *testing.T) {
	var got *auth.Claims
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUser(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/attendance/today", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleEmployee, time.Hour))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("claims not set in context")
	}
	if got.UserID != "user-1" || got.Role != auth.RoleEmployee {
		t.Errorf("unexpected claims: %+v", got)
	}
}

func TestAuthPassesThroughBadToken(t *testing.T) {
	called := false
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetUser(r.Context()); ok {
			t.Error("claims should not be set for an invalid token")
		}
	}))

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !called {
			t.Errorf("handler not reached for header %q", header)
		}
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Error("expired token should not authenticate")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleEmployee, -time.Minute))
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireRole(t *testing.T) {
	protected := Auth(testSecret)(RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	// no token
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest("POST", "/api/leave-requests/1/approve", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	// wrong role
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/leave-requests/1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleManager, time.Hour))
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("manager: status = %d, want 403", rec.Code)
	}

	// allowed role
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/leave-requests/1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.RoleAdmin, time.Hour))
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin: status = %d, want 204", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
