package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"attendance/internal/app/server"
	"attendance/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           24 * time.Hour,
		Environment:        "test",
		MigrationsDir:      "../../../../migrations",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d (error: %+v)", method, url, resp.StatusCode, wantStatus, env.Error)
	}
	return env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected token")
	}
	return payload.Token
}

func registerEmployee(t *testing.T, client *http.Client, baseURL, adminToken string) (email, password string) {
	t.Helper()
	nonce := time.Now().UnixNano()
	email = fmt.Sprintf("journey-%d@example.com", nonce)
	password = "Employee123!"
	doJSON(t, client, http.MethodPost, baseURL+"/api/admin/users", adminToken, map[string]any{
		"employee_id": fmt.Sprintf("EMP%d", nonce),
		"name":       "Journey Tester",
		"email":      email,
		"password":   password,
		"role":       "employee",
		"department": "Engineering",
	}, http.StatusCreated)
	return email, password
}

func TestLeaveApprovalJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	email, password := registerEmployee(t, client, ts.URL, adminToken)
	employeeToken := login(t, client, ts.URL, email, password)

	start := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	end := time.Now().AddDate(0, 1, 4).Format("2006-01-02")
	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/leave/request", employeeToken, map[string]any{
		"leave_type": "vacation",
		"start_date": start,
		"end_date":   end,
		"reason":     "family trip",
	}, http.StatusCreated)

	var submitted struct {
		ID            string `json:"id"`
		DaysRequested int    `json:"days_requested"`
	}
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}
	if submitted.DaysRequested != 5 {
		t.Errorf("days_requested = %d, want 5", submitted.DaysRequested)
	}

	// overlapping resubmission is refused
	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave/request", employeeToken, map[string]any{
		"leave_type": "personal",
		"start_date": start,
		"end_date":   start,
		"reason":     "same window",
	}, http.StatusBadRequest)

	// employees cannot decide requests
	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/"+submitted.ID+"/approve", employeeToken, nil, http.StatusForbidden)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/"+submitted.ID+"/approve", adminToken, nil, http.StatusOK)

	// the decision is final
	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/"+submitted.ID+"/approve", adminToken, nil, http.StatusNotFound)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/"+submitted.ID+"/reject", adminToken, map[string]any{
		"rejection_reason": "too late",
	}, http.StatusNotFound)

	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/leave/request", employeeToken, nil, http.StatusOK)
	var list struct {
		Requests []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	found := false
	for _, req := range list.Requests {
		if req.ID == submitted.ID {
			found = true
			if req.Status != "approved" {
				t.Errorf("status = %q, want approved", req.Status)
			}
		}
	}
	if !found {
		t.Error("submitted request missing from own list")
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/00000000-0000-0000-0000-000000000000/approve", adminToken, nil, http.StatusNotFound)
}

func TestRejectRequiresReason(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	email, password := registerEmployee(t, client, ts.URL, adminToken)
	employeeToken := login(t, client, ts.URL, email, password)

	start := time.Now().AddDate(0, 2, 0).Format("2006-01-02")
	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/leave/request", employeeToken, map[string]any{
		"leave_type": "sick",
		"start_date": start,
		"end_date":   start,
		"reason":     "flu",
	}, http.StatusCreated)
	var submitted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/"+submitted.ID+"/reject", adminToken, map[string]any{
		"rejection_reason": "   ",
	}, http.StatusBadRequest)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/leave-requests/"+submitted.ID+"/reject", adminToken, map[string]any{
		"rejection_reason": "coverage needed",
	}, http.StatusOK)

	// the listing names who rejected it
	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/leave/all?status=rejected", adminToken, nil, http.StatusOK)
	var list struct {
		Requests []struct {
			ID              string `json:"id"`
			RejectedByName  string `json:"rejected_by_name"`
			RejectionReason string `json:"rejection_reason"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	found := false
	for _, req := range list.Requests {
		if req.ID == submitted.ID {
			found = true
			if req.RejectedByName == "" {
				t.Error("expected rejected_by_name to carry the decider's name")
			}
			if req.RejectionReason != "coverage needed" {
				t.Errorf("rejection_reason = %q", req.RejectionReason)
			}
		}
	}
	if !found {
		t.Error("rejected request missing from listing")
	}
}

func TestCheckInCheckOutFlow(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	email, password := registerEmployee(t, client, ts.URL, adminToken)
	employeeToken := login(t, client, ts.URL, email, password)

	// nothing recorded yet
	doJSON(t, client, http.MethodPost, ts.URL+"/api/attendance/check-out", employeeToken, nil, http.StatusBadRequest)

	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/attendance/check-in", employeeToken, map[string]any{
		"location": "HQ",
	}, http.StatusOK)
	var checkedIn struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &checkedIn); err != nil {
		t.Fatalf("decode check-in data: %v", err)
	}
	if checkedIn.Status == "" {
		t.Error("expected a derived status on check-in")
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/attendance/check-in", employeeToken, nil, http.StatusBadRequest)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/attendance/check-out", employeeToken, map[string]any{
		"notes": "done for today",
	}, http.StatusOK)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/attendance/check-out", employeeToken, nil, http.StatusBadRequest)

	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/attendance/today", employeeToken, nil, http.StatusOK)
	var today struct {
		CheckInTime  *time.Time `json:"checkInTime"`
		CheckOutTime *time.Time `json:"checkOutTime"`
	}
	if err := json.Unmarshal(env.Data, &today); err != nil {
		t.Fatalf("decode today data: %v", err)
	}
	if today.CheckInTime == nil || today.CheckOutTime == nil {
		t.Errorf("today's record incomplete: %+v", today)
	}
}

func TestTokenRefresh(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/refresh", adminToken, nil, http.StatusOK)
	var refreshed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &refreshed); err != nil {
		t.Fatalf("decode refresh data: %v", err)
	}
	if refreshed.Token == "" {
		t.Fatal("expected refreshed token")
	}

	// the refreshed token authenticates
	doJSON(t, client, http.MethodGet, ts.URL+"/api/admin/dashboard", refreshed.Token, nil, http.StatusOK)

	// garbage cannot be refreshed
	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/refresh", "not-a-token", nil, http.StatusUnauthorized)
}

func TestScheduleDefaultsAndReplace(t *testing.T) {
	app, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	email, password := registerEmployee(t, client, ts.URL, adminToken)
	employeeToken := login(t, client, ts.URL, email, password)

	env := doJSON(t, client, http.MethodGet, ts.URL+"/api/schedule", employeeToken, nil, http.StatusOK)
	var entries []struct {
		DayOfWeek    string `json:"dayOfWeek"`
		IsWorkingDay bool   `json:"isWorkingDay"`
		DayType      string `json:"dayType"`
		UserID       string `json:"userId"`
	}
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("decode schedule data: %v", err)
	}
	if len(entries) != 7 {
		t.Fatalf("default schedule has %d entries, want 7", len(entries))
	}
	for _, entry := range entries {
		working := entry.DayOfWeek != "saturday" && entry.DayOfWeek != "sunday"
		if entry.IsWorkingDay != working {
			t.Errorf("%s: isWorkingDay = %v", entry.DayOfWeek, entry.IsWorkingDay)
		}
	}

	var userID string
	if err := app.Pool.QueryRow(context.Background(), "SELECT id FROM users WHERE email = $1", email).Scan(&userID); err != nil {
		t.Fatalf("load user id: %v", err)
	}

	// a malformed entry refuses the whole replacement
	doJSON(t, client, http.MethodPost, ts.URL+"/api/schedule", adminToken, map[string]any{
		"userId": userID,
		"entries": []map[string]any{
			{"dayOfWeek": "monday", "startTime": "08:00:00", "endTime": "16:00:00", "isWorkingDay": true, "dayType": "kerja"},
			{"dayOfWeek": "notaday", "startTime": "08:00:00", "endTime": "16:00:00", "isWorkingDay": true, "dayType": "kerja"},
		},
	}, http.StatusBadRequest)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/schedule", adminToken, map[string]any{
		"userId": userID,
		"entries": []map[string]any{
			{"dayOfWeek": "monday", "startTime": "08:00:00", "endTime": "16:00:00", "isWorkingDay": true, "dayType": "kerja"},
		},
	}, http.StatusOK)

	// employees cannot rewrite schedules
	doJSON(t, client, http.MethodPost, ts.URL+"/api/schedule", employeeToken, map[string]any{
		"userId":  userID,
		"entries": []map[string]any{},
	}, http.StatusForbidden)

	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/schedule?userId="+userID, adminToken, nil, http.StatusOK)
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("decode replaced schedule: %v", err)
	}
	if len(entries) != 1 || entries[0].DayOfWeek != "monday" {
		t.Errorf("replaced schedule unexpected: %+v", entries)
	}
}

func TestReportsAndExport(t *testing.T) {
	app, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	email, password := registerEmployee(t, client, ts.URL, adminToken)
	employeeToken := login(t, client, ts.URL, email, password)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/attendance/check-in", employeeToken, nil, http.StatusOK)

	var adminID string
	if err := app.Pool.QueryRow(context.Background(), "SELECT id FROM users WHERE email = $1", cfg.SeedAdminEmail).Scan(&adminID); err != nil {
		t.Fatalf("load admin id: %v", err)
	}

	// every authenticated user can read reports, scoped to themselves
	env := doJSON(t, client, http.MethodGet, ts.URL+"/api/reports/attendance", employeeToken, nil, http.StatusOK)
	var report struct {
		Summary struct {
			TotalDays int `json:"totalDays"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.TotalDays < 1 {
		t.Errorf("employee's own report should include today's check-in, got %d days", report.Summary.TotalDays)
	}

	// non-admins cannot widen the scope to someone else
	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/reports/attendance?userId="+adminID, employeeToken, nil, http.StatusOK)
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.TotalDays < 1 {
		t.Errorf("userId parameter must be ignored for non-admins, got %d days", report.Summary.TotalDays)
	}

	doJSON(t, client, http.MethodGet, ts.URL+"/api/reports/attendance", adminToken, nil, http.StatusOK)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/reports/leave", employeeToken, nil, http.StatusOK)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/reports/leave", adminToken, nil, http.StatusOK)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/dashboard/stats", employeeToken, nil, http.StatusOK)

	start := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	end := time.Now().Format("2006-01-02")
	for _, reportType := range []string{"attendance", "leave"} {
		for _, format := range []string{"csv", "pdf"} {
			raw, _ := json.Marshal(map[string]any{"reportType": reportType, "format": format, "startDate": start, "endDate": end})
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/reports/export", bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("build export request: %v", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+adminToken)
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("export %s %s: %v", reportType, format, err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("export %s %s: status = %d", reportType, format, resp.StatusCode)
			}
			if cd := resp.Header.Get("Content-Disposition"); cd == "" {
				t.Errorf("export %s %s: missing Content-Disposition", reportType, format)
			}
			resp.Body.Close()
		}
	}

	// an unknown report type is refused
	doJSON(t, client, http.MethodPost, ts.URL+"/api/reports/export", adminToken, map[string]any{
		"reportType": "payroll", "format": "csv", "startDate": start, "endDate": end,
	}, http.StatusBadRequest)
}

func TestRegisterValidation(t *testing.T) {
	_, ts, _ := startApp(t)
	client := ts.Client()

	nonce := time.Now().UnixNano()
	base := map[string]any{
		"employee_id": fmt.Sprintf("REG%d", nonce),
		"name":        "Register Tester",
		"email":       fmt.Sprintf("register-%d@example.com", nonce),
		"password":    "secret1",
		"role":        "employee",
	}
	payload := func(overrides map[string]any) map[string]any {
		out := map[string]any{}
		for k, v := range base {
			out[k] = v
		}
		for k, v := range overrides {
			out[k] = v
		}
		return out
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", "",
		payload(map[string]any{"email": "not-an-email"}), http.StatusBadRequest)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", "",
		payload(map[string]any{"email": "spaced @example.com"}), http.StatusBadRequest)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", "",
		payload(map[string]any{"password": "12345"}), http.StatusBadRequest)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", "",
		payload(map[string]any{"password": "123456"}), http.StatusCreated)

	// same email and employee id cannot register twice
	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", "", payload(nil), http.StatusConflict)
}

func TestAdminUserLifecycle(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	nonce := time.Now().UnixNano()
	email := fmt.Sprintf("lifecycle-%d@example.com", nonce)
	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/admin/users", adminToken, map[string]any{
		"employee_id": fmt.Sprintf("LIF%d", nonce),
		"name":       "Lifecycle User",
		"email":      email,
		"password":   "Lifecycle123!",
		"role":       "manager",
	}, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode create data: %v", err)
	}

	// duplicate email is refused
	doJSON(t, client, http.MethodPost, ts.URL+"/api/admin/users", adminToken, map[string]any{
		"employee_id": fmt.Sprintf("LIF%d-b", nonce),
		"name":       "Duplicate",
		"email":      email,
		"password":   "Lifecycle123!",
		"role":       "employee",
	}, http.StatusConflict)

	doJSON(t, client, http.MethodPut, ts.URL+"/api/admin/users/"+created.ID, adminToken, map[string]any{
		"department": "Operations",
	}, http.StatusOK)

	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/admin/users/"+created.ID, adminToken, nil, http.StatusOK)
	var fetched struct {
		Department string `json:"department"`
		IsActive   bool   `json:"isActive"`
	}
	if err := json.Unmarshal(env.Data, &fetched); err != nil {
		t.Fatalf("decode user data: %v", err)
	}
	if fetched.Department != "Operations" {
		t.Errorf("department = %q, want Operations", fetched.Department)
	}

	doJSON(t, client, http.MethodDelete, ts.URL+"/api/admin/users/"+created.ID, adminToken, nil, http.StatusOK)

	// deactivated users cannot log in
	doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "Lifecycle123!",
	}, http.StatusUnauthorized)
}
