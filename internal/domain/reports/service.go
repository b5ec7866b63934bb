package reports

import (
	"context"
	"fmt"
	"time"

	"attendance/internal/platform/querier"
)

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

// Scope restricts report queries. Non-admin callers are always self-scoped;
// admins may widen to a user or a department.
type Scope struct {
	UserID     string
	Department string
	StartDate  time.Time
	EndDate    time.Time
}

type AttendanceSummary struct {
	TotalDays   int     `json:"totalDays"`
	PresentDays int     `json:"presentDays"`
	LateDays    int     `json:"lateDays"`
	AbsentDays  int     `json:"absentDays"`
	AvgHours    float64 `json:"avgHours"`
	TotalHours  float64 `json:"totalHours"`
}

type DailyCount struct {
	Date    time.Time `json:"date"`
	Total   int       `json:"total"`
	Present int       `json:"present"`
	Late    int       `json:"late"`
	Absent  int       `json:"absent"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type AttendanceReport struct {
	Summary      AttendanceSummary `json:"summary"`
	Daily        []DailyCount      `json:"daily"`
	Distribution []StatusCount     `json:"distribution"`
}

func (s *Scope) whereClause() (string, []any) {
	where := "WHERE 1=1"
	args := []any{}
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() {
		args = append(args, s.StartDate, s.EndDate)
		where += fmt.Sprintf(" AND a.date BETWEEN $%d AND $%d", len(args)-1, len(args))
	}
	if s.UserID != "" {
		args = append(args, s.UserID)
		where += fmt.Sprintf(" AND a.user_id = $%d", len(args))
	}
	if s.Department != "" {
		args = append(args, s.Department)
		where += fmt.Sprintf(" AND u.department = $%d", len(args))
	}
	return where, args
}

func (s *Service) Attendance(ctx context.Context, scope Scope) (AttendanceReport, error) {
	where, args := scope.whereClause()

	var report AttendanceReport
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE a.status = 'present'),
           COUNT(1) FILTER (WHERE a.status = 'late'),
           COUNT(1) FILTER (WHERE a.status = 'absent'),
           COALESCE(AVG(a.total_hours), 0),
           COALESCE(SUM(a.total_hours), 0)
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    `+where, args...).Scan(&report.Summary.TotalDays, &report.Summary.PresentDays,
		&report.Summary.LateDays, &report.Summary.AbsentDays,
		&report.Summary.AvgHours, &report.Summary.TotalHours)
	if err != nil {
		return AttendanceReport{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT a.date, COUNT(1),
           COUNT(1) FILTER (WHERE a.status = 'present'),
           COUNT(1) FILTER (WHERE a.status = 'late'),
           COUNT(1) FILTER (WHERE a.status = 'absent')
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    `+where+`
    GROUP BY a.date
    ORDER BY a.date
  `, args...)
	if err != nil {
		return AttendanceReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Date, &d.Total, &d.Present, &d.Late, &d.Absent); err != nil {
			return AttendanceReport{}, err
		}
		report.Daily = append(report.Daily, d)
	}
	if err := rows.Err(); err != nil {
		return AttendanceReport{}, err
	}

	statusRows, err := s.DB.Query(ctx, `
    SELECT a.status, COUNT(1)
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    `+where+`
    GROUP BY a.status
    ORDER BY a.status
  `, args...)
	if err != nil {
		return AttendanceReport{}, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var sc StatusCount
		if err := statusRows.Scan(&sc.Status, &sc.Count); err != nil {
			return AttendanceReport{}, err
		}
		report.Distribution = append(report.Distribution, sc)
	}
	return report, statusRows.Err()
}

type LeaveReport struct {
	Total    int           `json:"total"`
	Pending  int           `json:"pending"`
	Approved int           `json:"approved"`
	Rejected int           `json:"rejected"`
	ByType   []StatusCount `json:"byType"`
}

func (s *Service) Leave(ctx context.Context, scope Scope) (LeaveReport, error) {
	where := "WHERE 1=1"
	args := []any{}
	if !scope.StartDate.IsZero() && !scope.EndDate.IsZero() {
		args = append(args, scope.StartDate, scope.EndDate)
		where += fmt.Sprintf(" AND lr.start_date <= $%d AND lr.end_date >= $%d", len(args), len(args)-1)
	}
	if scope.UserID != "" {
		args = append(args, scope.UserID)
		where += fmt.Sprintf(" AND lr.user_id = $%d", len(args))
	}
	if scope.Department != "" {
		args = append(args, scope.Department)
		where += fmt.Sprintf(" AND u.department = $%d", len(args))
	}

	var report LeaveReport
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE lr.status = 'pending'),
           COUNT(1) FILTER (WHERE lr.status = 'approved'),
           COUNT(1) FILTER (WHERE lr.status = 'rejected')
    FROM leave_requests lr
    JOIN users u ON lr.user_id = u.id
    `+where, args...).Scan(&report.Total, &report.Pending, &report.Approved, &report.Rejected)
	if err != nil {
		return LeaveReport{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT lr.leave_type, COUNT(1)
    FROM leave_requests lr
    JOIN users u ON lr.user_id = u.id
    `+where+`
    GROUP BY lr.leave_type
    ORDER BY lr.leave_type
  `, args...)
	if err != nil {
		return LeaveReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return LeaveReport{}, err
		}
		report.ByType = append(report.ByType, sc)
	}
	return report, rows.Err()
}

type DashboardStats struct {
	TotalDays   int `json:"totalDays"`
	PresentDays int `json:"presentDays"`
	AbsentDays  int `json:"absentDays"`
	LateCount   int `json:"lateCount"`
}

// Dashboard returns the caller's current-month counters.
func (s *Service) Dashboard(ctx context.Context, userID string) (DashboardStats, error) {
	var stats DashboardStats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'present'),
           COUNT(1) FILTER (WHERE status = 'absent'),
           COUNT(1) FILTER (WHERE status = 'late')
    FROM attendance_records
    WHERE user_id = $1
      AND date_trunc('month', date) = date_trunc('month', CURRENT_DATE)
  `, userID).Scan(&stats.TotalDays, &stats.PresentDays, &stats.AbsentDays, &stats.LateCount)
	if err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

type AdminDashboard struct {
	ActiveUsers   int `json:"activeUsers"`
	CheckedInNow  int `json:"checkedInToday"`
	LateToday     int `json:"lateToday"`
	PendingLeave  int `json:"pendingLeave"`
	ApprovedLeave int `json:"approvedLeaveToday"`
}

func (s *Service) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	var d AdminDashboard
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM users WHERE is_active = TRUE),
      (SELECT COUNT(1) FROM attendance_records WHERE date = CURRENT_DATE AND check_in_time IS NOT NULL),
      (SELECT COUNT(1) FROM attendance_records WHERE date = CURRENT_DATE AND status = 'late'),
      (SELECT COUNT(1) FROM leave_requests WHERE status = 'pending'),
      (SELECT COUNT(1) FROM leave_requests WHERE status = 'approved' AND start_date <= CURRENT_DATE AND end_date >= CURRENT_DATE)
  `).Scan(&d.ActiveUsers, &d.CheckedInNow, &d.LateToday, &d.PendingLeave, &d.ApprovedLeave)
	if err != nil {
		return AdminDashboard{}, err
	}
	return d, nil
}
