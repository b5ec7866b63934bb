package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"attendance/internal/platform/querier"
)

type Service struct {
	DB querier.Querier

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db, now: time.Now}
}

type CheckInResult struct {
	CheckInTime time.Time `json:"checkInTime"`
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
}

type CheckOutResult struct {
	CheckOutTime time.Time `json:"checkOutTime"`
	TotalHours   float64   `json:"totalHours"`
}

// CheckIn opens today's attendance record. Lateness is derived from the
// user's schedule entry for the current weekday; without one the status
// defaults to present. The upsert keeps one row per user per day and refuses
// a second check-in even when two requests race.
func (s *Service) CheckIn(ctx context.Context, userID, location, notes string) (CheckInResult, error) {
	now := s.now()
	today := dateOf(now)
	dayOfWeek := strings.ToLower(now.Weekday().String())

	var scheduledStart string
	err := s.DB.QueryRow(ctx, `
    SELECT start_time::text FROM work_schedules
    WHERE user_id = $1 AND day_of_week = $2
  `, userID, dayOfWeek).Scan(&scheduledStart)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return CheckInResult{}, err
	}

	status := StatusForCheckIn(now, scheduledStart)

	tag, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_records (user_id, date, check_in_time, status, location, notes)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (user_id, date) DO UPDATE
      SET check_in_time = EXCLUDED.check_in_time,
          status        = EXCLUDED.status,
          location      = EXCLUDED.location,
          notes         = EXCLUDED.notes,
          updated_at    = now()
      WHERE attendance_records.check_in_time IS NULL
  `, userID, today, now, status, nullIfEmpty(location), nullIfEmpty(notes))
	if err != nil {
		return CheckInResult{}, err
	}
	if tag.RowsAffected() == 0 {
		return CheckInResult{}, ErrAlreadyCheckedIn
	}

	return CheckInResult{CheckInTime: now, Status: status, Location: location}, nil
}

// CheckOut closes today's record. Total hours come from the recorded check-in
// and check-out delta; notes are appended, never overwritten. The conditional
// update makes a double check-out lose instead of recomputing hours.
func (s *Service) CheckOut(ctx context.Context, userID, notes string) (CheckOutResult, error) {
	now := s.now()
	today := dateOf(now)

	var id string
	var checkIn, checkOut *time.Time
	var existingNotes string
	err := s.DB.QueryRow(ctx, `
    SELECT id, check_in_time, check_out_time, COALESCE(notes, '')
    FROM attendance_records
    WHERE user_id = $1 AND date = $2
  `, userID, today).Scan(&id, &checkIn, &checkOut, &existingNotes)
	if errors.Is(err, pgx.ErrNoRows) {
		return CheckOutResult{}, ErrNotCheckedIn
	}
	if err != nil {
		return CheckOutResult{}, err
	}
	if checkIn == nil {
		return CheckOutResult{}, ErrNotCheckedIn
	}
	if checkOut != nil {
		return CheckOutResult{}, ErrAlreadyCheckedOut
	}

	totalHours := TotalHours(*checkIn, now)
	merged := AppendNotes(existingNotes, notes)

	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET check_out_time = $1, total_hours = $2, notes = $3, updated_at = now()
    WHERE id = $4 AND check_out_time IS NULL
  `, now, totalHours, nullIfEmpty(merged), id)
	if err != nil {
		return CheckOutResult{}, err
	}
	if tag.RowsAffected() == 0 {
		return CheckOutResult{}, ErrAlreadyCheckedOut
	}

	return CheckOutResult{CheckOutTime: now, TotalHours: totalHours}, nil
}

// Today returns today's record for the user, or nil when none exists yet.
func (s *Service) Today(ctx context.Context, userID string) (*Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, date, check_in_time, check_out_time, total_hours, status,
           COALESCE(location, ''), COALESCE(notes, ''), created_at
    FROM attendance_records
    WHERE user_id = $1 AND date = $2
  `, userID, dateOf(s.now())).Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.TotalHours, &rec.Status, &rec.Location, &rec.Notes, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type HistoryResult struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
}

// historyWhere builds the filter for History. Month and year apply
// independently, so a month without a year matches that month across years.
func historyWhere(userID string, month, year int) (string, []any) {
	where := "WHERE a.user_id = $1"
	args := []any{userID}
	if month > 0 {
		args = append(args, month)
		where += fmt.Sprintf(" AND EXTRACT(MONTH FROM a.date) = $%d", len(args))
	}
	if year > 0 {
		args = append(args, year)
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM a.date) = $%d", len(args))
	}
	return where, args
}

func (s *Service) History(ctx context.Context, userID string, month, year, limit, offset int) (HistoryResult, error) {
	where, args := historyWhere(userID, month, year)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM attendance_records a "+where, args...).Scan(&total); err != nil {
		return HistoryResult{}, err
	}

	query := `
    SELECT a.id, a.user_id, u.name, u.employee_id, a.date, a.check_in_time, a.check_out_time,
           a.total_hours, a.status, COALESCE(a.location, ''), COALESCE(a.notes, ''), a.created_at
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    ` + where + fmt.Sprintf(" ORDER BY a.date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return HistoryResult{}, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.UserName, &rec.EmployeeID, &rec.Date,
			&rec.CheckInTime, &rec.CheckOutTime, &rec.TotalHours, &rec.Status,
			&rec.Location, &rec.Notes, &rec.CreatedAt); err != nil {
			return HistoryResult{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Records: records, Total: total}, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
