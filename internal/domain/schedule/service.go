package schedule

import (
	"context"
	"errors"
	"fmt"

	"attendance/internal/platform/querier"
)

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

var ErrNoEntries = errors.New("no schedule entries")

// ErrInvalidEntry marks a replacement refused because of a malformed entry.
// Wrapped errors name the offending entry.
var ErrInvalidEntry = errors.New("invalid schedule entry")

func validateEntry(i int, entry Entry) error {
	switch {
	case !ValidDayOfWeek(entry.DayOfWeek):
		return fmt.Errorf("%w: entry %d has unknown day %q", ErrInvalidEntry, i, entry.DayOfWeek)
	case entry.StartTime == "" || entry.EndTime == "":
		return fmt.Errorf("%w: entry %d (%s) is missing start or end time", ErrInvalidEntry, i, entry.DayOfWeek)
	case !ValidDayType(entry.DayType):
		return fmt.Errorf("%w: entry %d (%s) has unknown day type %q", ErrInvalidEntry, i, entry.DayOfWeek, entry.DayType)
	}
	return nil
}

// ForUser returns the user's weekly schedule, creating the default week
// inside a transaction on first access so concurrent readers never observe a
// partially written week.
func (s *Service) ForUser(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, entry := range DefaultWeek() {
		if _, err := tx.Exec(ctx, `
      INSERT INTO work_schedules (user_id, day_of_week, start_time, end_time, is_working_day, day_type)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (user_id, day_of_week) DO NOTHING
    `, userID, entry.DayOfWeek, entry.StartTime, entry.EndTime, entry.IsWorkingDay, entry.DayType); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.list(ctx, userID)
}

// Replace swaps the user's whole week in one transaction. Any malformed
// entry refuses the whole replacement, so the delete never becomes visible
// and the stored week is never a partial write.
func (s *Service) Replace(ctx context.Context, userID string, entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	for i, entry := range entries {
		if err := validateEntry(i, entry); err != nil {
			return err
		}
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM work_schedules WHERE user_id = $1", userID); err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := tx.Exec(ctx, `
      INSERT INTO work_schedules (user_id, day_of_week, start_time, end_time, is_working_day, day_type)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, userID, entry.DayOfWeek, entry.StartTime, entry.EndTime, entry.IsWorkingDay, entry.DayType); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Service) list(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ws.id, ws.user_id, u.name, u.employee_id, ws.day_of_week, ws.start_time::text, ws.end_time::text,
           ws.is_working_day, ws.day_type, ws.created_at
    FROM work_schedules ws
    JOIN users u ON ws.user_id = u.id
    WHERE ws.user_id = $1
    ORDER BY array_position($2::text[], ws.day_of_week)
  `, userID, DaysOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserName, &entry.EmployeeID, &entry.DayOfWeek,
			&entry.StartTime, &entry.EndTime, &entry.IsWorkingDay, &entry.DayType, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ScheduleUsers lists active users for the admin schedule editor.
func (s *Service) ScheduleUsers(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, name, COALESCE(department, '')
    FROM users
    WHERE is_active = TRUE
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []map[string]any
	for rows.Next() {
		var id, employeeID, name, department string
		if err := rows.Scan(&id, &employeeID, &name, &department); err != nil {
			return nil, err
		}
		users = append(users, map[string]any{
			"id":         id,
			"employeeId": employeeID,
			"name":       name,
			"department": department,
		})
	}
	return users, rows.Err()
}
