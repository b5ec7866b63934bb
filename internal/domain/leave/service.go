package leave

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
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

type SubmitResult struct {
	ID            string `json:"id"`
	DaysRequested int    `json:"days_requested"`
}

// Submit validates the range, computes the inclusive day count and inserts the
// request. The insert itself is guarded by a NOT EXISTS subquery over the
// caller's non-rejected requests, so two overlapping submissions cannot both
// land even when they race.
func (s *Service) Submit(ctx context.Context, userID, leaveType string, startDate, endDate time.Time, reason string) (SubmitResult, error) {
	days, err := CalculateDays(startDate, endDate)
	if err != nil {
		return SubmitResult{}, err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, days_requested, reason, status)
    SELECT $1, $2, $3, $4, $5, $6, $7
    WHERE NOT EXISTS (
      SELECT 1 FROM leave_requests
      WHERE user_id = $1 AND status <> $8
        AND start_date <= $4 AND end_date >= $3
    )
    RETURNING id
  `, userID, leaveType, startDate, endDate, days, reason, StatusPending, StatusRejected).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubmitResult{}, ErrOverlap
	}
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{ID: id, DaysRequested: days}, nil
}

// Approve moves a pending request to approved. The status guard lives in the
// UPDATE itself: whichever decision reaches the database first wins, and the
// loser observes the terminal state instead of overwriting it.
func (s *Service) Approve(ctx context.Context, actorID, requestID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approved_by = $2, approved_at = now(), updated_at = now()
    WHERE id = $3 AND status = $4
  `, StatusApproved, actorID, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.decisionConflict(ctx, requestID)
	}
	return nil
}

// Reject is the symmetric terminal transition; the rejection reason is
// required and recorded alongside the actor and timestamp in one statement.
func (s *Service) Reject(ctx context.Context, actorID, requestID, rejectionReason string) error {
	if strings.TrimSpace(rejectionReason) == "" {
		return ErrReasonRequired
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, rejected_by = $2, rejected_at = now(), rejection_reason = $3, updated_at = now()
    WHERE id = $4 AND status = $5
  `, StatusRejected, actorID, rejectionReason, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.decisionConflict(ctx, requestID)
	}
	return nil
}

// decisionConflict distinguishes a missing request from one that already
// reached a terminal state.
func (s *Service) decisionConflict(ctx context.Context, requestID string) error {
	var status string
	err := s.DB.QueryRow(ctx, "SELECT status FROM leave_requests WHERE id = $1", requestID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrAlreadyProcessed
	}
	// Guarded update affected no rows while the row still reads pending: a
	// concurrent decision holds the row. It resolves to terminal either way.
	return ErrAlreadyProcessed
}

type ListFilter struct {
	UserID    string
	Search    string
	Status    string
	LeaveType string
}

type ListResult struct {
	Requests []Request `json:"requests"`
	Total    int       `json:"total"`
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) (ListResult, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND lr.user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND lr.status = $%d", len(args))
	}
	if filter.LeaveType != "" {
		args = append(args, filter.LeaveType)
		where += fmt.Sprintf(" AND lr.leave_type = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (u.name ILIKE $%d OR u.employee_id ILIKE $%d)", len(args), len(args))
	}

	var total int
	countQuery := "SELECT COUNT(1) FROM leave_requests lr JOIN users u ON lr.user_id = u.id " + where
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	query := `
    SELECT lr.id, lr.user_id, u.name, u.employee_id, COALESCE(u.department, ''),
           lr.leave_type, lr.start_date, lr.end_date, lr.days_requested, lr.reason, lr.status,
           lr.approved_by, COALESCE(approver.name, ''), lr.approved_at,
           lr.rejected_by, COALESCE(rejector.name, ''), lr.rejected_at, COALESCE(lr.rejection_reason, ''),
           lr.created_at
    FROM leave_requests lr
    JOIN users u ON lr.user_id = u.id
    LEFT JOIN users approver ON lr.approved_by = approver.id
    LEFT JOIN users rejector ON lr.rejected_by = rejector.id
    ` + where + fmt.Sprintf(" ORDER BY lr.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.UserID, &req.UserName, &req.EmployeeID, &req.Department,
			&req.LeaveType, &req.StartDate, &req.EndDate, &req.DaysRequested, &req.Reason, &req.Status,
			&req.ApprovedBy, &req.ApprovedByName, &req.ApprovedAt,
			&req.RejectedBy, &req.RejectedByName, &req.RejectedAt, &req.RejectionReason,
			&req.CreatedAt); err != nil {
			return ListResult{}, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}
	return ListResult{Requests: requests, Total: total}, nil
}
