package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"attendance/internal/domain/auth"
	"attendance/internal/platform/querier"
)

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

var ErrNotFound = errors.New("user not found")

type ListFilter struct {
	Search     string
	Department string
	Role       string
}

type ListResult struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// List returns users with their current-month attendance counters. Password
// hashes never leave the store.
func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) (ListResult, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (u.name ILIKE $%d OR u.email ILIKE $%d OR u.employee_id ILIKE $%d)", len(args), len(args), len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		where += fmt.Sprintf(" AND u.department = $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += fmt.Sprintf(" AND u.role = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users u "+where, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	query := `
    SELECT u.id, u.employee_id, u.name, u.email, u.role,
           COALESCE(u.department, ''), COALESCE(u.position, ''),
           COALESCE(u.phone, ''), COALESCE(u.address, ''),
           u.hire_date, u.is_active, u.created_at,
           COUNT(a.id),
           COUNT(a.id) FILTER (WHERE a.status = 'present'),
           COUNT(a.id) FILTER (WHERE a.status = 'late')
    FROM users u
    LEFT JOIN attendance_records a
      ON a.user_id = u.id
      AND date_trunc('month', a.date) = date_trunc('month', CURRENT_DATE)
    ` + where + fmt.Sprintf(`
    GROUP BY u.id
    ORDER BY u.created_at DESC
    LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.EmployeeID, &u.Name, &u.Email, &u.Role,
			&u.Department, &u.Position, &u.Phone, &u.Address,
			&u.HireDate, &u.IsActive, &u.CreatedAt,
			&u.TotalAttendance, &u.PresentCount, &u.LateCount); err != nil {
			return ListResult{}, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}
	return ListResult{Users: result, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, name, email, role,
           COALESCE(department, ''), COALESCE(position, ''),
           COALESCE(phone, ''), COALESCE(address, ''),
           hire_date, is_active, created_at
    FROM users
    WHERE id = $1
  `, id).Scan(&u.ID, &u.EmployeeID, &u.Name, &u.Email, &u.Role,
		&u.Department, &u.Position, &u.Phone, &u.Address,
		&u.HireDate, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Update applies a partial edit. Role changes pass through here only; the
// self-service surface never exposes them.
func (s *Service) Update(ctx context.Context, id string, update Update) error {
	set := "updated_at = now()"
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Role != nil {
		add("role", *update.Role)
	}
	if update.Department != nil {
		add("department", *update.Department)
	}
	if update.Position != nil {
		add("position", *update.Position)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.Address != nil {
		add("address", *update.Address)
	}
	if update.Password != nil {
		hash, err := auth.HashPassword(*update.Password)
		if err != nil {
			return err
		}
		add("password_hash", hash)
	}

	args = append(args, id)
	tag, err := s.DB.Exec(ctx, fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", set, len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes: the record stays for attendance and leave history.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET is_active = FALSE, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
