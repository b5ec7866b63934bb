package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"attendance/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID           string
	EmployeeID   string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Department   string
	Position     string
}

type NewUser struct {
	EmployeeID string
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	Position   string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var u AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, name, email, password_hash, role,
           COALESCE(department, ''), COALESCE(position, '')
    FROM users
    WHERE email = $1 AND is_active = TRUE
  `, email).Scan(&u.ID, &u.EmployeeID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthUser{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u NewUser) (string, error) {
	hash, err := HashPassword(u.Password)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO users (employee_id, name, email, password_hash, role, department, position)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, u.EmployeeID, u.Name, u.Email, hash, u.Role, nullIfEmpty(u.Department), nullIfEmpty(u.Position)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicateUser
		}
		return "", err
	}
	return id, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
