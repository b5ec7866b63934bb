package auth

import (
	"context"
	"time"
)

type Service struct {
	Store  *Store
	Secret string
	TTL    time.Duration
}

func NewService(store *Store, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl}
}

type LoginResult struct {
	Token string
	User  AuthUser
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Role:       user.Role,
		Name:       user.Name,
		Email:      user.Email,
	}, s.TTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

func (s *Service) Register(ctx context.Context, u NewUser) (string, error) {
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	return s.Store.CreateUser(ctx, u)
}

func (s *Service) Refresh(oldToken string) (string, error) {
	return Refresh(s.Secret, oldToken, s.TTL)
}
