package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the identity assertion carried by every bearer token. Tokens are
// not persisted server side; expiry is the only invalidation mechanism.
type Claims struct {
	UserID     string `json:"uid"`
	EmployeeID string `json:"employeeId"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry. Only HS256 tokens are accepted.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Refresh issues a new token with the same identity claims and a fresh
// validity window. The old token must still verify; expired tokens cannot be
// refreshed.
func Refresh(secret, oldToken string, ttl time.Duration) (string, error) {
	claims, err := ParseToken(secret, oldToken)
	if err != nil {
		return "", err
	}
	return GenerateToken(secret, Claims{
		UserID:     claims.UserID,
		EmployeeID: claims.EmployeeID,
		Role:       claims.Role,
		Name:       claims.Name,
		Email:      claims.Email,
	}, ttl)
}
