package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: "u1", EmployeeID: "EMP001", Role: RoleEmployee, Name: "Budi Santoso", Email: "budi@example.com"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.EmployeeID != claims.EmployeeID ||
		parsed.Role != claims.Role || parsed.Name != claims.Name || parsed.Email != claims.Email {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestRefreshKeepsIdentityAndExtendsExpiry(t *testing.T) {
	secret := "test-secret"
	old, err := GenerateToken(secret, Claims{UserID: "u1", EmployeeID: "EMP001", Role: RoleAdmin, Name: "Admin", Email: "admin@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	oldClaims, err := ParseToken(secret, old)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	refreshed, err := Refresh(secret, old, 24*time.Hour)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	newClaims, err := ParseToken(secret, refreshed)
	if err != nil {
		t.Fatalf("parse refreshed error: %v", err)
	}

	if newClaims.UserID != oldClaims.UserID || newClaims.EmployeeID != oldClaims.EmployeeID ||
		newClaims.Role != oldClaims.Role || newClaims.Email != oldClaims.Email {
		t.Fatalf("identity claims changed on refresh: %+v vs %+v", newClaims, oldClaims)
	}
	if !newClaims.ExpiresAt.After(oldClaims.ExpiresAt.Time) {
		t.Fatalf("expected refreshed expiry %v after original %v", newClaims.ExpiresAt, oldClaims.ExpiresAt)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	secret := "test-secret"
	old, err := GenerateToken(secret, Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := Refresh(secret, old, 24*time.Hour); err == nil {
		t.Fatal("expected refresh of expired token to fail")
	}
}
