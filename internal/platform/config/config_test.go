package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Addr:               ":8080",
		DatabaseURL:        "postgres://localhost/attendance",
		JWTSecret:          "test-secret",
		TokenTTL:           24 * time.Hour,
		Environment:        "development",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestValidateRejectsMissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}

func TestValidateRejectsDefaultSeedPasswordInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.RunSeed = true
	cfg.SeedAdminPassword = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty seed password in production")
	}
}

func TestValidateRejectsTinyTokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.TokenTTL = time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sub-minute token TTL")
	}
}
