package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/daisii_test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != 8001 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.JWTAlgorithm != "HS256" {
		t.Fatalf("unexpected default algorithm: %s", cfg.JWTAlgorithm)
	}
	if cfg.TokenExpiry != 30*time.Minute {
		t.Fatalf("unexpected default token expiry: %s", cfg.TokenExpiry)
	}
	if cfg.CacheTTL != time.Hour {
		t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
	}
	if cfg.DynamoDBTable != "chat_history" {
		t.Fatalf("unexpected default table: %s", cfg.DynamoDBTable)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/daisii_test")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing JWT_SECRET to fail")
	}
}

func TestLoadNormalizesAlgorithm(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ALGORITHM", " hs512 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTAlgorithm != "HS512" {
		t.Fatalf("expected normalized HS512, got %s", cfg.JWTAlgorithm)
	}
}

func TestLoadRejectsUnsupportedAlgorithm(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ALGORITHM", "RS256")

	if _, err := Load(); err == nil {
		t.Fatal("expected RS256 to be rejected")
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_EXPIRY", "-1m")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative TOKEN_EXPIRY to be rejected")
	}
}
