package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hackpoint")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hackpoint")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("ELASTIC_ADDRESSES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTExpiry != 24*time.Hour {
		t.Errorf("expected default expiry 24h, got %s", cfg.Auth.JWTExpiry)
	}
	if len(cfg.Elastic.Addresses) != 1 || cfg.Elastic.Addresses[0] != "http://localhost:9200" {
		t.Errorf("unexpected elastic addresses: %v", cfg.Elastic.Addresses)
	}
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hackpoint")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.hackpoint.dev, https://admin.hackpoint.dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CORS.AllowAllOrigins {
		t.Error("production must not allow all origins")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.AllowedOrigins[1] != "https://admin.hackpoint.dev" {
		t.Errorf("unexpected origin: %s", cfg.CORS.AllowedOrigins[1])
	}
}
