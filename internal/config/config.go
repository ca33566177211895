package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server             ServerConfig
	Database           DatabaseConfig
	Elastic            ElasticConfig
	Auth               AuthConfig
	RateLimit          RateLimitConfig
	CORS               CORSConfig
	Logging            LoggingConfig
	OrganizerBootstrap OrganizerBootstrapConfig
	Environment        string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MigrationsPath string
}

type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string
}

type RateLimitConfig struct {
	PublicPerMinute      int
	ParticipantPerMinute int
	OrganizerPerMinute   int
	LoginPer15Minutes    int
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type OrganizerBootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MigrationsPath: getEnv("DATABASE_MIGRATIONS_PATH", ""),
		},
		Elastic: ElasticConfig{
			Addresses: getEnvList("ELASTIC_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTIC_USERNAME", ""),
			Password:  getEnv("ELASTIC_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			JWTIssuer: getEnv("JWT_ISSUER", "hackpoint"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:      getEnvInt("RATE_LIMIT_PUBLIC", 60),
			ParticipantPerMinute: getEnvInt("RATE_LIMIT_PARTICIPANT", 120),
			OrganizerPerMinute:   getEnvInt("RATE_LIMIT_ORGANIZER", 300),
			LoginPer15Minutes:    getEnvInt("RATE_LIMIT_LOGIN", 10),
		},
		CORS: CORSConfig{
			AllowAllOrigins: getEnvBool("CORS_ALLOW_ALL", false),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", nil),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OrganizerBootstrap: OrganizerBootstrapConfig{
			Name:     getEnv("BOOTSTRAP_ORGANIZER_NAME", ""),
			Email:    getEnv("BOOTSTRAP_ORGANIZER_EMAIL", ""),
			Password: getEnv("BOOTSTRAP_ORGANIZER_PASSWORD", ""),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Environment == "development" {
		cfg.CORS.AllowAllOrigins = true
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
