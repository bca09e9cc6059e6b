// Package config loads application configuration from the environment.
// A .env file is honored in development; real deployments set variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the server.
type Config struct {
	// HTTP
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Storage. "postgres" (default) or "memory" for a single-process
	// deployment without a database.
	StorageBackend string
	DatabaseURL    string
	DBMaxConns     int32

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Logging
	LogLevel string
	AppEnv   string

	// Reception register float kept at monthly close when the caller
	// does not supply one explicitly.
	DefaultFixedFund string
}

// Load reads configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	// Missing .env is fine outside development.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		StorageBackend:   getEnv("STORAGE_BACKEND", "postgres"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       int32(getEnvInt("DB_MAX_CONNS", 25)),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           getEnvDuration("JWT_TTL", 12*time.Hour),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AppEnv:           getEnv("APP_ENV", "development"),
		DefaultFixedFund: getEnv("DEFAULT_FIXED_FUND", "5000"),
	}

	switch cfg.StorageBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
