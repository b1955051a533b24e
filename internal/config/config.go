// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds everything the server needs to start.
type Config struct {
	ServerHost string
	ServerPort int

	DatabaseURL string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SessionBackend string
	RedisAddr      string

	FrontendURL string

	OpenRouterAPIKey string
	OpenRouterModel  string

	LogLevel string
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "127.0.0.1")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("JWT_ACCESS_TTL", "900s")
	v.SetDefault("JWT_REFRESH_TTL", "604800s")
	v.SetDefault("SESSION_BACKEND", BackendPostgres)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("OPENROUTER_MODEL", "google/gemini-2.5-flash")
	v.SetDefault("LOG_LEVEL", "info")

	accessTTL, err := parseTTL(v, "JWT_ACCESS_TTL")
	if err != nil {
		return nil, err
	}
	refreshTTL, err := parseTTL(v, "JWT_REFRESH_TTL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerHost:       v.GetString("SERVER_HOST"),
		ServerPort:       v.GetInt("SERVER_PORT"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
		SessionBackend:   strings.ToLower(v.GetString("SESSION_BACKEND")),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		FrontendURL:      v.GetString("FRONTEND_URL"),
		OpenRouterAPIKey: v.GetString("OPENROUTER_API_KEY"),
		OpenRouterModel:  v.GetString("OPENROUTER_MODEL"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseTTL reads a lifetime from the environment. A bare integer means
// seconds; anything else must be a Go duration string. Parsing as a
// duration directly would read "900" as 900 nanoseconds.
func parseTTL(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("JWT_REFRESH_TTL must be positive")
	}
	switch c.SessionBackend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", BackendPostgres, BackendRedis, c.SessionBackend)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort)
	}
	return nil
}
