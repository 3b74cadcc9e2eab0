package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sitepulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Backend Backend
	Server  Server
	Store   Store
	Upload  Upload
	Ops     Ops
}

// Backend holds settings for the remote progress API
type Backend struct {
	BaseURL string `validate:"required"`
	Timeout time.Duration
}

// Server holds web server settings
type Server struct {
	Port           string `validate:"required"`
	GinMode        string
	AllowedOrigins []string
	CookieSecure   bool
}

// Store selects and configures the visitor state store
type Store struct {
	Driver      string // "memory", "redis" or "postgres"
	RedisAddr   string
	RedisDB     int
	DatabaseURL string
	SessionTTL  time.Duration
	ReportTTL   time.Duration
}

// Upload holds CSV upload limits
type Upload struct {
	MaxCSVBytes int64
}

// Ops holds the secondary ops listener settings
type Ops struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Backend: Backend{
			BaseURL: os.Getenv("BACKEND_BASE_URL"),
			Timeout: getEnvDurationOrDefault("BACKEND_TIMEOUT", 30*time.Second),
		},
		Server: Server{
			Port:           getEnvOrDefault("PORT", "8080"),
			GinMode:        getEnvOrDefault("GIN_MODE", "release"),
			AllowedOrigins: splitCSV(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
			CookieSecure:   getEnvBoolOrDefault("COOKIE_SECURE", false),
		},
		Store: Store{
			Driver:      getEnvOrDefault("STORE_DRIVER", "memory"),
			RedisAddr:   getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			RedisDB:     getEnvIntOrDefault("REDIS_DB", 0),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SessionTTL:  getEnvDurationOrDefault("SESSION_TTL", 12*time.Hour),
			ReportTTL:   getEnvDurationOrDefault("REPORT_TTL", 24*time.Hour),
		},
		Upload: Upload{
			MaxCSVBytes: getEnvInt64OrDefault("MAX_CSV_BYTES", 5<<20),
		},
		Ops: Ops{
			Port:    getEnvOrDefault("OPS_PORT", "9090"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(c *Config) error {
	if c.Backend.BaseURL == "" {
		return errors.ConfigInvalid("BACKEND_BASE_URL is required")
	}
	switch c.Store.Driver {
	case "memory", "redis":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return errors.ConfigInvalid("STORE_DRIVER must be one of memory, redis, postgres")
	}
	if c.Upload.MaxCSVBytes <= 0 {
		return errors.ConfigInvalid("MAX_CSV_BYTES must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64OrDefault(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
