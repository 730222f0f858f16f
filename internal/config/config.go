package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port        string
	DBConn      string
	StoreDriver string
	LogLevel    string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	ClientURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	RedisURL         string
	LoginMaxAttempts int
	LoginWindow      time.Duration

	HealthSchedule string
}

// NewConfig loads configuration from a .env file (if any) and environment variables
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables only
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBConn:      getEnv("DB_CONN", ""),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 24*time.Hour, &errs),
		BcryptCost: getEnvInt("BCRYPT_COST", 10, &errs),

		ClientURL: getEnv("CLIENT_URL", "http://localhost:5173"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@localhost"),

		RedisURL:         getEnv("REDIS_URL", ""),
		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5, &errs),
		LoginWindow:      getEnvDuration("LOGIN_WINDOW", 15*time.Minute, &errs),

		HealthSchedule: getEnv("HEALTH_SCHEDULE", "@every 30s"),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required"))
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DBConn == "" {
			errs = append(errs, fmt.Errorf("DB_CONN is required"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, cfg.StoreDriver))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost))
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive"))
	}
	if cfg.LoginMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// MailEnabled reports whether welcome mail should be sent
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// LimiterEnabled reports whether failed logins are throttled
func (c *Config) LimiterEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int, errs *[]error) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, value))
		return defaultVal
	}
	return d
}
