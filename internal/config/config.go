package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds the application settings.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        logrus.Level

	StorageDriver string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	RunMigrations bool

	AllowedAssets     []string
	PasswordEncoder   string
	LedgerLockStripes int
	AuditSchedule     string
	CORSAllowedOrigin string

	Email EmailConfig
}

type EmailConfig struct {
	Enabled            bool
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	InsecureSkipVerify bool
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables alone.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":3000"),
		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "app"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		AllowedAssets:     splitList(getEnv("ALLOWED_ASSETS", "BTC,USD")),
		PasswordEncoder:   getEnv("PASSWORD_ENCODER", "plain"),
		AuditSchedule:     os.Getenv("AUDIT_SCHEDULE"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),
	}
	if _, set := os.LookupEnv("AUDIT_SCHEDULE"); !set {
		cfg.AuditSchedule = "@every 1h"
	}

	switch cfg.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", cfg.StorageDriver)
	}

	if cfg.LogLevel, err = logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.RunMigrations, err = strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true")); err != nil {
		return nil, fmt.Errorf("RUN_MIGRATIONS: %w", err)
	}
	if cfg.LedgerLockStripes, err = strconv.Atoi(getEnv("LEDGER_LOCK_STRIPES", "64")); err != nil {
		return nil, fmt.Errorf("LEDGER_LOCK_STRIPES: %w", err)
	}
	if cfg.LedgerLockStripes <= 0 {
		return nil, fmt.Errorf("LEDGER_LOCK_STRIPES: must be positive, got %d", cfg.LedgerLockStripes)
	}
	if len(cfg.AllowedAssets) == 0 {
		return nil, fmt.Errorf("ALLOWED_ASSETS: at least one asset is required")
	}

	if cfg.Email, err = emailFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func emailFromEnv() (EmailConfig, error) {
	email := EmailConfig{
		Enabled:            os.Getenv("EMAIL_SENDER_ENABLED") == "true",
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPass:           os.Getenv("SMTP_PASS"),
		InsecureSkipVerify: os.Getenv("INSECURE_SKIP_VERIFY") == "true",
	}
	if !email.Enabled {
		return email, nil
	}

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return EmailConfig{}, fmt.Errorf("SMTP_PORT: %w", err)
	}
	email.SMTPPort = port
	return email, nil
}

// DSN is the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// getEnv returns the variable or defaultValue when it is unset or empty.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
