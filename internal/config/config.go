package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host              string
	Port              string
	User              string
	Password          string
	DBName            string
	SSLMode           string
	ConnMaxLifetime   time.Duration
	ConnectRetryDelay time.Duration
	MaxOpenConns      int
	MaxIdleConns      int
	ConnectAttempts   int
	Migrate           bool
}

// RedisConfig holds the distributed lock backend. An empty Addr disables it.
type RedisConfig struct {
	Addr       string
	Password   string
	LockExpiry time.Duration
	RetryDelay time.Duration
	DB         int
	LockTries  int
}

// Enabled reports whether a Redis address was configured
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LedgerConfig holds movement and identifier settings
type LedgerConfig struct {
	IbanCountry         string
	IbanBankCode        string
	IbanBranchCode      string
	RevocationWindow    time.Duration
	DirectDebitInterval time.Duration
	CardExpiryYears     int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

var (
	countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)
	fourDigits     = regexp.MustCompile(`^[0-9]{4}$`)
)

// Load loads configuration from an optional .env file and environment variables with sensible defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
		slog.Debug("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnv("DB_PORT", "5432"),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "ledger"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:      getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:      getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:   getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
			Migrate:           getEnvAsBool("DB_MIGRATE", true),
			ConnectAttempts:   getEnvAsInt("DB_CONNECT_ATTEMPTS", 5),
			ConnectRetryDelay: getEnvAsDuration("DB_CONNECT_RETRY_DELAY", "1s"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			LockExpiry: getEnvAsDuration("LOCK_EXPIRY", "10s"),
			LockTries:  getEnvAsInt("LOCK_TRIES", 32),
			RetryDelay: getEnvAsDuration("LOCK_RETRY_DELAY", "50ms"),
		},
		Ledger: LedgerConfig{
			IbanCountry:         getEnv("IBAN_COUNTRY", "ES"),
			IbanBankCode:        getEnv("IBAN_BANK_CODE", "0182"),
			IbanBranchCode:      getEnv("IBAN_BRANCH_CODE", "5141"),
			RevocationWindow:    getEnvAsDuration("REVOCATION_WINDOW", "0s"),
			DirectDebitInterval: getEnvAsDuration("DIRECT_DEBIT_INTERVAL", "1h"),
			CardExpiryYears:     getEnvAsInt("CARD_EXPIRY_YEARS", 5),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("database connect attempts must be at least 1, got %d", c.Database.ConnectAttempts)
	}

	if c.Redis.Enabled() {
		if c.Redis.LockExpiry <= 0 {
			return fmt.Errorf("lock expiry must be positive")
		}
		if c.Redis.LockTries < 1 {
			return fmt.Errorf("lock tries must be at least 1, got %d", c.Redis.LockTries)
		}
	}

	if !countryPattern.MatchString(c.Ledger.IbanCountry) {
		return fmt.Errorf("IBAN country must be two uppercase letters, got %q", c.Ledger.IbanCountry)
	}
	if !fourDigits.MatchString(c.Ledger.IbanBankCode) {
		return fmt.Errorf("IBAN bank code must be 4 digits, got %q", c.Ledger.IbanBankCode)
	}
	if !fourDigits.MatchString(c.Ledger.IbanBranchCode) {
		return fmt.Errorf("IBAN branch code must be 4 digits, got %q", c.Ledger.IbanBranchCode)
	}
	if c.Ledger.RevocationWindow < 0 {
		return fmt.Errorf("revocation window cannot be negative")
	}
	if c.Ledger.DirectDebitInterval <= 0 {
		return fmt.Errorf("direct debit interval must be positive")
	}
	if c.Ledger.CardExpiryYears < 1 {
		return fmt.Errorf("card expiry years must be at least 1, got %d", c.Ledger.CardExpiryYears)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logger.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to parsing the default if provided value is invalid
		duration, err = time.ParseDuration(defaultValue)
		if err != nil {
			return 0
		}
	}
	return duration
}
