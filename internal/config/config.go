package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port string

	// Storage
	StoreBackend string
	SQLitePath   string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Metrics
	MetricsAPIKey string

	// Ledger
	PasswordStorage string
	CurrencySymbol  string
	Timezone        string
	Location        *time.Location
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to read .env file: %v\n", err)
	}

	config := FromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv() *Config {
	config := &Config{
		Env: getEnv("ENV", "development"),

		// Server
		Port: getEnv("PORT", "8080"),

		// Storage
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		SQLitePath:   getEnv("SQLITE_PATH", "budget.db"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budget"),
		DBPassword: getEnv("DB_PASSWORD", "budget"),
		DBName:     getEnv("DB_NAME", "budget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),

		// Metrics
		MetricsAPIKey: os.Getenv("METRICS_API_KEY"),

		// Ledger
		PasswordStorage: strings.ToLower(getEnv("PASSWORD_STORAGE", "bcrypt")),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "₹"),
		Timezone:        getEnv("TIMEZONE", "Local"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	return config
}

// Validate checks every setting and reports all problems at once. It also
// resolves Timezone into Location.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendMemory, BackendSQLite, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be memory, sqlite or postgres, got %q", c.StoreBackend))
	}
	if c.StoreBackend == BackendSQLite && c.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
	}

	switch c.PasswordStorage {
	case "bcrypt", "plaintext":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_STORAGE must be bcrypt or plaintext, got %q", c.PasswordStorage))
	}

	if c.JWTExpirationDur <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err))
	} else {
		c.Location = loc
	}

	return errors.Join(errs...)
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Tests use it to inject values.
func Set(c *Config) {
	appConfig = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
