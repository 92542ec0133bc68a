package database

import (
	"fmt"
	"net/url"

	"budgetapp/internal/config"
)

// Config holds database configuration
type Config struct {
	Driver string // config.BackendSQLite or config.BackendPostgres

	// SQLite
	Path string

	// PostgreSQL
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig derives the database configuration from the application config.
func NewConfig(app *config.Config) (*Config, error) {
	switch app.StoreBackend {
	case config.BackendSQLite, config.BackendPostgres:
	default:
		return nil, fmt.Errorf("store backend %q does not use a database", app.StoreBackend)
	}
	return &Config{
		Driver:   app.StoreBackend,
		Path:     app.SQLitePath,
		Host:     app.DBHost,
		Port:     app.DBPort,
		User:     app.DBUser,
		Password: app.DBPassword,
		DBName:   app.DBName,
		SSLMode:  app.DBSSLMode,
	}, nil
}

// DSN returns the driver-specific connection string
func (c *Config) DSN() string {
	if c.Driver == config.BackendSQLite {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrateURL returns the golang-migrate database URL.
func (c *Config) MigrateURL() string {
	if c.Driver == config.BackendSQLite {
		return "sqlite3://" + c.Path
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
