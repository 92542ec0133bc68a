// Package app wires the store, sessions and services from configuration. The
// HTTP server and the CLI both start from an App.
package app

import (
	"fmt"

	"budgetapp/internal/config"
	"budgetapp/internal/database"
	"budgetapp/internal/logger"
	"budgetapp/internal/services"
	"budgetapp/internal/session"
	"budgetapp/internal/store"
)

// App holds the services shared by every presenter.
type App struct {
	Config   *config.Config
	Store    store.Store
	Sessions *session.Manager
	Auth     services.AuthServicer
	Ledger   services.LedgerServicer
	Theme    services.ThemeServicer
	Audit    services.AuditServicer

	db *database.Manager
}

// New opens the configured backend, applies migrations for SQL backends and
// builds the services on top of it.
func New(cfg *config.Config) (*App, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Get().Warn("Using the in-memory store; data is lost on exit")
		return NewWithStore(cfg, store.NewMemory(), services.NewNopAuditService()), nil
	}

	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	a := NewWithStore(cfg, store.NewSQL(db), services.NewAuditService(db))
	a.db = dbManager
	return a, nil
}

// NewWithStore builds the services on an existing store.
func NewWithStore(cfg *config.Config, st store.Store, audit services.AuditServicer) *App {
	sessions := session.NewManager(st)
	return &App{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Auth: services.NewAuthService(st, sessions, services.AuthConfig{
			PasswordStorage: cfg.PasswordStorage,
		}),
		Ledger: services.NewLedgerService(sessions),
		Theme:  services.NewThemeService(st),
		Audit:  audit,
	}
}

// Database returns the database manager, or nil for the memory backend.
func (a *App) Database() *database.Manager {
	return a.db
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
