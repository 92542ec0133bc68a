package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"

	"budgetapp/internal/config"
	"budgetapp/internal/logger"
	"budgetapp/internal/models"
)

func init() {
	logger.Init("test")
}

func newSQLiteManager(t *testing.T) *Manager {
	t.Helper()
	cfg, err := NewConfig(&config.Config{
		StoreBackend: config.BackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "budget.db"),
	})
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestNewConfig(t *testing.T) {
	t.Run("memory_backend_has_no_database", func(t *testing.T) {
		if _, err := NewConfig(&config.Config{StoreBackend: config.BackendMemory}); err == nil {
			t.Error("expected error for memory backend")
		}
	})

	t.Run("postgres_urls", func(t *testing.T) {
		cfg, err := NewConfig(&config.Config{
			StoreBackend: config.BackendPostgres,
			DBHost:       "db", DBPort: "5432", DBUser: "budget", DBPassword: "p@ss", DBName: "budget", DBSSLMode: "disable",
		})
		if err != nil {
			t.Fatal(err)
		}
		if got := cfg.DSN(); got != "host=db port=5432 user=budget password=p@ss dbname=budget sslmode=disable" {
			t.Errorf("unexpected DSN %q", got)
		}
		if got := cfg.MigrateURL(); got != "postgres://budget:p%40ss@db:5432/budget?sslmode=disable" {
			t.Errorf("unexpected migrate URL %q", got)
		}
	})

	t.Run("sqlite_urls", func(t *testing.T) {
		cfg, _ := NewConfig(&config.Config{StoreBackend: config.BackendSQLite, SQLitePath: "data/budget.db"})
		if cfg.DSN() != "data/budget.db" || cfg.MigrateURL() != "sqlite3://data/budget.db" {
			t.Errorf("unexpected sqlite config %q %q", cfg.DSN(), cfg.MigrateURL())
		}
	})
}

func TestRunMigrations(t *testing.T) {
	m := newSQLiteManager(t)

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("first migration run failed: %v", err)
	}
	if err := m.RunMigrations(); err != nil {
		t.Fatalf("second migration run must be a no-op: %v", err)
	}

	for _, table := range []string{"kv_entries", "audit_logs"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}

	entry := models.KVEntry{Key: "budgetTheme", Value: "ocean"}
	if err := m.DB().Create(&entry).Error; err != nil {
		t.Fatalf("failed to insert into migrated table: %v", err)
	}
	audit := models.AuditLog{Username: "alice", Action: "LOGIN", ResourceType: "user"}
	if err := m.DB().Create(&audit).Error; err != nil {
		t.Fatalf("failed to insert audit log: %v", err)
	}
}

func TestMigratorVersionAndDown(t *testing.T) {
	m := newSQLiteManager(t)
	if err := m.RunMigrations(); err != nil {
		t.Fatal(err)
	}

	mig, err := m.Migrator()
	if err != nil {
		t.Fatal(err)
	}
	defer CloseMigrator(mig)

	version, dirty, err := mig.Version()
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 || dirty {
		t.Errorf("expected clean version 2, got %d dirty=%v", version, dirty)
	}

	if err := mig.Steps(-2); err != nil {
		t.Fatalf("down failed: %v", err)
	}
	if _, _, err := mig.Version(); !errors.Is(err, migrate.ErrNilVersion) {
		t.Errorf("expected no version after full rollback, got %v", err)
	}
}
