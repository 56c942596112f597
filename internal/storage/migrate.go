package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// The transaction-store schema ships inside the binary so an ingest can
// bootstrap a fresh database file with no external migration step.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the store at dbPath up to the latest schema.
// An already-current store is not an error.
func RunMigrations(dbPath string) error {
	// Migrations run on their own connection; the repository's main
	// connection is opened separately.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open store for migration: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("embedded migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
