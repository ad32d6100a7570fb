// Package migrations embeds the asset schema for each supported SQL dialect
// and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

// Supported database types.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

var dialectMap = map[string]string{
	SQLite:   "sqlite3",
	Postgres: "postgres",
}

// goose keeps dialect and base FS in package globals.
var gooseMu sync.Mutex

func setupGoose(databaseType string) error {
	dialect, ok := dialectMap[databaseType]
	if !ok {
		return fmt.Errorf("unsupported database type for migrations: %s", databaseType)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	dir, err := fs.Sub(migrationsFS, databaseType)
	if err != nil {
		return fmt.Errorf("failed to get migrations directory: %w", err)
	}
	goose.SetBaseFS(dir)
	return nil
}

// Up applies every pending migration.
func Up(db *sql.DB, databaseType string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(databaseType); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed successfully", "database_type", databaseType)
	return nil
}

// Down rolls back the most recent migration.
func Down(db *sql.DB, databaseType string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(databaseType); err != nil {
		return err
	}
	if err := goose.Down(db, "."); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back one migration", "database_type", databaseType)
	return nil
}

// Version returns the current schema version.
func Version(db *sql.DB, databaseType string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(databaseType); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
