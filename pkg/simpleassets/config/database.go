package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tendant/simple-assets/migrations"
	"github.com/tendant/simple-assets/pkg/simpleassets"
	"github.com/tendant/simple-assets/pkg/simpleassets/repo/memory"
	repopg "github.com/tendant/simple-assets/pkg/simpleassets/repo/postgres"
	reposqlite "github.com/tendant/simple-assets/pkg/simpleassets/repo/sqlite"
)

// ErrNoSQLDatabase is returned by migration helpers on the memory backend.
var ErrNoSQLDatabase = errors.New("migrations require a sqlite or postgres database")

// Database is an opened repository together with the handles needed to
// migrate, ping and close it.
type Database struct {
	Type       string
	Repository simpleassets.Repository

	sqlDB *sql.DB
	ping  func(ctx context.Context) error
	close func()
}

// OpenDatabase connects to the configured database backend.
func (c *ServerConfig) OpenDatabase(ctx context.Context) (*Database, error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return &Database{Type: DatabaseMemory, Repository: memory.New()}, nil

	case DatabaseSQLite:
		db, err := reposqlite.Open(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return &Database{
			Type:       DatabaseSQLite,
			Repository: reposqlite.New(db),
			sqlDB:      db.DB,
			ping:       db.PingContext,
			close:      func() { db.Close() },
		}, nil

	case DatabasePostgres:
		pool, err := newPostgresPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		return &Database{
			Type:       DatabasePostgres,
			Repository: repopg.NewWithPool(pool),
			sqlDB:      sqlDB,
			ping:       pool.Ping,
			close: func() {
				sqlDB.Close()
				pool.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func newPostgresPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// Ping checks connectivity. The memory backend is always reachable.
func (d *Database) Ping(ctx context.Context) error {
	if d.ping == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// MigrateUp applies pending schema migrations.
func (d *Database) MigrateUp() error {
	if d.sqlDB == nil {
		return ErrNoSQLDatabase
	}
	return migrations.Up(d.sqlDB, d.Type)
}

// MigrateDown rolls back the most recent migration.
func (d *Database) MigrateDown() error {
	if d.sqlDB == nil {
		return ErrNoSQLDatabase
	}
	return migrations.Down(d.sqlDB, d.Type)
}

// SchemaVersion reports the applied migration version.
func (d *Database) SchemaVersion() (int64, error) {
	if d.sqlDB == nil {
		return 0, ErrNoSQLDatabase
	}
	return migrations.Version(d.sqlDB, d.Type)
}

// Close releases the underlying connections.
func (d *Database) Close() {
	if d.close != nil {
		d.close()
	}
}
