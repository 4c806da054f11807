package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clouddash/internal/client/migrations"
	"github.com/dmitrijs2005/clouddash/internal/client/repositories/localstore"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories groups the local stores opened by InitDatabase.
type Repositories struct {
	DB    *sql.DB
	Local localstore.Repository
}

// Close releases the underlying database.
func (r *Repositories) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the SQLite file at dsn, migrates
// it and returns the repositories built on top of it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single writer keeps SQLite free of "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		DB:    db,
		Local: localstore.NewSQLiteRepository(db),
	}, nil
}
