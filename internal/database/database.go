package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

type Database struct {
	db            *sql.DB
	schemaVersion uint
	log           *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

var errDirtySchema = errors.New("schema is dirty")

// New opens the sqlite file at dbPath and migrates it to the latest
// embedded schema before returning.
func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	version, err := migrateUp(dbFile)
	if err != nil {
		return nil, errors.Join(err, dbFile.Close())
	}

	log.InfoContext(ctx, "DB schema is up to date",
		"dbPath", dbPath,
		"schemaVersion", version)

	return &Database{db: dbFile, schemaVersion: version, log: log}, nil
}

// migrateUp applies pending migrations and returns the resulting schema
// version. A schema left dirty by an interrupted migration is an error.
func migrateUp(dbFile *sql.DB) (uint, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("read embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return 0, errors.Join(fmt.Errorf("wrap DB for migrate: %w", err), src.Close())
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return 0, errors.Join(fmt.Errorf("create migrator: %w", err), src.Close())
	}

	err = m.Up()

	var dirtyErr migrate.ErrDirty
	switch {
	case errors.As(err, &dirtyErr):
		return 0, fmt.Errorf("version %d: %w", dirtyErr.Version, errDirtySchema)
	case err != nil && !errors.Is(err, migrate.ErrNoChange):
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	return version, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}
