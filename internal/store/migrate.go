package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrateDB runs pending migrations holding a file lock next to the database.
// In-memory databases skip the lock.
func MigrateDB(db *sql.DB, dbPath string) error {
	if !isMemoryDSN(dbPath) {
		lockF, err := lockFile(dbPath)
		if err != nil {
			return fmt.Errorf("migration lock: %w", err)
		}
		defer unlockFile(lockF)
	}
	return RunMigrations(db)
}

// SchemaVersion returns the applied goose version (0 for a fresh database).
func SchemaVersion(db *sql.DB) (int64, error) {
	if err := configureGoose(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, nil //nolint:nilerr // no goose_db_version table yet
	}
	return v, nil
}

// RunMigrations applies every embedded migration.
func RunMigrations(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func configureGoose() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetVerbose(false)
	goose.SetLogger(goose.NopLogger())
	// goose's dialect name is "sqlite3" whatever the driver is registered as.
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}
