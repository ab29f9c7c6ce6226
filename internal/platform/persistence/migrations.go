package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirtySchema means a previous migration failed halfway and needs manual repair
var ErrDirtySchema = errors.New("database schema is dirty")

// migrationSourceURL accepts a plain directory or a file:// URL
func migrationSourceURL(dir string) string {
	if strings.HasPrefix(dir, "file://") {
		return dir
	}
	return "file://" + dir
}

// MigrateUp applies every pending migration in dir to the database at databaseURL and
// returns the resulting schema version. A schema left dirty by an earlier failed run is
// reported as ErrDirtySchema instead of being migrated further.
func MigrateUp(logger *slog.Logger, databaseURL, dir string) (uint, error) {
	if dir == "" {
		return 0, errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return 0, errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(migrationSourceURL(dir), databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to open migrations: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	if _, dirty, err := m.Version(); err == nil && dirty {
		return 0, ErrDirtySchema
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("Ledger schema is up to date", "version", version, "source", dir)
	return version, nil
}
