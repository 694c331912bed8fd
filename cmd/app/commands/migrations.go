package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/secretgate/internal/database"
)

// migrationSources maps a database driver to its migration directory.
var migrationSources = map[string]string{
	database.DriverPostgres: "file://migrations/postgresql",
	database.DriverMySQL:    "file://migrations/mysql",
}

// RunMigrations brings the audit_logs schema up to date for the configured driver.
// Running it against an up-to-date schema is a no-op.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string) error {
	source, ok := migrationSources[dbDriver]
	if !ok {
		return fmt.Errorf("no migrations for database driver %q", dbDriver)
	}

	logger.Info("running database migrations", slog.String("driver", dbDriver))

	m, err := migrate.New(source, dbConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}
