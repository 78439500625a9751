package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"clockedout/apperr"
	"clockedout/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration in order. It uses its own
// connection because closing the migrate instance closes the database handle.
func RunMigrations(path string, logger *logging.Logger) error {
	logger = logging.OrDiscard(logger, logging.ComponentStorage)

	migrateDB, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return apperr.Wrap(apperr.MigrationFailed, "open migration database", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return apperr.Wrap(apperr.MigrationFailed, "create sqlite driver", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return apperr.Wrap(apperr.MigrationFailed, "create iofs source", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return apperr.Wrap(apperr.MigrationFailed, "create migrate instance", err)
	}
	defer m.Close()

	before, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperr.Wrap(apperr.MigrationFailed, "apply migrations", err)
	}

	after, dirty, err := m.Version()
	if err != nil {
		return apperr.Wrap(apperr.MigrationFailed, "read schema version", err)
	}
	if dirty {
		return apperr.New(apperr.MigrationFailed, fmt.Sprintf("schema version %d is dirty", after))
	}
	if after != before {
		logger.Info("applied migrations", "from_version", before, "to_version", after)
	}
	return nil
}

// SchemaVersion reports the applied migration version, 0 when none.
func (s *Store) SchemaVersion() (uint, error) {
	var version uint
	err := s.db.QueryRow(`SELECT version FROM schema_migrations LIMIT 1;`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.QueryFailed, "read schema version", err)
	}
	return version, nil
}
