// Package storage persists monthly and weekly summaries in SQLite. Weekly
// rows belong to a month and are removed with it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"clockedout/apperr"
	"clockedout/internal/logging"
	"clockedout/timesheet"
)

const driverName = "sqlite"

type Store struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *logging.Logger
}

// Open creates the database file if needed, applies migrations and returns
// a store holding a single serialized connection.
func Open(path string, logger *logging.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, apperr.New(apperr.ConnectionFailed, "database path is empty")
	}
	logger = logging.OrDiscard(logger, logging.ComponentStorage)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.Wrap(apperr.ConnectionFailed, "create db directory", err)
		}
	}

	if err := RunMigrations(path, logger); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, apperr.Wrap(apperr.ConnectionFailed, "open sqlite db", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.ConnectionFailed, "ping sqlite db", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.ConnectionFailed, "enable foreign keys", err)
	}

	logger.Debug("opened database", "path", path)
	return &Store{db: db, path: path, now: time.Now, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Monthly() *MonthlyRepository {
	return &MonthlyRepository{store: s}
}

func (s *Store) Weekly() *WeeklyRepository {
	return &WeeklyRepository{store: s}
}

// Backup writes a consistent copy of the database to dest, which must not exist.
func (s *Store) Backup(ctx context.Context, dest string) error {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return fmt.Errorf("backup path is required")
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %q already exists", dest)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?;`, dest); err != nil {
		return apperr.Wrap(apperr.QueryFailed, "backup database", err)
	}
	s.logger.Info("backed up database", "path", dest)
	return nil
}

func (s *Store) timestamp() string {
	return timesheet.Timestamp(s.now())
}

// withTx runs fn in one transaction, rolling back on any error.
func (s *Store) withTx(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.TransactionFailed, "begin "+what, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.TransactionFailed, "commit "+what, err)
	}
	return nil
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// storageError classifies a driver error, reporting constraint failures as
// ConstraintViolation and everything else as fallback.
func storageError(fallback apperr.Kind, detail string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return apperr.Wrap(apperr.ConstraintViolation, detail, err)
	}
	return apperr.Wrap(fallback, detail, err)
}
