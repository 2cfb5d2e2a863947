// Package postgres owns the PostgreSQL connection pool, the schema
// migrations and the translation of driver errors into the shared
// storage sentinels.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gadaihub/backoffice/pkg/config"
	"github.com/gadaihub/backoffice/pkg/storage"
)

// Open connects to PostgreSQL and configures the connection pool.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// Postgres error codes that map onto the storage sentinels.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// TranslateError maps driver-level errors to storage sentinels. Errors
// with no storage meaning pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case uniqueViolation, foreignKeyViolation:
			return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Detail)
		}
	}

	return err
}
