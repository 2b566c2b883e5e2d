package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema/participation_requests.sql
var requestSchema string

//go:embed schema/directory.sql
var directorySchema string

// Open connects to Postgres and waits for it to answer, retrying while the
// database container is still starting.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	const attempts = 5
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		logger.Warn("db ping failed", "attempt", attempt, "of", attempts, "err", err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// Migrate creates the request tables. withDirectory also creates the
// events and users tables read by the Postgres directory; in a shared
// database those belong to the event and user services.
func Migrate(ctx context.Context, db *sql.DB, withDirectory bool) error {
	if _, err := db.ExecContext(ctx, requestSchema); err != nil {
		return fmt.Errorf("apply request schema: %w", err)
	}
	if withDirectory {
		if _, err := db.ExecContext(ctx, directorySchema); err != nil {
			return fmt.Errorf("apply directory schema: %w", err)
		}
	}
	return nil
}
