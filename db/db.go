package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// EnsureSchema creates the two tables the scoreboard needs. The whole
// tournament document lives in one jsonb column; the version column is the
// optimistic lock.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS tournaments (
		id         uuid PRIMARY KEY,
		slug       text NOT NULL UNIQUE,
		name       text NOT NULL,
		pin_hash   text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS tournament_states (
		tournament_id uuid PRIMARY KEY REFERENCES tournaments (id) ON DELETE CASCADE,
		version       bigint NOT NULL DEFAULT 1,
		state         jsonb NOT NULL,
		updated_at    timestamptz NOT NULL DEFAULT now()
	);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
