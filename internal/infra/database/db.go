package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// Tables are bootstrapped on startup so a fresh database works without a
// separate migration step.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS growth_settings (
    chat_id BIGINT PRIMARY KEY,
    is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    member_increment INTEGER NOT NULL DEFAULT 100,
    notify_chat_id BIGINT NOT NULL DEFAULT 0,
    notify_on_leave BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS member_joins (
    id BIGSERIAL PRIMARY KEY,
    chat_id BIGINT NOT NULL,
    joined_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS member_joins_chat_joined_idx ON member_joins (chat_id, joined_at);

CREATE TABLE IF NOT EXISTS member_count_snapshots (
    id BIGSERIAL PRIMARY KEY,
    chat_id BIGINT NOT NULL,
    member_count INTEGER NOT NULL,
    taken_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS member_count_snapshots_chat_taken_idx ON member_count_snapshots (chat_id, taken_at);
`

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the application tables if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}
	return nil
}
