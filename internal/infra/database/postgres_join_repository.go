package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresJoinRepository is the join-history provider backed by the
// member_joins table.
type PostgresJoinRepository struct {
	db *sql.DB
}

func NewPostgresJoinRepository(db *sql.DB) *PostgresJoinRepository {
	return &PostgresJoinRepository{db: db}
}

func (r *PostgresJoinRepository) RecordJoin(ctx context.Context, chatID int64, joinedAt time.Time) error {
	query := `INSERT INTO member_joins (chat_id, joined_at) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, chatID, joinedAt.UTC()); err != nil {
		return fmt.Errorf("error recording member join: %w", err)
	}
	return nil
}

// ListJoins returns every recorded join for the chat in ascending order.
func (r *PostgresJoinRepository) ListJoins(ctx context.Context, chatID int64) ([]time.Time, error) {
	query := `SELECT joined_at FROM member_joins WHERE chat_id = $1 ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("error listing member joins: %w", err)
	}
	defer rows.Close()

	joins := make([]time.Time, 0)
	for rows.Next() {
		var joinedAt time.Time
		if err := rows.Scan(&joinedAt); err != nil {
			return nil, fmt.Errorf("error scanning member join: %w", err)
		}
		joins = append(joins, joinedAt.UTC())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member joins: %w", err)
	}
	return joins, nil
}
