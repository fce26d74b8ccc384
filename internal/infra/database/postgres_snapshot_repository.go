package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"community_growth_bot/internal/domain/growth"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresSnapshotRepository stores member-count snapshots taken by the
// scheduler.
type PostgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) RecordSnapshot(ctx context.Context, s *growth.Snapshot) error {
	query := `INSERT INTO member_count_snapshots (chat_id, member_count, taken_at)
               VALUES ($1, $2, $3)
               RETURNING id`
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query, s.ChatID, s.MemberCount, s.TakenAt.UTC()).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error recording member count snapshot: %w", err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) ListByChat(ctx context.Context, chatID int64, from, to time.Time) ([]*growth.Snapshot, error) {
	query := `SELECT id, chat_id, member_count, taken_at
               FROM member_count_snapshots
               WHERE chat_id = $1 AND taken_at >= $2 AND taken_at <= $3
               ORDER BY taken_at ASC`

	rows, err := r.db.QueryContext(ctx, query, chatID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("error listing member count snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*growth.Snapshot, 0)
	for rows.Next() {
		s := &growth.Snapshot{}
		if err := rows.Scan(&s.ID, &s.ChatID, &s.MemberCount, &s.TakenAt); err != nil {
			return nil, fmt.Errorf("error scanning member count snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member count snapshots: %w", err)
	}
	return snapshots, nil
}
