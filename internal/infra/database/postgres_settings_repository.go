package database

import (
	"context"
	"database/sql"
	"fmt"

	"community_growth_bot/internal/domain/growth"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// ErrSettingsNotFound is returned when a chat was never configured.
var ErrSettingsNotFound = fmt.Errorf("growth settings not found")

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, chatID int64) (*growth.Settings, error) {
	query := `SELECT chat_id, is_enabled, member_increment, notify_chat_id, notify_on_leave, created_at, updated_at
               FROM growth_settings WHERE chat_id = $1`
	s := &growth.Settings{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&s.ChatID, &s.Enabled, &s.Increment, &s.NotifyChatID, &s.NotifyOnLeave, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting growth settings: %w", err)
	}
	return s, nil
}

func (r *PostgresSettingsRepository) Upsert(ctx context.Context, s *growth.Settings) error {
	query := `INSERT INTO growth_settings (chat_id, is_enabled, member_increment, notify_chat_id, notify_on_leave)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (chat_id) DO UPDATE SET
                   is_enabled = EXCLUDED.is_enabled,
                   member_increment = EXCLUDED.member_increment,
                   notify_chat_id = EXCLUDED.notify_chat_id,
                   notify_on_leave = EXCLUDED.notify_on_leave,
                   updated_at = NOW()
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ChatID, s.Enabled, s.Increment, s.NotifyChatID, s.NotifyOnLeave,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting growth settings: %w", err)
	}
	return nil
}

func (r *PostgresSettingsRepository) ListEnabled(ctx context.Context) ([]*growth.Settings, error) {
	query := `SELECT chat_id, is_enabled, member_increment, notify_chat_id, notify_on_leave, created_at, updated_at
               FROM growth_settings WHERE is_enabled = TRUE ORDER BY chat_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing enabled growth settings: %w", err)
	}
	defer rows.Close()

	settings := make([]*growth.Settings, 0)
	for rows.Next() {
		s := &growth.Settings{}
		if err := rows.Scan(&s.ChatID, &s.Enabled, &s.Increment, &s.NotifyChatID, &s.NotifyOnLeave, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning growth settings: %w", err)
		}
		settings = append(settings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating growth settings: %w", err)
	}
	return settings, nil
}
