package growth

import (
	"context"
	"time"
)

// SettingsRepository persists per-chat growth notification settings.
type SettingsRepository interface {
	Get(ctx context.Context, chatID int64) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
	ListEnabled(ctx context.Context) ([]*Settings, error)
}

// JoinRepository is the join-history provider: it records member joins and
// returns them as an ascending sequence of UTC timestamps per chat.
type JoinRepository interface {
	RecordJoin(ctx context.Context, chatID int64, joinedAt time.Time) error
	ListJoins(ctx context.Context, chatID int64) ([]time.Time, error)
}

// SnapshotRepository stores periodic member-count snapshots.
type SnapshotRepository interface {
	RecordSnapshot(ctx context.Context, s *Snapshot) error
	ListByChat(ctx context.Context, chatID int64, from, to time.Time) ([]*Snapshot, error)
}
