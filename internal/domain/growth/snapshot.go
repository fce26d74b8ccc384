package growth

import "time"

// Snapshot is a member count observed at a point in time.
// Corresponds to the 'member_count_snapshots' table.
type Snapshot struct {
	ID          int64
	ChatID      int64
	MemberCount int
	TakenAt     time.Time
}
