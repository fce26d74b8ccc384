package growth

import (
	"time"
)

// Increment bounds for milestone announcements.
const (
	DefaultIncrement = 100
	MinIncrement     = 5
	MaxIncrement     = 1000
)

// Settings holds the per-chat growth notification configuration.
// Corresponds to the 'growth_settings' table.
type Settings struct {
	ChatID        int64
	Enabled       bool
	Increment     int   // members between milestone announcements
	NotifyChatID  int64 // chat that receives announcements
	NotifyOnLeave bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
