package growth

import (
	"sync"
	"time"
)

// Cooldown debounces join events per chat. The platform can deliver a single
// underlying join more than once in rapid succession; every event inside the
// window after an accepted one is treated as the same logical event.
//
// The guard is constructed once and injected, so each test gets a fresh one.
type Cooldown struct {
	window time.Duration

	mu   sync.Mutex
	last map[int64]time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[int64]time.Time),
	}
}

// Accept reports whether an event at now should be processed for the chat,
// recording it if so. Rejected events do not refresh the window. The lock
// covers only this check-and-record; distinct chats are otherwise processed
// fully in parallel.
func (c *Cooldown) Accept(chatID int64, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.last[chatID]; ok && now.Sub(prev) < c.window {
		return false
	}
	c.last[chatID] = now
	return true
}
