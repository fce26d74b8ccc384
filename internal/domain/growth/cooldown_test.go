package growth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownAcceptsFirstEvent(t *testing.T) {
	cooldown := NewCooldown(3 * time.Second)
	now := time.Now()

	assert.True(t, cooldown.Accept(1, now))
}

func TestCooldownRejectsEventInsideWindow(t *testing.T) {
	cooldown := NewCooldown(3 * time.Second)
	now := time.Now()

	assert.True(t, cooldown.Accept(1, now))
	assert.False(t, cooldown.Accept(1, now.Add(time.Second)))
}

func TestCooldownDistinctChatsDoNotInterfere(t *testing.T) {
	cooldown := NewCooldown(3 * time.Second)
	now := time.Now()

	assert.True(t, cooldown.Accept(1, now))
	assert.True(t, cooldown.Accept(2, now))
}

func TestCooldownAcceptsAfterWindowElapsed(t *testing.T) {
	cooldown := NewCooldown(3 * time.Second)
	now := time.Now()

	assert.True(t, cooldown.Accept(1, now))
	assert.True(t, cooldown.Accept(1, now.Add(3*time.Second)))
}

func TestCooldownRejectionDoesNotRefreshWindow(t *testing.T) {
	cooldown := NewCooldown(3 * time.Second)
	now := time.Now()

	assert.True(t, cooldown.Accept(1, now))
	assert.False(t, cooldown.Accept(1, now.Add(2*time.Second)))
	// The rejected event at +2s must not have pushed the window forward.
	assert.True(t, cooldown.Accept(1, now.Add(3*time.Second)))
}
