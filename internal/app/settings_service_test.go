package app

import (
	"context"
	"testing"

	"community_growth_bot/internal/domain/growth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID = int64(1000)

func TestEnableRejectsNonAdmin(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, adminID)

	_, err := svc.Enable(context.Background(), adminID+1, 42, 0, 42, false)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)

	_, err = svc.Disable(context.Background(), adminID+1, 42)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)

	_, err = svc.Describe(context.Background(), adminID+1, 42)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
}

func TestEnableUsesDefaultIncrementForNewChat(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo, adminID)

	settings, err := svc.Enable(context.Background(), adminID, 42, 0, 42, false)

	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Equal(t, growth.DefaultIncrement, settings.Increment)
	assert.Equal(t, int64(42), settings.NotifyChatID)
}

func TestEnableValidatesIncrementRange(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, adminID)

	for _, increment := range []int{growth.MinIncrement - 1, growth.MaxIncrement + 1, -1} {
		_, err := svc.Enable(context.Background(), adminID, 42, increment, 42, false)
		assert.ErrorIs(t, err, ErrInvalidIncrement, "increment %d", increment)
	}
}

func TestEnableZeroIncrementKeepsStoredValue(t *testing.T) {
	repo := &fakeSettingsRepo{settings: &growth.Settings{ChatID: 42, Increment: 25}}
	svc := NewSettingsService(repo, adminID)

	settings, err := svc.Enable(context.Background(), adminID, 42, 0, 42, true)

	require.NoError(t, err)
	assert.Equal(t, 25, settings.Increment)
	assert.True(t, settings.NotifyOnLeave)
}

func TestDisableUnconfiguredChatIsNoOp(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, adminID)

	settings, err := svc.Disable(context.Background(), adminID, 42)

	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestDisablePersistsFlag(t *testing.T) {
	repo := &fakeSettingsRepo{settings: &growth.Settings{ChatID: 42, Enabled: true, Increment: 100}}
	svc := NewSettingsService(repo, adminID)

	settings, err := svc.Disable(context.Background(), adminID, 42)

	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.False(t, settings.Enabled)
	assert.False(t, repo.settings.Enabled)
}
