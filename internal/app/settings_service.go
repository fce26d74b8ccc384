package app

import (
	"context"
	"errors"
	"fmt"

	"community_growth_bot/internal/domain/growth"
	idb "community_growth_bot/internal/infra/database"
)

var (
	ErrAdminNotAuthorized = errors.New("user is not authorized to perform this admin action")
	ErrInvalidIncrement   = fmt.Errorf("increment must be between %d and %d", growth.MinIncrement, growth.MaxIncrement)
)

// SettingsService manages per-chat growth notification settings. Only the
// configured admin may change them.
type SettingsService struct {
	settingsRepo    growth.SettingsRepository
	adminTelegramID int64
}

func NewSettingsService(settingsRepo growth.SettingsRepository, adminTelegramID int64) *SettingsService {
	return &SettingsService{
		settingsRepo:    settingsRepo,
		adminTelegramID: adminTelegramID,
	}
}

// Enable turns milestone announcements on for a chat. A zero increment
// keeps the stored (or default) one.
func (s *SettingsService) Enable(ctx context.Context, requesterID, chatID int64, increment int, notifyChatID int64, notifyOnLeave bool) (*growth.Settings, error) {
	if requesterID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if increment != 0 && (increment < growth.MinIncrement || increment > growth.MaxIncrement) {
		return nil, ErrInvalidIncrement
	}

	settings, err := s.settingsRepo.Get(ctx, chatID)
	if err != nil {
		if err != idb.ErrSettingsNotFound {
			return nil, fmt.Errorf("loading growth settings: %w", err)
		}
		settings = &growth.Settings{
			ChatID:    chatID,
			Increment: growth.DefaultIncrement,
		}
	}

	settings.Enabled = true
	settings.NotifyChatID = notifyChatID
	settings.NotifyOnLeave = notifyOnLeave
	if increment != 0 {
		settings.Increment = increment
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("saving growth settings: %w", err)
	}
	return settings, nil
}

// Disable turns milestone announcements off for a chat. Disabling a chat
// that was never configured is a no-op.
func (s *SettingsService) Disable(ctx context.Context, requesterID, chatID int64) (*growth.Settings, error) {
	if requesterID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	settings, err := s.settingsRepo.Get(ctx, chatID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("loading growth settings: %w", err)
	}

	settings.Enabled = false
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("saving growth settings: %w", err)
	}
	return settings, nil
}

// Describe returns the current settings for a chat.
func (s *SettingsService) Describe(ctx context.Context, requesterID, chatID int64) (*growth.Settings, error) {
	if requesterID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.settingsRepo.Get(ctx, chatID)
}
