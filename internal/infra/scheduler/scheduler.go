package scheduler

import (
	"context"
	"time"

	"community_growth_bot/internal/domain/growth"
	domainTelegram "community_growth_bot/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SnapshotScheduler periodically records the member count of every enabled
// chat so historical charts survive membership churn.
type SnapshotScheduler struct {
	cronEngine   *cron.Cron
	settingsRepo growth.SettingsRepository
	snapshotRepo growth.SnapshotRepository
	client       domainTelegram.Client
	logger       *logrus.Entry
	cronSpec     string
}

func NewSnapshotScheduler(
	settingsRepo growth.SettingsRepository,
	snapshotRepo growth.SnapshotRepository,
	client domainTelegram.Client,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 0 * * *" (midnight daily)
) *SnapshotScheduler {
	return &SnapshotScheduler{
		cronEngine:   cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		settingsRepo: settingsRepo,
		snapshotRepo: snapshotRepo,
		client:       client,
		logger:       logger,
		cronSpec:     cronSpec,
	}
}

func (s *SnapshotScheduler) Start() {
	s.logger.Info("Starting snapshot scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for member count snapshots.")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		s.takeSnapshots(ctx)
	})
	if err != nil {
		s.logger.Fatalf("Could not add snapshot cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Snapshot scheduler started.")
}

func (s *SnapshotScheduler) takeSnapshots(ctx context.Context) {
	enabled, err := s.settingsRepo.ListEnabled(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Could not list enabled chats for snapshots")
		return
	}

	for _, settings := range enabled {
		logCtx := s.logger.WithField("chat_id", settings.ChatID)

		count, err := s.client.MemberCount(settings.ChatID)
		if err != nil {
			logCtx.WithError(err).Warn("Could not fetch member count for snapshot")
			continue
		}

		snapshot := &growth.Snapshot{
			ChatID:      settings.ChatID,
			MemberCount: count,
			TakenAt:     time.Now().UTC(),
		}
		if err := s.snapshotRepo.RecordSnapshot(ctx, snapshot); err != nil {
			logCtx.WithError(err).Error("Could not record member count snapshot")
			continue
		}
		logCtx.WithField("member_count", count).Debug("Member count snapshot recorded")
	}
}

func (s *SnapshotScheduler) Stop() {
	s.logger.Info("Stopping snapshot scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Snapshot scheduler gracefully stopped.")
}
