package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"community_growth_bot/internal/domain/growth"
	domainTelegram "community_growth_bot/internal/domain/telegram"
	idb "community_growth_bot/internal/infra/database"
	"community_growth_bot/internal/predict"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	milestoneMessage = "🎉🎉🎉 お祝い 🎉🎉🎉\n%d人達成！\nメンバーが%d人になりました！皆さんありがとうございます！"
	progressMessage  = "ようこそ！\n現在のメンバー数: %d人\nあと %d 人で %d人達成です！"
	refinementLine   = "\n%d人達成の予測日: %s（あと%d日）"
	leaveMessage     = "メンバーが退室しました。\n現在のメンバー数: %d人"
)

// MilestoneRenderer renders the chart sent synchronously with a milestone
// announcement.
type MilestoneRenderer interface {
	RenderMilestone(history []time.Time) ([]byte, error)
}

// MilestoneService reacts to membership events: it debounces duplicate join
// deliveries, announces milestones and progress, and schedules the
// asynchronous forecast refinement of each announcement.
type MilestoneService struct {
	settingsRepo growth.SettingsRepository
	joinRepo     growth.JoinRepository
	client       domainTelegram.Client
	chain        *predict.Chain
	renderer     MilestoneRenderer
	cooldown     *growth.Cooldown
	horizonDays  int
	logger       *logrus.Entry
}

func NewMilestoneService(
	settingsRepo growth.SettingsRepository,
	joinRepo growth.JoinRepository,
	client domainTelegram.Client,
	chain *predict.Chain,
	renderer MilestoneRenderer,
	cooldown *growth.Cooldown,
	horizonDays int,
	logger *logrus.Entry,
) *MilestoneService {
	return &MilestoneService{
		settingsRepo: settingsRepo,
		joinRepo:     joinRepo,
		client:       client,
		chain:        chain,
		renderer:     renderer,
		cooldown:     cooldown,
		horizonDays:  horizonDays,
		logger:       logger,
	}
}

// HandleMemberJoin processes a single join event. The announcement is sent
// synchronously; the forecast refinement runs on a detached goroutine whose
// outcome never reaches the caller.
func (s *MilestoneService) HandleMemberJoin(ctx context.Context, chatID int64) error {
	logCtx := s.logger.WithField("chat_id", chatID)

	if !s.cooldown.Accept(chatID, time.Now()) {
		logCtx.Debug("Join event inside cooldown window, dropped")
		return nil
	}

	// One stored join per accepted event: deliveries collapsed by the
	// cooldown never reach the history either.
	if err := s.joinRepo.RecordJoin(ctx, chatID, time.Now().UTC()); err != nil {
		logCtx.WithError(err).Warn("Could not record member join")
	}

	settings, err := s.settingsRepo.Get(ctx, chatID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			return nil // never configured, nothing to announce
		}
		return fmt.Errorf("loading growth settings: %w", err)
	}
	if !settings.Enabled {
		return nil
	}

	memberCount, err := s.client.MemberCount(chatID)
	if err != nil {
		return fmt.Errorf("fetching member count: %w", err)
	}

	eval := growth.EvaluateMilestone(memberCount, settings.Increment)
	logCtx = logCtx.WithFields(logrus.Fields{
		"member_count": eval.MemberCount,
		"next_target":  eval.NextTarget,
		"is_milestone": eval.IsMilestone,
	})

	var sent *telebot.Message
	if eval.IsMilestone {
		sent, err = s.announceMilestone(ctx, settings, eval)
	} else {
		sent, err = s.announceProgress(settings, eval)
	}
	if err != nil {
		logCtx.WithError(err).Error("Could not send announcement")
		return err
	}
	logCtx.Info("Announcement sent")

	go s.refineAnnouncement(chatID, eval, sent)
	return nil
}

// HandleMemberLeave sends the current member count when leave notices are
// enabled for the chat.
func (s *MilestoneService) HandleMemberLeave(ctx context.Context, chatID int64) error {
	settings, err := s.settingsRepo.Get(ctx, chatID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			return nil
		}
		return fmt.Errorf("loading growth settings: %w", err)
	}
	if !settings.Enabled || !settings.NotifyOnLeave {
		return nil
	}

	memberCount, err := s.client.MemberCount(chatID)
	if err != nil {
		return fmt.Errorf("fetching member count: %w", err)
	}

	_, err = s.client.SendMessage(settings.NotifyChatID, fmt.Sprintf(leaveMessage, memberCount), nil)
	return err
}

func (s *MilestoneService) announceMilestone(ctx context.Context, settings *growth.Settings, eval growth.MilestoneEvaluation) (*telebot.Message, error) {
	text := fmt.Sprintf(milestoneMessage, eval.MemberCount, eval.MemberCount)

	history, err := s.listHistory(ctx, settings.ChatID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		// Nothing to chart yet; the celebration still goes out.
		return s.client.SendMessage(settings.NotifyChatID, text, nil)
	}

	png, err := s.renderer.RenderMilestone(history)
	if err != nil {
		// Rendering failures indicate a defect and are fatal to the
		// event, unlike forecast unavailability.
		return nil, fmt.Errorf("rendering milestone chart: %w", err)
	}
	return s.client.SendPhoto(settings.NotifyChatID, png, text)
}

func (s *MilestoneService) announceProgress(settings *growth.Settings, eval growth.MilestoneEvaluation) (*telebot.Message, error) {
	remaining := eval.NextTarget - eval.MemberCount
	text := fmt.Sprintf(progressMessage, eval.MemberCount, remaining, eval.NextTarget)
	return s.client.SendMessage(settings.NotifyChatID, text, nil)
}

// refineAnnouncement appends the predicted arrival date of the next
// milestone to an already-sent announcement. It runs detached from the
// triggering event: every failure is logged and swallowed, the announcement
// simply keeps its original text.
func (s *MilestoneService) refineAnnouncement(chatID int64, eval growth.MilestoneEvaluation, sent *telebot.Message) {
	logCtx := s.logger.WithFields(logrus.Fields{
		"chat_id":     chatID,
		"next_target": eval.NextTarget,
	})
	ctx := context.Background()

	history, err := s.listHistory(ctx, chatID)
	if err != nil {
		logCtx.WithError(err).Warn("Refinement aborted: could not list join history")
		return
	}
	if len(history) < 2 {
		return
	}

	res, err := s.chain.Forecast(ctx, history, predict.Request{Target: eval.NextTarget, Horizon: s.horizonDays})
	if err != nil {
		logCtx.WithError(err).Warn("Refinement forecast failed")
		return
	}
	if res == nil {
		logCtx.Debug("Refinement produced no forecast")
		return
	}

	daysLeft := predict.DayOrdinal(res.PredictedDate) - predict.DayOrdinal(time.Now())
	line := fmt.Sprintf(refinementLine, eval.NextTarget, res.PredictedDate.Format("2006-01-02"), daysLeft)

	if sent.Photo != nil {
		err = s.client.EditCaption(sent, sent.Caption+line)
	} else {
		err = s.client.EditText(sent, sent.Text+line)
	}
	if err != nil {
		logCtx.WithError(err).Warn("Could not edit announcement with forecast")
		return
	}
	logCtx.WithField("predicted_date", res.PredictedDate.Format("2006-01-02")).Info("Announcement refined with forecast")
}

func (s *MilestoneService) listHistory(ctx context.Context, chatID int64) ([]time.Time, error) {
	history, err := s.joinRepo.ListJoins(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing join history: %w", err)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Before(history[j]) })
	return history, nil
}
