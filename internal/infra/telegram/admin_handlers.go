package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"community_growth_bot/internal/app"
	idb "community_growth_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers the growth settings commands. They are
// restricted to the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, settingsService *app.SettingsService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/growth_on", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/growth_on",
			"sender_id": c.Sender().ID,
			"chat_id":   c.Chat().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("コマンドを使用するには管理者権限が必要です。")
		}

		args := c.Args()
		// Expected format: /growth_on [increment] [leave]
		increment := 0
		notifyOnLeave := false
		for _, arg := range args {
			if strings.EqualFold(arg, "leave") {
				notifyOnLeave = true
				continue
			}
			parsed, err := strconv.Atoi(arg)
			if err != nil {
				return c.Send("使い方: /growth_on [increment] [leave]")
			}
			increment = parsed
		}

		settings, err := settingsService.Enable(ctx, c.Sender().ID, c.Chat().ID, increment, c.Chat().ID, notifyOnLeave)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrAdminNotAuthorized:
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send("コマンドを使用するには管理者権限が必要です。")
			case app.ErrInvalidIncrement:
				logWithError.Warn("Invalid increment")
				return c.Send("5～1000人の間で指定してください。")
			default:
				logWithError.Error("Failed to enable growth notifications")
				return c.Send(fmt.Sprintf("エラーが発生しました: %s", err.Error()))
			}
		}

		handlerLogger.WithField("increment", settings.Increment).Info("Growth notifications enabled")
		return c.Send(fmt.Sprintf("参加メッセージをONにしました!\n%d人ごとにお祝いメッセージを送信します", settings.Increment))
	})

	b.Handle("/growth_off", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/growth_off",
			"sender_id": c.Sender().ID,
			"chat_id":   c.Chat().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("コマンドを使用するには管理者権限が必要です。")
		}

		if _, err := settingsService.Disable(ctx, c.Sender().ID, c.Chat().ID); err != nil {
			handlerLogger.WithError(err).Error("Failed to disable growth notifications")
			return c.Send(fmt.Sprintf("エラーが発生しました: %s", err.Error()))
		}

		handlerLogger.Info("Growth notifications disabled")
		return c.Send("参加メッセージを無効にしました!")
	})

	b.Handle("/growth_status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/growth_status",
			"sender_id": c.Sender().ID,
			"chat_id":   c.Chat().ID,
		})

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("コマンドを使用するには管理者権限が必要です。")
		}

		settings, err := settingsService.Describe(ctx, c.Sender().ID, c.Chat().ID)
		if err != nil {
			if err == idb.ErrSettingsNotFound {
				return c.Send("このチャットは未設定です。/growth_on で有効にできます。")
			}
			handlerLogger.WithError(err).Error("Failed to describe growth settings")
			return c.Send(fmt.Sprintf("エラーが発生しました: %s", err.Error()))
		}

		state := "OFF"
		if settings.Enabled {
			state = "ON"
		}
		var status strings.Builder
		status.WriteString(fmt.Sprintf("参加メッセージ: %s\n", state))
		status.WriteString(fmt.Sprintf("お祝いの間隔: %d人ごと\n", settings.Increment))
		if settings.NotifyOnLeave {
			status.WriteString("退室メッセージ: ON")
		} else {
			status.WriteString("退室メッセージ: OFF")
		}
		return c.Send(status.String())
	})
}
