// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	b *telebot.Bot,
	adminTelegramID int64,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send("こんにちは、管理者さん！ /help でコマンド一覧を確認できます。")
		}
		return c.Send("こんにちは！メンバー数の節目をお祝いして、成長を予測するボットです。/help で使い方を確認できます。")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString("利用できるコマンド:\n\n")
		helpText.WriteString("`/growth <target> [auto|delegate] [nograph]`\n - メンバー数がtargetに達する日を予測します。\n\n")
		helpText.WriteString("`/history <開始日> <終了日>`\n - 指定期間のメンバー数推移グラフを表示します。\n\n")
		if senderID == adminTelegramID {
			helpText.WriteString("管理者コマンド:\n\n")
			helpText.WriteString("`/growth_on [increment] [leave]`\n - 参加メッセージをONにします。incrementはお祝いの間隔です。\n\n")
			helpText.WriteString("`/growth_off`\n - 参加メッセージを無効にします。\n\n")
			helpText.WriteString("`/growth_status`\n - 現在の設定を表示します。\n\n")
		}
		helpText.WriteString("`/help`\n - このメッセージを表示します。")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
