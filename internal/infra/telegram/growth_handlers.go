package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"community_growth_bot/internal/app"
	"community_growth_bot/internal/chart"
	"community_growth_bot/internal/domain/growth"
	"community_growth_bot/internal/predict"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxHistoryRange = 3 * 365 * 24 * time.Hour

// RegisterGrowthHandlers wires the membership events and the forecast and
// history commands.
func RegisterGrowthHandlers(
	ctx context.Context,
	b *telebot.Bot,
	forecastService *app.ForecastService,
	milestoneService *app.MilestoneService,
	joinRepo growth.JoinRepository,
	renderer *chart.Renderer,
	baseLogger *logrus.Entry,
) {
	b.Handle(telebot.OnUserJoined, func(c telebot.Context) error {
		// The sender of the service message can be an admin adding
		// someone else; the affected member is UserJoined.
		joined := c.Message().UserJoined
		if joined == nil || joined.IsBot {
			return nil
		}
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler": "user_joined",
			"chat_id": c.Chat().ID,
			"user_id": joined.ID,
		})

		if err := milestoneService.HandleMemberJoin(ctx, c.Chat().ID); err != nil {
			handlerLogger.WithError(err).Error("Could not process member join")
		}
		return nil
	})

	b.Handle(telebot.OnUserLeft, func(c telebot.Context) error {
		left := c.Message().UserLeft
		if left == nil || left.IsBot {
			return nil
		}
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler": "user_left",
			"chat_id": c.Chat().ID,
		})

		if err := milestoneService.HandleMemberLeave(ctx, c.Chat().ID); err != nil {
			handlerLogger.WithError(err).Error("Could not process member leave")
		}
		return nil
	})

	b.Handle("/growth", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/growth",
			"sender_id": c.Sender().ID,
			"chat_id":   c.Chat().ID,
		})
		handlerLogger.Info("Command received")

		args := c.Args()
		// Expected format: /growth <target> [auto|delegate] [nograph]
		if len(args) < 1 {
			return c.Send("targetを指定してください。")
		}
		target, err := strconv.Atoi(args[0])
		if err != nil || target <= 0 {
			return c.Send("targetを指定してください。")
		}

		mode := predict.ModeAuto
		includeChart := true
		for _, arg := range args[1:] {
			switch strings.ToLower(arg) {
			case "auto":
				mode = predict.ModeAuto
			case "delegate":
				mode = predict.ModeDelegateOnly
			case "nograph":
				includeChart = false
			default:
				return c.Send("不明なオプションです。使い方: /growth <target> [auto|delegate] [nograph]")
			}
		}

		res, err := forecastService.Forecast(ctx, c.Chat().ID, target, mode, includeChart)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrInvalidTarget:
				return c.Send("targetを指定してください。")
			case app.ErrInsufficientHistory:
				logWithError.Info("Not enough join history for forecast")
				return c.Send("回帰分析を行うためのデータが不足しています。")
			case app.ErrNoForecast:
				logWithError.Info("No forecast produced")
				return c.Send("予測できませんでした。")
			default:
				logWithError.Error("Forecast failed")
				return c.Send(fmt.Sprintf("エラーが発生しました: %s", err.Error()))
			}
		}

		caption := fmt.Sprintf("%d人に達する予測日: %s", target, res.PredictedDate.Format("2006-01-02"))
		if includeChart && len(res.Chart) > 0 {
			photo := &telebot.Photo{
				File:    telebot.FromReader(bytes.NewReader(res.Chart)),
				Caption: caption,
			}
			return c.Send(photo)
		}
		return c.Send(caption)
	})

	b.Handle("/history", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/history",
			"sender_id": c.Sender().ID,
			"chat_id":   c.Chat().ID,
		})
		handlerLogger.Info("Command received")

		args := c.Args()
		// Expected format: /history <start_date> <end_date>
		if len(args) != 2 {
			return c.Send("使い方: /history <開始日> <終了日>")
		}
		start, err := parseDate(args[0])
		if err != nil {
			return c.Send(err.Error())
		}
		end, err := parseDate(args[1])
		if err != nil {
			return c.Send(err.Error())
		}
		if start.After(end) {
			return c.Send("開始日は終了日より前である必要があります。")
		}
		if end.Sub(start) > maxHistoryRange {
			return c.Send("日付の範囲は最大3年までにしてください。")
		}

		history, err := joinRepo.ListJoins(ctx, c.Chat().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Could not list join history")
			return c.Send(fmt.Sprintf("エラーが発生しました: %s", err.Error()))
		}
		if len(history) == 0 {
			return c.Send("参加履歴が見つかりません。メンバーの参加日時が取得できませんでした。")
		}

		png, err := renderer.RenderHistory(history, start, end)
		if err != nil {
			handlerLogger.WithError(err).Error("Could not render history chart")
			return c.Send(fmt.Sprintf("エラーが発生しました: %s", err.Error()))
		}

		caption := fmt.Sprintf(
			"%s から %s までのメンバー数推移\n開始時点のメンバー数: %d人\n%s時点のメンバー数: %d人",
			start.Format("2006-01-02"), end.Format("2006-01-02"),
			chart.CountAt(history, start),
			end.Format("2006-01-02"), chart.CountAt(history, end),
		)
		photo := &telebot.Photo{
			File:    telebot.FromReader(bytes.NewReader(png)),
			Caption: caption,
		}
		return c.Send(photo)
	})
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("日付は YYYY-MM-DD または YYYY/MM/DD の形式で指定してください。")
}
