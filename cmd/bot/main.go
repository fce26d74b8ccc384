package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community_growth_bot/internal/app"
	"community_growth_bot/internal/chart"
	"community_growth_bot/internal/domain/growth"
	"community_growth_bot/internal/infra/config"
	idb "community_growth_bot/internal/infra/database"
	"community_growth_bot/internal/infra/logger"
	"community_growth_bot/internal/infra/scheduler"
	"community_growth_bot/internal/infra/telegram"
	"community_growth_bot/internal/predict"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Community Growth Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Get().WithField("component", "main")
	mainLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Admin ID: %d", cfg.LogLevel, cfg.Environment, cfg.AdminTelegramID)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := idb.EnsureSchema(db); err != nil {
		mainLogger.Fatalf("Could not ensure database schema: %v", err)
	}
	mainLogger.Info("Database connection established and schema ensured.")

	// Initialize Repositories
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	joinRepo := idb.NewPostgresJoinRepository(db)
	snapshotRepo := idb.NewPostgresSnapshotRepository(db)
	mainLogger.Info("Repositories initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}
	client := telegram.NewTelebotAdapter(bot)

	// Prediction chain: external helper first, polynomial regression second.
	renderer := chart.NewRenderer()
	delegate := predict.NewDelegatePredictor(cfg.PredictHelperPath, logger.Get().WithField("component", "delegate_predictor"))
	fallback := predict.NewPolynomialPredictor(renderer)
	chain := predict.NewChain(delegate, fallback)

	// Initialize Services
	cooldown := growth.NewCooldown(cfg.JoinCooldown)
	forecastService := app.NewForecastService(joinRepo, delegate, fallback, cfg.PredictionHorizon,
		logger.Get().WithField("component", "forecast_service"))
	milestoneService := app.NewMilestoneService(settingsRepo, joinRepo, client, chain, renderer, cooldown, cfg.PredictionHorizon,
		logger.Get().WithField("component", "milestone_service"))
	settingsService := app.NewSettingsService(settingsRepo, cfg.AdminTelegramID)
	mainLogger.Info("Services initialized.")

	// Initialize SnapshotScheduler
	snapshotScheduler := scheduler.NewSnapshotScheduler(settingsRepo, snapshotRepo, client,
		logger.Get().WithField("component", "scheduler"), cfg.CronSpecSnapshot)
	snapshotScheduler.Start()

	// Register Handlers
	ctx := context.Background()
	handlerLogger := logger.Get().WithField("component", "handlers")
	telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, settingsService, cfg.AdminTelegramID, handlerLogger)
	telegram.RegisterGrowthHandlers(ctx, bot, forecastService, milestoneService, joinRepo, renderer, handlerLogger)
	mainLogger.Info("Handlers registered.")

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	snapshotScheduler.Stop()
	bot.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
