package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHelperPath      = "scripts/prophet_predict.py"
	defaultHorizonDays     = 304
	defaultCooldownSeconds = 3
	defaultCronSnapshot    = "0 0 * * *" // midnight daily
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken       string
	DatabaseURL         string
	AdminTelegramID     int64
	LogLevel            string
	Environment         string
	PredictHelperPath   string
	PredictionHorizon   int // days searched past the last join
	JoinCooldown        time.Duration
	CronSpecSnapshot    string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.PredictHelperPath = os.Getenv("PREDICT_HELPER_PATH")
	if cfg.PredictHelperPath == "" {
		cfg.PredictHelperPath = defaultHelperPath
	}

	cfg.PredictionHorizon = defaultHorizonDays
	if horizonStr := os.Getenv("PREDICTION_HORIZON_DAYS"); horizonStr != "" {
		cfg.PredictionHorizon, err = strconv.Atoi(horizonStr)
		if err != nil || cfg.PredictionHorizon <= 0 {
			return nil, fmt.Errorf("invalid PREDICTION_HORIZON_DAYS: %q", horizonStr)
		}
	}

	cooldownSeconds := defaultCooldownSeconds
	if cooldownStr := os.Getenv("JOIN_COOLDOWN_SECONDS"); cooldownStr != "" {
		cooldownSeconds, err = strconv.Atoi(cooldownStr)
		if err != nil || cooldownSeconds < 0 {
			return nil, fmt.Errorf("invalid JOIN_COOLDOWN_SECONDS: %q", cooldownStr)
		}
	}
	cfg.JoinCooldown = time.Duration(cooldownSeconds) * time.Second

	cfg.CronSpecSnapshot = os.Getenv("CRON_SPEC_SNAPSHOT")
	if cfg.CronSpecSnapshot == "" {
		cfg.CronSpecSnapshot = defaultCronSnapshot
	}

	return cfg, nil
}
