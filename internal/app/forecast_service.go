package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"community_growth_bot/internal/domain/growth"
	"community_growth_bot/internal/predict"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidTarget       = errors.New("forecast target must be a positive integer")
	ErrInsufficientHistory = errors.New("not enough join history for a forecast")
	// ErrNoForecast means every strategy declined. It is an expected
	// outcome ("forecast unavailable"), not a defect.
	ErrNoForecast = errors.New("no strategy produced a forecast")
)

// ForecastService is the on-demand entry point over the prediction chain.
type ForecastService struct {
	joinRepo    growth.JoinRepository
	delegate    predict.Predictor
	fallback    predict.Predictor
	horizonDays int
	logger      *logrus.Entry
}

func NewForecastService(
	joinRepo growth.JoinRepository,
	delegate predict.Predictor,
	fallback predict.Predictor,
	horizonDays int,
	logger *logrus.Entry,
) *ForecastService {
	return &ForecastService{
		joinRepo:    joinRepo,
		delegate:    delegate,
		fallback:    fallback,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// Forecast predicts when the chat reaches target members. The join history
// is fetched fresh and re-sorted on every call; nothing is cached.
func (s *ForecastService) Forecast(ctx context.Context, chatID int64, target int, mode predict.Mode, includeChart bool) (*predict.Result, error) {
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	history, err := s.joinRepo.ListJoins(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing join history: %w", err)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Before(history[j]) })
	if len(history) < 2 {
		return nil, ErrInsufficientHistory
	}

	chain, err := s.chainFor(mode)
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"target":  target,
		"joins":   len(history),
	})
	res, err := chain.Forecast(ctx, history, predict.Request{Target: target, Horizon: s.horizonDays})
	if err != nil {
		logCtx.WithError(err).Error("Forecast failed")
		return nil, err
	}
	if res == nil {
		logCtx.Info("No strategy produced a forecast")
		return nil, ErrNoForecast
	}

	logCtx.WithField("predicted_date", res.PredictedDate.Format("2006-01-02")).Info("Forecast produced")
	if !includeChart {
		res.Chart = nil
	}
	return res, nil
}

func (s *ForecastService) chainFor(mode predict.Mode) (*predict.Chain, error) {
	switch mode {
	case predict.ModeAuto:
		return predict.NewChain(s.delegate, s.fallback), nil
	case predict.ModeDelegateOnly:
		return predict.NewChain(s.delegate), nil
	default:
		return nil, fmt.Errorf("unknown forecast mode %d", mode)
	}
}
