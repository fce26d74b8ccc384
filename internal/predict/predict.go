// Package predict produces membership forecasts from a join history.
//
// Two strategies exist: an external helper process (advisory, may be
// unavailable) and an in-process polynomial regression. The orchestrator is
// a strict first-success chain over an ordered strategy list.
package predict

import (
	"context"
	"time"
)

// DefaultHorizonDays bounds how far past the last observed join the
// regression fallback searches before giving up.
const DefaultHorizonDays = 304

const secondsPerDay = 24 * 60 * 60

// Request asks when a chat will reach Target members, searching at most
// Horizon days forward.
type Request struct {
	Target  int
	Horizon int
}

// Result is a produced forecast. Chart may be empty when the strategy had
// no image to offer.
type Result struct {
	PredictedDate time.Time // midnight UTC
	Chart         []byte    // PNG
}

// Predictor produces a forecast from an ascending join history. A nil
// Result with a nil error means the strategy has nothing to offer; errors
// are reserved for defects such as chart rendering failures.
type Predictor interface {
	Forecast(ctx context.Context, history []time.Time, req Request) (*Result, error)
}

// Mode selects which strategies an on-demand forecast may use.
type Mode int

const (
	// ModeAuto consults the external delegate first and falls back to the
	// in-process regression.
	ModeAuto Mode = iota
	// ModeDelegateOnly consults only the external delegate.
	ModeDelegateOnly
)

// Chain tries each predictor in order and returns the first forecast.
// No merging, no voting: a strategy that answers wins outright even if its
// chart is empty.
type Chain struct {
	predictors []Predictor
}

func NewChain(predictors ...Predictor) *Chain {
	return &Chain{predictors: predictors}
}

func (c *Chain) Forecast(ctx context.Context, history []time.Time, req Request) (*Result, error) {
	for _, p := range c.predictors {
		res, err := p.Forecast(ctx, history, req)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// DayOrdinal maps a timestamp to its whole-day ordinal since the Unix epoch.
func DayOrdinal(t time.Time) int64 {
	return t.UTC().Unix() / secondsPerDay
}

// DayToTime converts a day ordinal back to midnight UTC of that day.
func DayToTime(day int64) time.Time {
	return time.Unix(day*secondsPerDay, 0).UTC()
}
