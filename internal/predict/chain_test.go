package predict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPredictor counts invocations and returns a canned answer.
type stubPredictor struct {
	calls  int
	result *Result
	err    error
}

func (s *stubPredictor) Forecast(_ context.Context, _ []time.Time, _ Request) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func someHistory() []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []time.Time{base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2)}
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &stubPredictor{result: &Result{PredictedDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}}
	second := &stubPredictor{result: &Result{PredictedDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}}
	chain := NewChain(first, second)

	res, err := chain.Forecast(context.Background(), someHistory(), Request{Target: 100, Horizon: DefaultHorizonDays})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, first.result.PredictedDate, res.PredictedDate)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "fallback must not be consulted when the delegate answers")
}

func TestChainEmptyChartStillWins(t *testing.T) {
	first := &stubPredictor{result: &Result{PredictedDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Chart: []byte{}}}
	second := &stubPredictor{result: &Result{PredictedDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Chart: []byte("png")}}
	chain := NewChain(first, second)

	res, err := chain.Forecast(context.Background(), someHistory(), Request{Target: 100, Horizon: DefaultHorizonDays})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Chart)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughOnNoResult(t *testing.T) {
	first := &stubPredictor{}
	second := &stubPredictor{result: &Result{PredictedDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}}
	chain := NewChain(first, second)

	res, err := chain.Forecast(context.Background(), someHistory(), Request{Target: 100, Horizon: DefaultHorizonDays})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, second.result.PredictedDate, res.PredictedDate)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainNoResultWhenAllDecline(t *testing.T) {
	first := &stubPredictor{}
	second := &stubPredictor{}
	chain := NewChain(first, second)

	res, err := chain.Forecast(context.Background(), someHistory(), Request{Target: 100, Horizon: DefaultHorizonDays})

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestChainStopsOnError(t *testing.T) {
	first := &stubPredictor{err: errors.New("render failed")}
	second := &stubPredictor{result: &Result{PredictedDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}}
	chain := NewChain(first, second)

	res, err := chain.Forecast(context.Background(), someHistory(), Request{Target: 100, Horizon: DefaultHorizonDays})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 0, second.calls, "errors are defects, not a reason to fall through")
}
