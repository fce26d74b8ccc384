// Package chart renders fixed-size PNG line charts of membership growth.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// Canvas sizes are fixed per call site. Callers attach the PNG bytes
// directly, so a size change here is a user-visible change.
const (
	ProjectionWidth  = 800
	ProjectionHeight = 450
	HistoryWidth     = 1200
	HistoryHeight    = 400
)

const day = 24 * time.Hour

const secondsPerDay = 24 * 60 * 60

// Renderer draws membership charts. Rendering errors indicate a programming
// defect (bad series, impossible canvas) and are propagated, unlike the
// advisory prediction strategies.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderProjection draws actual vs projected cumulative member counts from
// the first join through the predicted date, 800x450.
func (r *Renderer) RenderProjection(history []time.Time, eval func(day int64) float64, predicted time.Time) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("empty join history")
	}

	days, actual := dailyCounts(history, history[0], predicted)
	projected := make([]float64, len(days))
	for i, d := range days {
		projected[i] = eval(d.Unix() / secondsPerDay)
	}

	graph := chart.Chart{
		Title:  "Growth Prediction",
		Width:  ProjectionWidth,
		Height: ProjectionHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Actual",
				XValues: days,
				YValues: actual,
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
			},
			chart.TimeSeries{
				Name:    "Projected",
				XValues: days,
				YValues: projected,
				Style:   chart.Style{StrokeColor: chart.ColorRed},
			},
		},
	}
	return renderPNG(graph)
}

// RenderMilestone draws the cumulative member count over the full join
// history, 800x450. Sent synchronously with a milestone announcement.
func (r *Renderer) RenderMilestone(history []time.Time) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("empty join history")
	}

	days, actual := dailyCounts(history, history[0], history[len(history)-1])
	graph := chart.Chart{
		Title:  "Member Growth",
		Width:  ProjectionWidth,
		Height: ProjectionHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Members",
				XValues: days,
				YValues: actual,
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
			},
		},
	}
	return renderPNG(graph)
}

// RenderHistory draws the member count across an arbitrary date range,
// 1200x400. Joins before the range still contribute to the running count.
func (r *Renderer) RenderHistory(history []time.Time, start, end time.Time) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("empty join history")
	}

	days, counts := dailyCounts(history, start, end)
	graph := chart.Chart{
		Title:  "Member Count History",
		Width:  HistoryWidth,
		Height: HistoryHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Members",
				XValues: days,
				YValues: counts,
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
			},
		},
	}
	return renderPNG(graph)
}

// CountAt returns the cumulative member count as of the given date: the
// number of joins on or before that day.
func CountAt(history []time.Time, at time.Time) int {
	cutoff := midnightUTC(at)
	count := 0
	for _, joined := range history {
		if !midnightUTC(joined).After(cutoff) {
			count++
		}
	}
	return count
}

// dailyCounts expands a join history into one cumulative count per day in
// [start, end]: a day's count is the number of joins dated on or before it,
// a non-decreasing step function. The range is widened to two days minimum
// because a single-point line series cannot be drawn.
func dailyCounts(history []time.Time, start, end time.Time) ([]time.Time, []float64) {
	startDay := midnightUTC(start)
	endDay := midnightUTC(end)

	n := int(endDay.Sub(startDay)/day) + 1
	if n < 2 {
		n = 2
	}

	days := make([]time.Time, n)
	counts := make([]float64, n)
	idx := 0
	count := 0
	for i := 0; i < n; i++ {
		d := startDay.Add(time.Duration(i) * day)
		for idx < len(history) && !midnightUTC(history[idx]).After(d) {
			count++
			idx++
		}
		days[i] = d
		counts[i] = float64(count)
	}
	return days, counts
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func renderPNG(graph chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}
