package predict

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Degree is fixed; no regularization is applied.
const polynomialDegree = 3

// ProjectionRenderer renders actual vs projected growth for a fitted curve.
// Implemented by internal/chart.
type ProjectionRenderer interface {
	RenderProjection(history []time.Time, eval func(day int64) float64, predicted time.Time) ([]byte, error)
}

// PolynomialPredictor fits a cubic to the cumulative join curve by ordinary
// least squares and walks forward day by day until the fit reaches the
// target. The first day where the fit value is at or above the target wins,
// even if a non-monotonic fit later dips back below it.
type PolynomialPredictor struct {
	renderer ProjectionRenderer
}

func NewPolynomialPredictor(renderer ProjectionRenderer) *PolynomialPredictor {
	return &PolynomialPredictor{renderer: renderer}
}

func (p *PolynomialPredictor) Forecast(ctx context.Context, history []time.Time, req Request) (*Result, error) {
	if len(history) < 2 {
		return nil, nil
	}

	fit, err := fitGrowthCurve(history)
	if err != nil {
		// A degenerate design matrix (too few distinct days, singular
		// system) is an environmental condition, not a defect.
		return nil, nil
	}

	lastDay := DayOrdinal(history[len(history)-1])
	target := float64(req.Target)
	for offset := 0; offset <= req.Horizon; offset++ {
		day := lastDay + int64(offset)
		if fit.eval(day) < target {
			continue
		}
		predicted := DayToTime(day)
		chart, err := p.renderer.RenderProjection(history, fit.eval, predicted)
		if err != nil {
			return nil, fmt.Errorf("rendering projection chart: %w", err)
		}
		return &Result{PredictedDate: predicted, Chart: chart}, nil
	}
	return nil, nil
}

// growthFit is a cubic over x = days since the first observed join.
// Centring on the first join keeps the Vandermonde columns well conditioned
// for float64; it spans the same cubic function space as absolute ordinals.
type growthFit struct {
	origin int64
	coeffs [polynomialDegree + 1]float64
}

func (f growthFit) eval(day int64) float64 {
	x := float64(day - f.origin)
	y := 0.0
	pow := 1.0
	for _, c := range f.coeffs {
		y += c * pow
		pow *= x
	}
	return y
}

// fitGrowthCurve solves the least-squares cubic through (day ordinal,
// 1-based cumulative count) via QR factorization.
func fitGrowthCurve(history []time.Time) (growthFit, error) {
	fit := growthFit{origin: DayOrdinal(history[0])}

	rows := len(history)
	cols := polynomialDegree + 1
	if rows < cols {
		return fit, fmt.Errorf("need at least %d joins for a degree-%d fit, have %d", cols, polynomialDegree, rows)
	}

	design := mat.NewDense(rows, cols, nil)
	counts := mat.NewVecDense(rows, nil)
	for i, joined := range history {
		x := float64(DayOrdinal(joined) - fit.origin)
		pow := 1.0
		for j := 0; j < cols; j++ {
			design.Set(i, j, pow)
			pow *= x
		}
		counts.SetVec(i, float64(i+1))
	}

	var qr mat.QR
	qr.Factorize(design)
	solution := mat.NewVecDense(cols, nil)
	if err := qr.SolveVecTo(solution, false, counts); err != nil {
		return fit, fmt.Errorf("least squares fit: %w", err)
	}
	for j := 0; j < cols; j++ {
		fit.coeffs[j] = solution.AtVec(j)
	}
	return fit, nil
}
