package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Trend is the least-squares line fitted to a series against its position index.
type Trend struct {
	Slope     float64
	Intercept float64
}

// Uptrend reports whether the fitted line rises. Any positive slope counts.
func (t Trend) Uptrend() bool { return t.Slope > 0 }

// FitTrend fits an ordinary least-squares line to series over x = 0, 1, ..., len(series)-1.
func FitTrend(series []float64) (Trend, error) {
	if len(series) < 2 {
		return Trend{}, fmt.Errorf("%w: trend needs at least 2 points, have %d", ErrInsufficientData, len(series))
	}
	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, series, nil, false)
	return Trend{Slope: beta, Intercept: alpha}, nil
}
