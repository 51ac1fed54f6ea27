package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RatioPrecision is the number of decimal places ratios are rounded to.
const RatioPrecision = 6

// Ratio divides numerator by denominator element-wise, rounding each result to RatioPrecision places.
func Ratio(numerator, denominator []float64) ([]float64, error) {
	if len(numerator) != len(denominator) {
		return nil, fmt.Errorf("%w: numerator has %d points, denominator %d", ErrLengthMismatch, len(numerator), len(denominator))
	}
	out := make([]float64, len(numerator))
	for i := range numerator {
		if denominator[i] == 0 {
			return nil, fmt.Errorf("%w: denominator is zero at index %d", ErrDivisionByZero, i)
		}
		out[i] = roundRatio(numerator[i] / denominator[i])
	}
	return out, nil
}

func roundRatio(v float64) float64 {
	return decimal.NewFromFloat(v).Round(RatioPrecision).InexactFloat64()
}
