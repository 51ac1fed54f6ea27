package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// RollingAverage computes the trailing simple moving average of series over window.
// The result has len(series)-window+1 points; point i is the mean of series[i:i+window].
func RollingAverage(series []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: window %d must be positive", ErrInvalidWindow, window)
	}
	if window > len(series) {
		return nil, fmt.Errorf("%w: window %d exceeds series length %d", ErrInvalidWindow, window, len(series))
	}

	out := make([]float64, len(series)-window+1)
	size := float64(window)
	sum := floats.Sum(series[:window])
	out[0] = sum / size
	for i := 1; i < len(out); i++ {
		// Resync the running sum once per window so rounding error stays bounded.
		if i%window == 0 {
			sum = floats.Sum(series[i : i+window])
		} else {
			sum += series[i+window-1] - series[i-1]
		}
		out[i] = sum / size
	}
	return out, nil
}
