package collector

import (
	"context"
	"errors"
	"time"

	"RelativeStrength/internal/model"
)

// ErrDataUnavailable wraps every failure to obtain a symbol's price history.
var ErrDataUnavailable = errors.New("data unavailable")

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	// FetchDailyBars returns daily bars for symbol from start through end, oldest first.
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
