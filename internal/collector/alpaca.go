package collector

import (
	"context"
	"fmt"
	"time"

	"RelativeStrength/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	client *marketdata.Client
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchDailyBars requests one-day bars. The Alpaca client has no context support,
// so cancellation is only observed before the request starts.
func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca get bars: %w", err)
	}

	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		out = append(out, model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("alpaca: no bars for %s", symbol)
	}
	return out, nil
}
