package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"RelativeStrength/internal/model"

	"golang.org/x/sync/errgroup"
)

// MockFetcher returns controllable data for development and testing.
// Bars takes precedence over Func; with neither set, bars are generated around Price.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV
	Func  func(symbol string, start, end time.Time) ([]model.OHLCV, error)
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	if m.Func != nil {
		return m.Func(symbol, start, end)
	}
	price := m.Price
	if price <= 0 {
		price = 100
	}
	return GenerateBars(price, 0.001, start, end), nil
}

// GenerateBars builds one bar per weekday between start and end with a constant
// relative drift per session.
func GenerateBars(basePrice, drift float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	p := basePrice
	for d := start.UTC(); !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		p *= 1 + drift
	}
	return bars
}

// SourceOptions selects and configures a market data provider.
type SourceOptions struct {
	Provider  string
	BaseURL   string
	APIKey    string
	APISecret string
	Proxy     string
	Timeout   time.Duration
}

// NewFetcher builds the Fetcher named by opts.Provider. An empty provider picks
// vstrader when a base URL is configured and Yahoo otherwise.
func NewFetcher(opts SourceOptions) (Fetcher, error) {
	provider := opts.Provider
	if provider == "" {
		provider = "yahoo"
		if opts.BaseURL != "" {
			provider = "vstrader"
		}
	}
	switch provider {
	case "yahoo":
		return NewYahooFetcher(opts.Proxy, opts.Timeout), nil
	case "vstrader":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("vstrader provider requires base_url")
		}
		return NewVsTraderFetcher(opts.BaseURL, opts.APIKey, opts.Proxy, opts.Timeout), nil
	case "alpaca":
		return NewAlpacaFetcher(opts.APIKey, opts.APISecret), nil
	case "mock":
		return &MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", provider)
	}
}

// Dataset is the result of one collection run.
type Dataset struct {
	Base        *model.PriceSeries
	Series      map[string]*model.PriceSeries
	Unavailable map[string]error
}

// Collector fetches the base and ticker series for a scan.
type Collector struct {
	Fetcher     Fetcher
	MaxRetries  int
	Concurrency int
	// RetryDelay is the first backoff delay; it doubles after every failed attempt.
	RetryDelay time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, maxRetries, concurrency int) *Collector {
	if concurrency < 1 {
		concurrency = 4
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Collector{
		Fetcher:     fetcher,
		MaxRetries:  maxRetries,
		Concurrency: concurrency,
		RetryDelay:  time.Second,
	}
}

// Collect fetches base and every symbol over [start, end]. A base failure is fatal.
// Ticker failures are recorded in Dataset.Unavailable and do not stop the run.
func (c *Collector) Collect(ctx context.Context, base string, symbols []string, start, end time.Time) (*Dataset, error) {
	baseSeries, err := c.fetch(ctx, base, start, end)
	if err != nil {
		return nil, fmt.Errorf("base %s: %w", base, err)
	}

	ds := &Dataset{
		Base:        baseSeries,
		Series:      make(map[string]*model.PriceSeries, len(symbols)),
		Unavailable: make(map[string]error),
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for _, sym := range symbols {
		if sym == base {
			mu.Lock()
			ds.Series[sym] = baseSeries
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			series, err := c.fetch(gctx, sym, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Printf("[WARN] %s: skipped, %v", sym, err)
				ds.Unavailable[sym] = err
				return nil
			}
			ds.Series[sym] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("[INFO] collected %d/%d symbols from %s", len(ds.Series), len(symbols), c.Fetcher.Name())
	return ds, nil
}

// fetch retries with exponential backoff. Every returned error wraps ErrDataUnavailable
// unless the context ended.
func (c *Collector) fetch(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	var lastErr error
	delay := c.RetryDelay
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[WARN] %s: fetch attempt %d failed, retrying in %v: %v", symbol, attempt, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		log.Printf("[INFO] pulling %s data...", symbol)
		bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
		if err == nil && len(bars) == 0 {
			err = errors.New("empty response")
		}
		if err == nil {
			return &model.PriceSeries{
				Symbol:    symbol,
				Start:     start,
				End:       end,
				Bars:      bars,
				FetchedAt: time.Now(),
			}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrDataUnavailable, symbol, c.MaxRetries, lastErr)
}
