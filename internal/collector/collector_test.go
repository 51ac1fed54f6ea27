package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"RelativeStrength/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(f Fetcher, retries int) *Collector {
	c := NewCollector(f, retries, 2)
	c.RetryDelay = time.Millisecond
	return c
}

func TestCollect_SkipsUnavailableSymbols(t *testing.T) {
	mock := &MockFetcher{
		Price: 50,
		Func: func(symbol string, start, end time.Time) ([]model.OHLCV, error) {
			return nil, errors.New("not found")
		},
		Bars: map[string][]model.OHLCV{
			"SPY": GenerateBars(400, 0.001, testStart, testEnd),
			"XLK": GenerateBars(150, 0.002, testStart, testEnd),
		},
	}

	ds, err := newTestCollector(mock, 2).Collect(context.Background(), "SPY", []string{"XLK", "ZZZ"}, testStart, testEnd)
	require.NoError(t, err)

	assert.Equal(t, "SPY", ds.Base.Symbol)
	require.Contains(t, ds.Series, "XLK")
	assert.Equal(t, testStart, ds.Series["XLK"].Start)
	assert.NotContains(t, ds.Series, "ZZZ")
	require.Contains(t, ds.Unavailable, "ZZZ")
	assert.ErrorIs(t, ds.Unavailable["ZZZ"], ErrDataUnavailable)
}

func TestCollect_BaseFailureIsFatal(t *testing.T) {
	mock := &MockFetcher{
		Func: func(symbol string, start, end time.Time) ([]model.OHLCV, error) {
			return nil, errors.New("timeout")
		},
	}
	_, err := newTestCollector(mock, 1).Collect(context.Background(), "SPY", []string{"XLK"}, testStart, testEnd)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCollect_RetriesTransientFailures(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	mock := &MockFetcher{
		Func: func(symbol string, start, end time.Time) ([]model.OHLCV, error) {
			mu.Lock()
			calls[symbol]++
			n := calls[symbol]
			mu.Unlock()
			if symbol == "XLE" && n < 3 {
				return nil, errors.New("flaky")
			}
			return GenerateBars(100, 0, start, end), nil
		},
	}

	ds, err := newTestCollector(mock, 3).Collect(context.Background(), "SPY", []string{"XLE"}, testStart, testEnd)
	require.NoError(t, err)
	assert.Contains(t, ds.Series, "XLE")
	assert.Empty(t, ds.Unavailable)
	assert.Equal(t, 3, calls["XLE"])
	assert.Equal(t, 1, calls["SPY"])
}

func TestCollect_EmptyResponseIsUnavailable(t *testing.T) {
	mock := &MockFetcher{
		Bars: map[string][]model.OHLCV{
			"SPY": GenerateBars(400, 0, testStart, testEnd),
			"XLU": {},
		},
	}
	ds, err := newTestCollector(mock, 1).Collect(context.Background(), "SPY", []string{"XLU"}, testStart, testEnd)
	require.NoError(t, err)
	assert.ErrorIs(t, ds.Unavailable["XLU"], ErrDataUnavailable)
}

func TestCollect_BaseInSymbolsReusesSeries(t *testing.T) {
	ds, err := newTestCollector(&MockFetcher{Price: 100}, 1).Collect(context.Background(), "SPY", []string{"SPY"}, testStart, testEnd)
	require.NoError(t, err)
	assert.Same(t, ds.Base, ds.Series["SPY"])
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestCollector(&MockFetcher{Price: 100}, 3).Collect(ctx, "SPY", []string{"XLK"}, testStart, testEnd)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBars_WeekdaysOnly(t *testing.T) {
	// 2024-01-02 (Tue) .. 2024-01-10 (Wed) has 7 weekdays
	bars := GenerateBars(100, 0.01, testStart, testEnd)
	require.Len(t, bars, 7)
	for _, b := range bars {
		assert.NotEqual(t, time.Saturday, b.Time.Weekday())
		assert.NotEqual(t, time.Sunday, b.Time.Weekday())
	}
	assert.InDelta(t, 101.0, bars[1].Close, 1e-9)
}
