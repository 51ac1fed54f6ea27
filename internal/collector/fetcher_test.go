package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
)

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var gotPath, gotInterval, gotPeriod1 string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotPeriod1 = r.URL.Query().Get("period1")
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1704292200,1704205800,1704378600],
			"indicators":{"quote":[{"open":[101,100,null],"high":[102,101,null],"low":[99,98,null],
			"close":[101.5,100.5,null],"volume":[2000,1000,null]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL

	// Index symbols such as ^GSPC can serve as the base and must survive path escaping.
	bars, err := f.FetchDailyBars(context.Background(), "^GSPC", testStart, testEnd)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, fmt.Sprint(testStart.Unix()), gotPeriod1)

	// null close dropped, remaining bars sorted oldest first
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 2000.0, bars[1].Volume)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusInternalServerError, "boom"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"only null bars", http.StatusOK, `{"chart":{"result":[{"timestamp":[1704292200],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`},
		{"bad json", http.StatusOK, `{"chart":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			f := NewYahooFetcher("", time.Second)
			f.BaseURL = srv.URL
			_, err := f.FetchDailyBars(context.Background(), "XLK", testStart, testEnd)
			assert.Error(t, err)
		})
	}
}

func TestVsTraderFetcher_FetchDailyBars(t *testing.T) {
	var gotAuth, gotSymbol, gotStart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSymbol = r.URL.Query().Get("symbol")
		gotStart = r.URL.Query().Get("start")
		fmt.Fprint(w, `[{"timestamp":1704378600,"open":3,"high":3,"low":3,"close":3,"volume":30},
			{"timestamp":1704205800,"open":1,"high":1,"low":1,"close":1,"volume":10},
			{"timestamp":1704292200,"open":0,"high":0,"low":0,"close":0,"volume":0}]`)
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "secret", "", time.Second)
	bars, err := f.FetchDailyBars(context.Background(), "XLE", testStart, testEnd)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "XLE", gotSymbol)
	assert.Equal(t, "2024-01-02", gotStart)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.0, bars[0].Close)
	assert.Equal(t, 3.0, bars[1].Close)
}

func TestVsTraderFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "", "", time.Second)
	_, err := f.FetchDailyBars(context.Background(), "XLE", testStart, testEnd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		name    string
		opts    SourceOptions
		want    string
		wantErr bool
	}{
		{"default yahoo", SourceOptions{}, "yahoo", false},
		{"base url implies vstrader", SourceOptions{BaseURL: "http://localhost"}, "vstrader", false},
		{"explicit yahoo ignores base url", SourceOptions{Provider: "yahoo", BaseURL: "http://localhost"}, "yahoo", false},
		{"alpaca", SourceOptions{Provider: "alpaca", APIKey: "k", APISecret: "s"}, "alpaca", false},
		{"mock", SourceOptions{Provider: "mock"}, "mock", false},
		{"vstrader without url", SourceOptions{Provider: "vstrader"}, "", true},
		{"unknown", SourceOptions{Provider: "bloomberg"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFetcher(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}
}
