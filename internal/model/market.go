package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily bars of one symbol for a requested date range.
// Series are shared read-only between evaluations once fetched.
type PriceSeries struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the closing prices in session order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Len returns the number of sessions in the series.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// HasDates reports whether every bar carries a session timestamp.
func (s *PriceSeries) HasDates() bool {
	for _, b := range s.Bars {
		if b.Time.IsZero() {
			return false
		}
	}
	return len(s.Bars) > 0
}
