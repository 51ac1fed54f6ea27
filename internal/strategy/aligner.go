package strategy

import (
	"errors"
	"fmt"

	"RelativeStrength/internal/model"
)

// ErrMisalignedSeries is returned when a ticker and the base cannot be matched session by session.
var ErrMisalignedSeries = errors.New("misaligned series")

const sessionLayout = "2006-01-02"

// Aligned holds the closing prices of a ticker and the base over their common sessions.
type Aligned struct {
	Ticker []float64
	Base   []float64
	// Bars discarded from each side because the other series had no matching session.
	TickerDropped int
	BaseDropped   int
}

// Align matches ticker and base bars on their session date. When either side lacks
// timestamps the series must already have equal length; they are never truncated.
func Align(ticker, base *model.PriceSeries) (Aligned, error) {
	if ticker == nil || base == nil || ticker.Len() == 0 || base.Len() == 0 {
		return Aligned{}, fmt.Errorf("%w: empty series", ErrMisalignedSeries)
	}

	if !ticker.HasDates() || !base.HasDates() {
		if ticker.Len() != base.Len() {
			return Aligned{}, fmt.Errorf("%w: %s has %d sessions, %s has %d and no dates to match on",
				ErrMisalignedSeries, ticker.Symbol, ticker.Len(), base.Symbol, base.Len())
		}
		return Aligned{Ticker: ticker.Closes(), Base: base.Closes()}, nil
	}

	baseIdx := make(map[string]int, base.Len())
	for i, b := range base.Bars {
		key := b.Time.UTC().Format(sessionLayout)
		if _, dup := baseIdx[key]; dup {
			continue
		}
		baseIdx[key] = i
	}

	out := Aligned{
		Ticker: make([]float64, 0, ticker.Len()),
		Base:   make([]float64, 0, base.Len()),
	}
	seen := make(map[string]bool, ticker.Len())
	for _, b := range ticker.Bars {
		key := b.Time.UTC().Format(sessionLayout)
		j, ok := baseIdx[key]
		if !ok || seen[key] {
			out.TickerDropped++
			continue
		}
		seen[key] = true
		out.Ticker = append(out.Ticker, b.Close)
		out.Base = append(out.Base, base.Bars[j].Close)
	}
	out.BaseDropped = base.Len() - len(out.Base)

	if len(out.Ticker) == 0 {
		return Aligned{}, fmt.Errorf("%w: %s and %s share no sessions", ErrMisalignedSeries, ticker.Symbol, base.Symbol)
	}
	return out, nil
}
