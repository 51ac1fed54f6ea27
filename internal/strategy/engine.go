package strategy

import (
	"errors"
	"fmt"
	"log"

	"RelativeStrength/internal/calculator"
	"RelativeStrength/internal/model"
)

// Params are the window settings the CRS gates run with.
type Params struct {
	// CRSSMALength is the SMA window applied to ticker and base closes before taking their ratio.
	CRSSMALength int
	// UptrendSMALength is the longer SMA window on the ticker's own closes.
	UptrendSMALength int
	// CRSTrendLookback limits the CRS-SMA trend fit to the most recent points. 0 uses the whole series.
	CRSTrendLookback int
}

// DefaultParams returns the 20/100 session windows with a full-history CRS trend.
func DefaultParams() Params {
	return Params{CRSSMALength: 20, UptrendSMALength: 100}
}

// Validate checks the windows themselves, independent of any data.
func (p Params) Validate() error {
	if p.CRSSMALength < 1 {
		return fmt.Errorf("%w: crs sma length %d", calculator.ErrInvalidWindow, p.CRSSMALength)
	}
	if p.UptrendSMALength < 1 {
		return fmt.Errorf("%w: uptrend sma length %d", calculator.ErrInvalidWindow, p.UptrendSMALength)
	}
	if p.CRSTrendLookback < 0 || p.CRSTrendLookback == 1 {
		return fmt.Errorf("%w: crs trend lookback %d must be 0 or at least 2", calculator.ErrInvalidWindow, p.CRSTrendLookback)
	}
	return nil
}

// ScanParams converts to the report representation.
func (p Params) ScanParams() model.ScanParams {
	return model.ScanParams{
		CRSSMALength:     p.CRSSMALength,
		UptrendSMALength: p.UptrendSMALength,
		CRSTrendLookback: p.CRSTrendLookback,
	}
}

// Evaluate runs one ticker through align → CRS trend → price trend, stopping at the first failed gate.
// Data problems produce a rejected evaluation; a non-nil error means the run itself is broken.
func Evaluate(symbol string, ticker, base *model.PriceSeries, p Params) (model.TickerEvaluation, error) {
	eval := model.TickerEvaluation{Symbol: symbol}
	if err := p.Validate(); err != nil {
		return eval, err
	}

	aligned, err := Align(ticker, base)
	if err != nil {
		return reject(eval, model.ReasonMisaligned, err), nil
	}
	if aligned.TickerDropped > 0 || aligned.BaseDropped > 0 {
		log.Printf("[INFO] %s: aligned on %d sessions (dropped %d ticker, %d base)",
			symbol, len(aligned.Ticker), aligned.TickerDropped, aligned.BaseDropped)
	}
	eval.Sessions = len(aligned.Ticker)
	log.Printf("[INFO] %s: calculating CRS of %s/%s over %d sessions", symbol, symbol, base.Symbol, eval.Sessions)

	crs, err := calculator.Ratio(aligned.Ticker, aligned.Base)
	if err != nil {
		return eval, fmt.Errorf("%s: crs: %w", symbol, err)
	}
	eval.LatestCRS = crs[len(crs)-1]

	tickerSMA, err := calculator.RollingAverage(aligned.Ticker, p.CRSSMALength)
	if err != nil {
		return classify(eval, err)
	}
	baseSMA, err := calculator.RollingAverage(aligned.Base, p.CRSSMALength)
	if err != nil {
		return classify(eval, err)
	}
	crsSMA, err := calculator.Ratio(tickerSMA, baseSMA)
	if err != nil {
		return eval, fmt.Errorf("%s: crs sma: %w", symbol, err)
	}
	eval.LatestCRSSMA = crsSMA[len(crsSMA)-1]

	crsTrend, err := calculator.FitTrend(lastN(crsSMA, p.CRSTrendLookback))
	if err != nil {
		return classify(eval, err)
	}
	eval.CRSSlope = crsTrend.Slope
	if !crsTrend.Uptrend() {
		return reject(eval, model.ReasonCRSNotUptrend, nil), nil
	}
	log.Printf("[INFO] %s/%s CRS is in an uptrend", symbol, base.Symbol)

	longSMA, err := calculator.RollingAverage(aligned.Ticker, p.UptrendSMALength)
	if err != nil {
		return classify(eval, err)
	}
	priceTrend, err := calculator.FitTrend(longSMA)
	if err != nil {
		return classify(eval, err)
	}
	eval.PriceSlope = priceTrend.Slope
	if !priceTrend.Uptrend() {
		return reject(eval, model.ReasonPriceNotUptrend, nil), nil
	}

	log.Printf("[INFO] %s is in an uptrend based on %d session SMA", symbol, p.UptrendSMALength)
	eval.Qualified = true
	return eval, nil
}

// classify turns a shortfall of data into a rejection and passes every other error through.
// Windows were validated up front, so ErrInvalidWindow here means the series is too short.
func classify(eval model.TickerEvaluation, err error) (model.TickerEvaluation, error) {
	if errors.Is(err, calculator.ErrInvalidWindow) || errors.Is(err, calculator.ErrInsufficientData) {
		return reject(eval, model.ReasonInsufficientHistory, err), nil
	}
	return eval, fmt.Errorf("%s: %w", eval.Symbol, err)
}

func reject(eval model.TickerEvaluation, reason model.Reason, err error) model.TickerEvaluation {
	eval.Qualified = false
	eval.Reason = reason
	if err != nil {
		eval.Detail = err.Error()
	}
	return eval
}

func lastN(series []float64, n int) []float64 {
	if n <= 0 || n >= len(series) {
		return series
	}
	return series[len(series)-n:]
}
