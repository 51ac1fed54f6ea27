package model

import "time"

// Reason explains why a ticker was rejected.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonDataUnavailable     Reason = "data_unavailable"
	ReasonMisaligned          Reason = "misaligned"
	ReasonInsufficientHistory Reason = "insufficient_history"
	ReasonCRSNotUptrend       Reason = "crs_not_uptrend"
	ReasonPriceNotUptrend     Reason = "price_not_uptrend"
)

// TickerEvaluation is the outcome of one ticker's pass through the CRS gates.
type TickerEvaluation struct {
	Symbol       string  `json:"symbol"`
	Qualified    bool    `json:"qualified"`
	Reason       Reason  `json:"reason,omitempty"`
	CRSSlope     float64 `json:"crs_slope"`
	PriceSlope   float64 `json:"price_slope"`
	LatestCRS    float64 `json:"latest_crs"`
	LatestCRSSMA float64 `json:"latest_crs_sma"`
	Sessions     int     `json:"sessions"`
	Detail       string  `json:"detail,omitempty"`
}

// RankedSymbol pairs a qualified symbol with its 1-based rank.
type RankedSymbol struct {
	Rank   int     `json:"rank"`
	Symbol string  `json:"symbol"`
	Slope  float64 `json:"slope"`
}

// ScanParams records the settings a report was produced with.
type ScanParams struct {
	CRSSMALength     int `json:"crs_sma_length"`
	UptrendSMALength int `json:"uptrend_sma_length"`
	CRSTrendLookback int `json:"crs_trend_lookback"`
}

// Report is the result of a single scan.
type Report struct {
	Base        string             `json:"base"`
	Start       time.Time          `json:"start"`
	End         time.Time          `json:"end"`
	Params      ScanParams         `json:"params"`
	Rankings    []RankedSymbol     `json:"rankings"`
	Evaluations []TickerEvaluation `json:"evaluations"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Rejected returns the evaluations that did not qualify, in evaluation order.
func (r *Report) Rejected() []TickerEvaluation {
	var out []TickerEvaluation
	for _, e := range r.Evaluations {
		if !e.Qualified {
			out = append(out, e)
		}
	}
	return out
}
