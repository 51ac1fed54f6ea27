package strategy

import (
	"sort"

	"RelativeStrength/internal/model"
)

// Rank orders the qualified evaluations by CRS slope, strongest first.
// Ties keep their input order, so callers should pass evaluations sorted by symbol.
func Rank(evals []model.TickerEvaluation) []model.RankedSymbol {
	qualified := make([]model.TickerEvaluation, 0, len(evals))
	for _, e := range evals {
		if e.Qualified {
			qualified = append(qualified, e)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].CRSSlope > qualified[j].CRSSlope
	})

	ranked := make([]model.RankedSymbol, len(qualified))
	for i, e := range qualified {
		ranked[i] = model.RankedSymbol{Rank: i + 1, Symbol: e.Symbol, Slope: e.CRSSlope}
	}
	return ranked
}
