package strategy

import (
	"context"
	"runtime"
	"sort"

	"RelativeStrength/internal/model"

	"golang.org/x/sync/errgroup"
)

// Input is everything a batch evaluation reads. None of it is modified.
type Input struct {
	Base   *model.PriceSeries
	Series map[string]*model.PriceSeries
	// Unavailable maps symbols whose data could not be fetched to the fetch error.
	Unavailable map[string]error
}

// EvaluateAll evaluates every symbol in in on up to workers goroutines and returns the
// evaluations sorted by symbol. The first fatal error cancels the remaining work.
func EvaluateAll(ctx context.Context, in Input, p Params, workers int) ([]model.TickerEvaluation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	symbols := make([]string, 0, len(in.Series)+len(in.Unavailable))
	for s := range in.Series {
		symbols = append(symbols, s)
	}
	for s := range in.Unavailable {
		if _, ok := in.Series[s]; !ok {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)

	results := make([]model.TickerEvaluation, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			series, ok := in.Series[sym]
			if !ok {
				results[i] = reject(model.TickerEvaluation{Symbol: sym}, model.ReasonDataUnavailable, in.Unavailable[sym])
				return nil
			}
			eval, err := Evaluate(sym, series, in.Base, p)
			if err != nil {
				return err
			}
			results[i] = eval
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
