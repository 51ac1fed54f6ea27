package scanner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"RelativeStrength/internal/collector"
	"RelativeStrength/internal/config"
	"RelativeStrength/internal/model"
	"RelativeStrength/internal/strategy"
)

// RangeFunc resolves the date range of a run started at now.
type RangeFunc func(now time.Time) (start, end time.Time, err error)

// Settings are the explicit inputs of a scan.
type Settings struct {
	Base    string
	Symbols []string
	Params  strategy.Params
	Workers int
	Range   RangeFunc
}

// Scanner runs the collect → evaluate → rank pipeline and remembers the last report.
type Scanner struct {
	collector *collector.Collector
	settings  Settings

	mu   sync.RWMutex
	last *model.Report
}

// New creates a Scanner. Settings are validated on every Run.
func New(col *collector.Collector, s Settings) *Scanner {
	return &Scanner{collector: col, settings: s}
}

// NewFromConfig builds a Scanner over fetcher using the scan and data source settings in cfg.
func NewFromConfig(cfg *config.Config, fetcher collector.Fetcher) *Scanner {
	col := collector.NewCollector(fetcher, cfg.DataSource.MaxRetries, cfg.DataSource.Concurrency)
	return New(col, Settings{
		Base:    cfg.Scan.Base,
		Symbols: cfg.Scan.Symbols,
		Params: strategy.Params{
			CRSSMALength:     cfg.Scan.SMALength,
			UptrendSMALength: cfg.Scan.UptrendSMALength,
			CRSTrendLookback: cfg.Scan.CRSTrendLookback,
		},
		Workers: cfg.Scan.Workers,
		Range:   cfg.ScanRange,
	})
}

// Run performs one scan as of now.
func (s *Scanner) Run(ctx context.Context, now time.Time) (*model.Report, error) {
	if err := s.settings.Params.Validate(); err != nil {
		return nil, fmt.Errorf("scan params: %w", err)
	}
	if s.settings.Base == "" {
		return nil, fmt.Errorf("scan base symbol is empty")
	}
	start, end, err := s.resolveRange(now)
	if err != nil {
		return nil, err
	}
	symbols := uniqueSymbols(s.settings.Symbols)
	log.Printf("[INFO] scan started: %d symbols vs %s from %s", len(symbols), s.settings.Base, start.Format("2006-01-02"))

	ds, err := s.collector.Collect(ctx, s.settings.Base, symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	evals, err := strategy.EvaluateAll(ctx, strategy.Input{
		Base:        ds.Base,
		Series:      ds.Series,
		Unavailable: ds.Unavailable,
	}, s.settings.Params, s.settings.Workers)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	report := &model.Report{
		Base:        s.settings.Base,
		Start:       start,
		End:         end,
		Params:      s.settings.Params.ScanParams(),
		Rankings:    strategy.Rank(evals),
		Evaluations: evals,
		GeneratedAt: now,
	}
	log.Printf("[INFO] scan finished: %d qualified, %d rejected", len(report.Rankings), len(report.Rejected()))

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, nil
}

// Last returns the most recent successful report, or nil before the first run.
func (s *Scanner) Last() *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Settings returns the scan settings.
func (s *Scanner) Settings() Settings { return s.settings }

func (s *Scanner) resolveRange(now time.Time) (time.Time, time.Time, error) {
	if s.settings.Range != nil {
		return s.settings.Range(now)
	}
	end := now.UTC()
	return end.AddDate(-1, 0, 0), end, nil
}

func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
