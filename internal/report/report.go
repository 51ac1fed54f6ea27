package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"RelativeStrength/internal/model"

	"github.com/fatih/color"
)

// Printer writes scan reports to a terminal.
type Printer struct {
	Out     io.Writer
	Verbose bool
	JSON    bool

	rank     *color.Color
	symbol   *color.Color
	muted    *color.Color
	headline *color.Color
}

// NewPrinter creates a Printer. Colors are disabled when noColor is set or the output is not a TTY.
func NewPrinter(out io.Writer, verbose, asJSON, noColor bool) *Printer {
	p := &Printer{
		Out:      out,
		Verbose:  verbose,
		JSON:     asJSON,
		rank:     color.New(color.FgCyan),
		symbol:   color.New(color.FgGreen, color.Bold),
		muted:    color.New(color.FgHiBlack),
		headline: color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.rank, p.symbol, p.muted, p.headline} {
			c.DisableColor()
		}
	}
	return p
}

// Print writes r as a ranked list, or as indented JSON when JSON is set.
func (p *Printer) Print(r *model.Report) error {
	if p.JSON {
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if p.Verbose {
		p.headline.Fprintf(p.Out, "CRS ranking vs %s (%s to %s)\n",
			r.Base, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	if len(r.Rankings) == 0 {
		p.muted.Fprintln(p.Out, "No symbols qualified.")
	}
	for _, rs := range r.Rankings {
		p.rank.Fprintf(p.Out, "%d. ", rs.Rank)
		p.symbol.Fprint(p.Out, rs.Symbol)
		fmt.Fprintf(p.Out, ": %.6g\n", rs.Slope)
	}

	if !p.Verbose {
		return nil
	}
	rejected := r.Rejected()
	if len(rejected) == 0 {
		return nil
	}
	p.headline.Fprintln(p.Out, "\nRejected:")
	for _, e := range rejected {
		line := fmt.Sprintf("  %-6s %s", e.Symbol, e.Reason)
		if e.Detail != "" {
			line += " (" + e.Detail + ")"
		}
		p.muted.Fprintln(p.Out, line)
	}
	return nil
}

// BannerOptions are the values shown in the startup banner.
type BannerOptions struct {
	Symbols          []string
	Base             string
	SMALength        int
	UptrendSMALength int
	CRSTrendLookback int
	Start            string
}

// Banner describes the tool and the configuration it runs with.
func (p *Printer) Banner(o BannerOptions) {
	lookback := "full history"
	if o.CRSTrendLookback > 0 {
		lookback = fmt.Sprintf("last %d sessions", o.CRSTrendLookback)
	}
	p.headline.Fprintln(p.Out, "Comparative relative strength of stock symbols against a base symbol.")
	fmt.Fprintf(p.Out, `Configuration:
  symbols            %s
  base               %s
  sma length         %d  (SMA of symbol and base; CRS SMA is their ratio)
  uptrend sma length %d  (SMA of the symbol's closes fitted for the price uptrend)
  crs trend lookback %s
  start date         %s

Output: symbols whose CRS SMA and uptrend SMA both have a positive least squares slope,
ordered by CRS SMA slope.

`, strings.Join(o.Symbols, ", "), o.Base, o.SMALength, o.UptrendSMALength, lookback, o.Start)
}
