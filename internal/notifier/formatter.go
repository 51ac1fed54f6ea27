package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"RelativeStrength/internal/model"
)

// FormatReport formats a scan report into a Telegram HTML message.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>CRS Ranking</b> | %s vs %s\n", r.End.Format("2006-01-02"), html.EscapeString(r.Base)))
	b.WriteString(fmt.Sprintf("SMA %d / uptrend SMA %d", r.Params.CRSSMALength, r.Params.UptrendSMALength))
	if r.Params.CRSTrendLookback > 0 {
		b.WriteString(fmt.Sprintf(" / trend lookback %d", r.Params.CRSTrendLookback))
	}
	b.WriteString("\n\n")

	if len(r.Rankings) == 0 {
		b.WriteString("No symbol passed both trend filters.\n")
	} else {
		b.WriteString("📈 <b>Qualified:</b>\n")
		for _, rs := range r.Rankings {
			b.WriteString(fmt.Sprintf("%d. <code>%s</code>: %.6f\n", rs.Rank, html.EscapeString(rs.Symbol), rs.Slope))
		}
	}

	rejected := r.Rejected()
	if len(rejected) > 0 {
		b.WriteString("\n🚫 <b>Rejected:</b>\n")
		for _, line := range groupByReason(rejected) {
			b.WriteString(line)
		}
	}
	return b.String()
}

func groupByReason(evals []model.TickerEvaluation) []string {
	groups := map[model.Reason][]string{}
	for _, e := range evals {
		groups[e.Reason] = append(groups[e.Reason], html.EscapeString(e.Symbol))
	}
	reasons := make([]string, 0, len(groups))
	for reason := range groups {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)

	lines := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		syms := groups[model.Reason(reason)]
		lines = append(lines, fmt.Sprintf("  %s: %s\n", reason, strings.Join(syms, ", ")))
	}
	return lines
}

// FormatError formats a failed scan.
func FormatError(err error) string {
	return fmt.Sprintf("⚠️ <b>CRS scan failed</b>\n%s", html.EscapeString(err.Error()))
}

// FormatHelp lists the supported bot commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n" +
		"/rank - run a scan now and show the ranking\n" +
		"/last - show the most recent ranking\n" +
		"/help - show this message"
}
