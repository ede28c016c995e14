package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// RenderMarkdown renders the full report as a markdown document.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# Scalp Backtest Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Coin: %s\n", r.Meta.Coin)
	fmt.Fprintf(&b, "- Window: %dh (%d periods)\n", r.Meta.Hours, r.Meta.Periods)
	fmt.Fprintf(&b, "- Configs evaluated: %d\n\n", r.Meta.Configs)

	b.WriteString("## Overall ranking\n\n")
	if len(r.Overall) == 0 {
		b.WriteString("No configs met the minimum sample size.\n")
	} else {
		writeStatsTable(&b, r.Overall)
	}

	b.WriteString("\n## Per-family leaders\n")
	for _, fam := range familyOrder {
		rows := r.PerFamily[fam]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", fam)
		writeStatsTable(&b, rows)
	}

	b.WriteString("\n## Split-half stability\n\n")
	b.WriteString("| Config | 1st half | 2nd half | Stable |\n")
	b.WriteString("|--------|---------:|---------:|:------:|\n")
	for _, s := range r.Overall {
		stable := "no"
		if s.Stable {
			stable = "yes"
		}
		fmt.Fprintf(&b, "| %s | %+.4f | %+.4f | %s |\n",
			s.ConfigName, s.FirstHalfMean, s.SecondHalfMean, stable)
	}

	return b.String()
}

func writeStatsTable(b *strings.Builder, rows []*domain.Stats) {
	b.WriteString("| Config | Family | N | WR | Mean | T | PF | Avg entry | Total |\n")
	b.WriteString("|--------|--------|--:|---:|-----:|--:|---:|----------:|------:|\n")
	for _, s := range rows {
		fmt.Fprintf(b, "| %s | %s | %d | %.0f%% | %+.4f | %.2f | %s | %.2f | %+.3f |\n",
			s.ConfigName, s.Family, s.N, s.WinRate*100, s.MeanPnL, s.TStat,
			formatPF(s.ProfitFactor), s.AvgEntry, s.TotalPnL)
	}
}

func formatPF(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
