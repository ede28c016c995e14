package reporting

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// RenderConsole prints the ranked report to the writer as aligned tables.
func RenderConsole(out io.Writer, r *Report) {
	fmt.Fprintf(out, "Scalp backtest: %s, %dh window, %d periods, %d configs\n\n",
		r.Meta.Coin, r.Meta.Hours, r.Meta.Periods, r.Meta.Configs)

	if len(r.Overall) == 0 {
		fmt.Fprintln(out, "No configs met the minimum sample size.")
		return
	}

	fmt.Fprintf(out, "Top %d by t-stat:\n", len(r.Overall))
	renderStatsTable(out, r.Overall)

	for _, fam := range familyOrder {
		rows := r.PerFamily[fam]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(out, "\nBest of %s:\n", fam)
		renderStatsTable(out, rows)
	}
}

func renderStatsTable(out io.Writer, rows []*domain.Stats) {
	table := tablewriter.NewWriter(out)
	table.Header("#", "Config", "N", "WR", "Mean", "T", "PF", "Total", "Stable")

	for i, s := range rows {
		stable := "no"
		if s.Stable {
			stable = "yes"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			s.ConfigName,
			fmt.Sprintf("%d", s.N),
			fmt.Sprintf("%.0f%%", s.WinRate*100),
			fmt.Sprintf("%+.4f", s.MeanPnL),
			fmt.Sprintf("%.2f", s.TStat),
			formatPF(s.ProfitFactor),
			fmt.Sprintf("%+.3f", s.TotalPnL),
			stable,
		)
	}
	table.Render()
}
