package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// RenderCSV writes one row per stats entry, ranked order preserved.
func RenderCSV(rows []*domain.Stats) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	header := []string{
		"config", "family", "n", "wins", "win_rate", "mean_pnl", "std",
		"t_stat", "profit_factor", "avg_entry", "avg_win", "avg_loss",
		"total_pnl", "first_half_mean", "second_half_mean", "stable",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range rows {
		rec := []string{
			s.ConfigName,
			string(s.Family),
			strconv.Itoa(s.N),
			strconv.Itoa(s.Wins),
			formatFloat(s.WinRate),
			formatFloat(s.MeanPnL),
			formatFloat(s.Std),
			formatFloat(s.TStat),
			formatPF(s.ProfitFactor),
			formatFloat(s.AvgEntry),
			formatFloat(s.AvgWin),
			formatFloat(s.AvgLoss),
			formatFloat(s.TotalPnL),
			formatFloat(s.FirstHalfMean),
			formatFloat(s.SecondHalfMean),
			strconv.FormatBool(s.Stable),
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("write csv row %s: %w", s.ConfigName, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return b.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
