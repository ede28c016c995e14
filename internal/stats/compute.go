// Package stats aggregates closed trades into per-config performance
// statistics and ranks qualifying configs.
package stats

import (
	"errors"
	"math"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// ErrNoTrades indicates an empty sample.
var ErrNoTrades = errors.New("no trades to aggregate")

// Compute aggregates a config's closed trades. Trades must be in
// chronological order; the split-half stability check depends on it.
func Compute(configName string, family domain.Family, trades []*domain.TradeRecord) (*domain.Stats, error) {
	if len(trades) == 0 {
		return nil, ErrNoTrades
	}

	pnls := make([]float64, len(trades))
	entries := make([]float64, len(trades))
	for i, tr := range trades {
		pnls[i] = tr.PnL
		entries[i] = tr.EntryPrice
	}

	n := len(trades)
	wins := 0
	var grossWin, grossLoss, winSum, lossSum float64
	exitCounts := make(map[domain.ExitType]int)
	for _, tr := range trades {
		exitCounts[tr.ExitType]++
		if tr.PnL > 0 {
			wins++
			grossWin += tr.PnL
			winSum += tr.PnL
		} else {
			grossLoss += -tr.PnL
			lossSum += tr.PnL
		}
	}

	mean := computeMean(pnls)
	std := computeStd(pnls, mean)

	tstat := 0.0
	if std > 0 {
		tstat = mean / (std / math.Sqrt(float64(n)))
	}

	pf := math.Inf(1)
	if grossLoss > 0 {
		pf = grossWin / grossLoss
	}

	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	losses := n - wins
	avgLoss := 0.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}

	mid := n / 2
	firstHalf := computeMean(pnls[:mid])
	secondHalf := computeMean(pnls[mid:])

	return &domain.Stats{
		ConfigName:     configName,
		Family:         family,
		N:              n,
		Wins:           wins,
		WinRate:        float64(wins) / float64(n),
		MeanPnL:        mean,
		Std:            std,
		TStat:          tstat,
		ProfitFactor:   pf,
		AvgEntry:       computeMean(entries),
		AvgWin:         avgWin,
		AvgLoss:        avgLoss,
		TotalPnL:       grossWin - grossLoss,
		ExitCounts:     exitCounts,
		FirstHalfMean:  firstHalf,
		SecondHalfMean: secondHalf,
		Stable:         mid > 0 && firstHalf > 0 && secondHalf > 0,
	}, nil
}

func computeMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// computeStd is the population standard deviation.
func computeStd(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
