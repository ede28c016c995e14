package stats

import (
	"sort"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// Default qualification thresholds: a config needs a minimum sample before
// its t-stat means anything. The per-family leaderboard uses the looser
// bound.
const (
	DefaultMinTrades       = 20
	DefaultFamilyMinTrades = 15
)

// Rank filters to configs with at least minTrades closed trades and sorts
// by descending t-stat. Ties break on config name so output is stable.
func Rank(all []*domain.Stats, minTrades int) []*domain.Stats {
	var out []*domain.Stats
	for _, s := range all {
		if s.N >= minTrades {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TStat != out[j].TStat {
			return out[i].TStat > out[j].TStat
		}
		return out[i].ConfigName < out[j].ConfigName
	})
	return out
}

// TopPerFamily returns the top n qualifying configs of each family.
func TopPerFamily(all []*domain.Stats, minTrades, n int) map[domain.Family][]*domain.Stats {
	byFamily := make(map[domain.Family][]*domain.Stats)
	for _, s := range Rank(all, minTrades) {
		if len(byFamily[s.Family]) < n {
			byFamily[s.Family] = append(byFamily[s.Family], s)
		}
	}
	return byFamily
}
