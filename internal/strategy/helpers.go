package strategy

import (
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/lookup"
)

func windowPoints(series *domain.PriceSeries, from, to float64) []*domain.PriceSnapshot {
	return lookup.Window(series.Points, from, to)
}

func observedRange(pts []*domain.PriceSnapshot) (lo, hi float64, ok bool) {
	lo, hi, err := lookup.PriceRange(pts)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
