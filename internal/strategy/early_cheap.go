package strategy

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// defaultMinEntry is the cheapest entry accepted when a config leaves the
// floor unset; anything below is noise priced for a near-certain loser.
const defaultMinEntry = 0.10

// EarlyCheap buys the cheaper side early in the period when its price sits
// inside an acceptable band, betting that early consensus is underpriced.
type EarlyCheap struct {
	baseEvaluator
	windowEnd float64
	minEntry  float64
	maxEntry  float64
}

var _ Evaluator = (*EarlyCheap)(nil)

func (e *EarlyCheap) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	if nowMinute < e.windowEnd {
		return nil
	}

	pts := windowPoints(series, 0, e.windowEnd)
	if len(pts) < 2 {
		return nil
	}
	last := pts[len(pts)-1]
	up := last.PriceUp
	dn := 1 - up

	if up < dn && up >= e.minEntry && up <= e.maxEntry {
		return e.signal(series, domain.SideUp, up, last.Minute)
	}
	if dn <= up && dn >= e.minEntry && dn <= e.maxEntry {
		return e.signal(series, domain.SideDown, dn, last.Minute)
	}
	return nil
}
