package strategy

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// RangeBound detects an oscillating early market: the observed range must be
// wide enough to trade but narrow enough to call sideways, and the price
// must have crossed the range midpoint at least once. It then buys the side
// sitting closer to its own range bottom, but never above 0.50.
type RangeBound struct {
	baseEvaluator
	obsEnd   float64
	minRange float64
	maxRange float64
}

var _ Evaluator = (*RangeBound)(nil)

func (r *RangeBound) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	if nowMinute < r.obsEnd {
		return nil
	}

	pts := windowPoints(series, 0, r.obsEnd)
	if len(pts) < 4 {
		return nil
	}
	lo, hi, ok := observedRange(pts)
	if !ok {
		return nil
	}
	rng := hi - lo
	if rng < r.minRange || rng > r.maxRange {
		return nil
	}

	mid := (lo + hi) / 2
	crosses := 0
	for i := 1; i < len(pts); i++ {
		if (pts[i-1].PriceUp < mid) != (pts[i].PriceUp < mid) {
			crosses++
		}
	}
	if crosses < 1 {
		return nil
	}

	last := pts[len(pts)-1]
	up := last.PriceUp
	dn := 1 - up
	upFromBottom := up - lo
	dnFromBottom := dn - (1 - hi)

	if upFromBottom < dnFromBottom && up < 0.50 {
		return r.signal(series, domain.SideUp, up, last.Minute)
	}
	if dn < 0.50 {
		return r.signal(series, domain.SideDown, dn, last.Minute)
	}
	return nil
}
