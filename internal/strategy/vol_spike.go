package strategy

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// VolSpike buys the cheap side after an unusually wide early price range,
// betting on continued swings. Its stop-loss is parameterized as a fraction
// of the entry price (90%) rather than a flat delta, so the position rides
// volatility nearly to zero; some grid variants settle at the period outcome
// when the data runs out instead of liquidating at the last observed price.
type VolSpike struct {
	baseEvaluator
	entryWindow float64
	maxEntry    float64
	minRange    float64
}

var _ Evaluator = (*VolSpike)(nil)

func (v *VolSpike) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	if nowMinute < v.entryWindow {
		return nil
	}

	pts := windowPoints(series, 0, v.entryWindow)
	if len(pts) < 3 {
		return nil
	}
	lo, hi, ok := observedRange(pts)
	if !ok || hi-lo < v.minRange {
		return nil
	}

	last := pts[len(pts)-1]
	up := last.PriceUp
	dn := 1 - up

	if up <= v.maxEntry && up <= dn {
		return v.signal(series, domain.SideUp, up, last.Minute)
	}
	if dn <= v.maxEntry && dn < up {
		return v.signal(series, domain.SideDown, dn, last.Minute)
	}
	return nil
}
