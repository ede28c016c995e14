package strategy

import (
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/lookup"
)

// reversionFloor rejects fade entries priced below 0.05; the payoff is no
// longer worth the spread there.
const reversionFloor = 0.05

// MeanReversion fades a large early move: when the Up price has moved at
// least minMove over the lookback ending at obsEnd, buy the opposite side
// if it is still cheap enough.
type MeanReversion struct {
	baseEvaluator
	obsEnd   float64
	lookback float64
	minMove  float64
	maxEntry float64
}

var _ Evaluator = (*MeanReversion)(nil)

func (m *MeanReversion) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	if nowMinute < m.obsEnd {
		return nil
	}

	pNow, err := lookup.PriceAt(series.Points, m.obsEnd, priceTolerance)
	if err != nil {
		return nil
	}
	pBefore, err := lookup.PriceAt(series.Points, m.obsEnd-m.lookback, priceTolerance)
	if err != nil {
		return nil
	}

	move := pNow - pBefore
	switch {
	case move >= m.minMove:
		dn := 1 - pNow
		if dn >= reversionFloor && dn <= m.maxEntry {
			return m.signal(series, domain.SideDown, dn, m.obsEnd)
		}
	case move <= -m.minMove:
		if pNow >= reversionFloor && pNow <= m.maxEntry {
			return m.signal(series, domain.SideUp, pNow, m.obsEnd)
		}
	}
	return nil
}
