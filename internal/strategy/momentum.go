package strategy

import (
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/lookup"
)

// momentumSlack extends the signal window past the entry minute so a live
// session ticking every couple of seconds cannot miss the check entirely.
const momentumSlack = 1.0

// Momentum fires a one-shot directional check at a fixed entry minute: if
// the price at that minute clears a conviction threshold and has risen since
// entryMinute-lookback, buy the leading side.
type Momentum struct {
	baseEvaluator
	entryMinute float64
	lookback    float64
	threshold   float64
}

var _ Evaluator = (*Momentum)(nil)

func (m *Momentum) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	if nowMinute < m.entryMinute || nowMinute > m.entryMinute+momentumSlack {
		return nil
	}

	pNow, err := lookup.PriceAt(series.Points, m.entryMinute, priceTolerance)
	if err != nil {
		return nil
	}
	pBefore, err := lookup.PriceAt(series.Points, m.entryMinute-m.lookback, priceTolerance)
	if err != nil {
		return nil
	}

	if pNow >= m.threshold && pNow > pBefore {
		return m.signal(series, domain.SideUp, pNow, m.entryMinute)
	}
	if (1-pNow) >= m.threshold && pNow < pBefore {
		return m.signal(series, domain.SideDown, 1-pNow, m.entryMinute)
	}
	return nil
}
