// Package strategy implements the entry evaluators. One Evaluator interface
// serves both modes: the live session machine calls Evaluate on every tick
// with its growing snapshot buffer, the backtest replays a period's series
// prefix by prefix through the same call. Evaluators are pure; the wall
// clock enters only as the nowMinute argument. Missing data is nil, never an
// error.
package strategy

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// priceTolerance is the maximum distance, in minutes, between a requested
// minute and the snapshot accepted for it.
const priceTolerance = 1.0

// Evaluator decides whether the observed series justifies an entry at the
// current minute. A nil result means no signal; evaluators never fire more
// than once per period because their observation windows freeze once the
// gating minute has passed (callers additionally enforce single-fire).
type Evaluator interface {
	Name() string
	Family() domain.Family
	Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal
}

func (s baseEvaluator) Name() string          { return s.name }
func (s baseEvaluator) Family() domain.Family { return s.family }

type baseEvaluator struct {
	name   string
	family domain.Family
}

func (s baseEvaluator) signal(series *domain.PriceSeries, side domain.Side, price, minute float64) *domain.TradeSignal {
	return &domain.TradeSignal{
		ConfigName:  s.name,
		Family:      s.family,
		Side:        side,
		EntryPrice:  price,
		EntryMinute: minute,
		PeriodTs:    series.PeriodTs,
	}
}
