// Package exits implements the exit rules shared by backtest and live modes.
// One rule set serves both: the live session machine calls Check on every
// tick (push), the backtest calls Simulate over a full snapshot series
// (pull). Priority is fixed: take-profit, then stop-loss, then deadline.
package exits

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// Rules holds the concrete exit thresholds for one open position.
type Rules struct {
	TPDelta        float64
	SLDelta        float64
	DeadlineMinute float64
	HoldToSettle   bool
}

// FromParams resolves a config's exit parameterization against the actual
// entry price. A non-zero SLEntryFraction derives the stop-loss delta from
// the entry price (vol_spike uses 0.9, a near-total-loss stop).
func FromParams(p domain.ExitParams, entryPrice float64) Rules {
	sl := p.SLDelta
	if p.SLEntryFraction > 0 {
		sl = entryPrice * p.SLEntryFraction
	}
	return Rules{
		TPDelta:        p.TPDelta,
		SLDelta:        sl,
		DeadlineMinute: p.DeadlineMinute,
		HoldToSettle:   p.HoldToSettle,
	}
}

// Check evaluates one observation against the rules. It returns the exit
// type and the exit price of the held side, or ExitNone while the position
// stays open. TP and SL fill at their target price; deadline fills at the
// observed price. HoldToSettle does not bypass any of these checks: it only
// matters when the series runs out before a rule fires (see Simulate).
func (r Rules) Check(side domain.Side, entryPrice, priceUp, minute float64) (domain.ExitType, float64) {
	pos := side.PositionPrice(priceUp)
	if pos >= entryPrice+r.TPDelta {
		return domain.ExitTakeProfit, entryPrice + r.TPDelta
	}
	if pos <= entryPrice-r.SLDelta {
		return domain.ExitStopLoss, entryPrice - r.SLDelta
	}
	if minute >= r.DeadlineMinute {
		return domain.ExitDeadline, pos
	}
	return domain.ExitNone, 0
}
