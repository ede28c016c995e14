package exits

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// entryDeadZone skips observations within 0.3 min of entry so a position
// cannot exit on the same tick (or feed jitter around it) that opened it.
const entryDeadZone = 0.3

// periodEndMinute bounds the walk; snapshots past the period are ignored.
const periodEndMinute = 15.0

// Simulate replays a full period series through the rules and returns the
// deterministic exit outcome. The walk visits snapshots strictly after the
// entry dead zone in chronological order; the first rule hit wins. If the
// series is exhausted: hold-to-settlement configs settle at the period
// outcome when resolved; otherwise the last observed post-entry price acts
// as a liquidation proxy (end_of_data); with no post-entry data at all the
// trade is flat (no_data).
func Simulate(series *domain.PriceSeries, sig *domain.TradeSignal, r Rules, outcome domain.PeriodOutcome) domain.ExitOutcome {
	var lastSeen *domain.PriceSnapshot
	for _, pt := range series.Points {
		if pt.Minute <= sig.EntryMinute+entryDeadZone {
			continue
		}
		if pt.Minute > periodEndMinute {
			break
		}
		lastSeen = pt

		et, price := r.Check(sig.Side, sig.EntryPrice, pt.PriceUp, pt.Minute)
		switch et {
		case domain.ExitTakeProfit:
			return domain.ExitOutcome{Type: et, Price: price, Minute: pt.Minute, PnL: r.TPDelta}
		case domain.ExitStopLoss:
			return domain.ExitOutcome{Type: et, Price: price, Minute: pt.Minute, PnL: -r.SLDelta}
		case domain.ExitDeadline:
			return domain.ExitOutcome{Type: et, Price: price, Minute: pt.Minute, PnL: price - sig.EntryPrice}
		}
	}

	if r.HoldToSettle {
		if sp, ok := outcome.SettlementPrice(); ok {
			settle := sig.Side.PositionPrice(sp)
			return domain.ExitOutcome{
				Type:   domain.ExitSettlement,
				Price:  settle,
				Minute: periodEndMinute,
				PnL:    settle - sig.EntryPrice,
			}
		}
	}

	if lastSeen != nil {
		pos := sig.Side.PositionPrice(lastSeen.PriceUp)
		return domain.ExitOutcome{
			Type:   domain.ExitEndOfData,
			Price:  pos,
			Minute: lastSeen.Minute,
			PnL:    pos - sig.EntryPrice,
		}
	}

	return domain.ExitOutcome{
		Type:   domain.ExitNoData,
		Price:  sig.EntryPrice,
		Minute: sig.EntryMinute,
		PnL:    0,
	}
}
