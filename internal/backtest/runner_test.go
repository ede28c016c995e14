package backtest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

func fp(v float64) *float64 { return &v }

func momentumConfig() domain.StrategyConfig {
	return domain.StrategyConfig{
		Name:          "mom_m5_lb2_60%_tp0.15_sl0.05",
		Family:        domain.FamilyMomentum,
		EntryMinute:   fp(5),
		LookbackDelta: fp(2),
		Threshold:     fp(0.60),
		Exit:          domain.ExitParams{TPDelta: 0.15, SLDelta: 0.05, DeadlineMinute: 14.0},
	}
}

func makePeriod(startTs int64, outcome domain.PeriodOutcome, pairs ...float64) *PeriodData {
	s := &domain.PriceSeries{PeriodTs: startTs}
	for i := 0; i < len(pairs); i += 2 {
		s.Points = append(s.Points, &domain.PriceSnapshot{Minute: pairs[i], PriceUp: pairs[i+1]})
	}
	return &PeriodData{
		Period: &domain.Period{Coin: "btc", StartTs: startTs, EndTs: startTs + 900, Outcome: outcome},
		Series: s,
	}
}

func TestRunSingleTradePerPeriod(t *testing.T) {
	// Momentum fires at minute 5 and the price keeps rising past TP; later
	// snapshots would re-qualify, but only one trade may open.
	pd := makePeriod(1700000100, domain.OutcomeUp,
		3.0, 0.55, 5.0, 0.62, 6.0, 0.66, 8.0, 0.78, 10.0, 0.80)

	runner := NewRunner(2).WithClock(func() time.Time { return time.Unix(1700001000, 0) })
	results, err := runner.Run(context.Background(), []domain.StrategyConfig{momentumConfig()}, []*PeriodData{pd})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	res := results[0]
	if len(res.Trades) != 1 {
		t.Fatalf("expected exactly 1 trade, got %d", len(res.Trades))
	}

	tr := res.Trades[0]
	if tr.Side != domain.SideUp || tr.EntryPrice != 0.62 {
		t.Errorf("expected Up entry at 0.62, got %s at %v", tr.Side, tr.EntryPrice)
	}
	if tr.ExitType != domain.ExitTakeProfit {
		t.Errorf("expected take_profit exit, got %s", tr.ExitType)
	}
	if math.Abs(tr.PnL-0.15) > 1e-9 {
		t.Errorf("expected pnl +0.15, got %v", tr.PnL)
	}
	if tr.Outcome != domain.TradeWon {
		t.Errorf("expected won, got %s", tr.Outcome)
	}
	if tr.Status != domain.StatusSimulated {
		t.Errorf("expected simulated status, got %s", tr.Status)
	}
	if tr.TradeID == "" {
		t.Error("expected a trade id")
	}
}

func TestRunSkipsEmptyPeriods(t *testing.T) {
	empty := makePeriod(1700000100, domain.OutcomeUp)
	traded := makePeriod(1700001000, domain.OutcomeUp,
		3.0, 0.55, 5.0, 0.62, 8.0, 0.78)

	runner := NewRunner(1)
	results, err := runner.Run(context.Background(), []domain.StrategyConfig{momentumConfig()}, []*PeriodData{empty, traded})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results[0].Trades) != 1 {
		t.Errorf("empty period should be skipped, got %d trades", len(results[0].Trades))
	}
}

func TestRunChronologicalTrades(t *testing.T) {
	// Periods supplied out of order must still produce chronological trades,
	// or split-half stability is meaningless.
	later := makePeriod(1700001000, domain.OutcomeUp, 3.0, 0.55, 5.0, 0.62, 8.0, 0.78)
	earlier := makePeriod(1700000100, domain.OutcomeUp, 3.0, 0.55, 5.0, 0.63, 8.0, 0.80)

	runner := NewRunner(4)
	results, err := runner.Run(context.Background(), []domain.StrategyConfig{momentumConfig()}, []*PeriodData{later, earlier})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	trades := results[0].Trades
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].PeriodTs != 1700000100 || trades[1].PeriodTs != 1700001000 {
		t.Errorf("trades out of order: %d, %d", trades[0].PeriodTs, trades[1].PeriodTs)
	}
}

func TestRunDeterministic(t *testing.T) {
	periods := []*PeriodData{
		makePeriod(1700000100, domain.OutcomeUp, 3.0, 0.55, 5.0, 0.62, 8.0, 0.78),
		makePeriod(1700001000, domain.OutcomeDown, 3.0, 0.48, 5.0, 0.35, 8.0, 0.20),
	}
	configs := []domain.StrategyConfig{momentumConfig()}

	first, err := NewRunner(4).Run(context.Background(), configs, periods)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := NewRunner(4).Run(context.Background(), configs, periods)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(first[0].Trades) != len(second[0].Trades) {
		t.Fatalf("trade counts differ across runs")
	}
	for i := range first[0].Trades {
		if first[0].Trades[i].TradeID != second[0].Trades[i].TradeID {
			t.Errorf("trade %d differs across runs", i)
		}
	}
}

func TestRunSignalsWhenSeriesEndsBeforeWindow(t *testing.T) {
	// Snapshots stop at minute 2.5, before the window-end gate at 3. The
	// end-of-period pass must still pick up the cheap side; without it a
	// sparse period could never trade.
	cfg := domain.StrategyConfig{
		Name:      "early_w3_40%_tp0.10_sl0.05",
		Family:    domain.FamilyEarlyCheap,
		WindowEnd: fp(3),
		MaxEntry:  fp(0.40),
		Exit:      domain.ExitParams{TPDelta: 0.10, SLDelta: 0.05, DeadlineMinute: 14.0},
	}
	pd := makePeriod(1700000100, domain.OutcomeUp, 1.0, 0.35, 2.5, 0.30)

	results, err := NewRunner(1).Run(context.Background(), []domain.StrategyConfig{cfg}, []*PeriodData{pd})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results[0].Trades) != 1 {
		t.Fatalf("expected 1 trade from the truncated series, got %d", len(results[0].Trades))
	}

	tr := results[0].Trades[0]
	if tr.Side != domain.SideUp || tr.EntryPrice != 0.30 || tr.EntryMinute != 2.5 {
		t.Errorf("expected Up entry at 0.30 / minute 2.5, got %s at %v / %v", tr.Side, tr.EntryPrice, tr.EntryMinute)
	}
	// No snapshots survive the entry dead zone, so the trade closes flat.
	if tr.ExitType != domain.ExitNoData || tr.PnL != 0 {
		t.Errorf("expected flat no_data exit, got %s with pnl %v", tr.ExitType, tr.PnL)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	bad := domain.StrategyConfig{Name: "bad", Family: domain.FamilyMomentum}
	_, err := NewRunner(1).Run(context.Background(), []domain.StrategyConfig{bad}, nil)
	if err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestRunComputesStats(t *testing.T) {
	periods := []*PeriodData{
		makePeriod(1700000100, domain.OutcomeUp, 3.0, 0.55, 5.0, 0.62, 8.0, 0.78),
	}
	results, err := NewRunner(1).Run(context.Background(), []domain.StrategyConfig{momentumConfig()}, periods)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if results[0].Stats == nil || results[0].Stats.N != 1 {
		t.Errorf("expected stats over 1 trade, got %+v", results[0].Stats)
	}
}
