package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

func makeTrades(pnls ...float64) []*domain.TradeRecord {
	trades := make([]*domain.TradeRecord, len(pnls))
	for i, p := range pnls {
		et := domain.ExitTakeProfit
		if p <= 0 {
			et = domain.ExitStopLoss
		}
		trades[i] = &domain.TradeRecord{
			ConfigName: "mom_m5_lb2_60%_tp0.15_sl0.05",
			Family:     domain.FamilyMomentum,
			PeriodTs:   int64(1700000100 + i*900),
			EntryPrice: 0.62,
			PnL:        p,
			ExitType:   et,
		}
	}
	return trades
}

func TestComputeBasic(t *testing.T) {
	trades := makeTrades(0.15, 0.15, -0.05, 0.15, -0.05)

	s, err := Compute("mom_m5_lb2_60%_tp0.15_sl0.05", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if s.N != 5 {
		t.Errorf("expected n=5, got %d", s.N)
	}
	if s.Wins != 3 {
		t.Errorf("expected 3 wins, got %d", s.Wins)
	}
	if math.Abs(s.WinRate-0.6) > 1e-9 {
		t.Errorf("expected win rate 0.6, got %v", s.WinRate)
	}
	if math.Abs(s.MeanPnL-0.07) > 1e-9 {
		t.Errorf("expected mean pnl 0.07, got %v", s.MeanPnL)
	}
	if math.Abs(s.ProfitFactor-4.5) > 1e-9 {
		t.Errorf("expected profit factor 4.5, got %v", s.ProfitFactor)
	}
	if math.Abs(s.TotalPnL-0.35) > 1e-9 {
		t.Errorf("expected total pnl 0.35, got %v", s.TotalPnL)
	}
	if s.ExitCounts[domain.ExitTakeProfit] != 3 || s.ExitCounts[domain.ExitStopLoss] != 2 {
		t.Errorf("unexpected exit counts: %v", s.ExitCounts)
	}
}

func TestComputePopulationStd(t *testing.T) {
	trades := makeTrades(0.10, -0.10)

	s, err := Compute("c", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// Population std of {0.1, -0.1} is 0.1 (sample std would be ~0.1414).
	if math.Abs(s.Std-0.10) > 1e-9 {
		t.Errorf("expected population std 0.10, got %v", s.Std)
	}
	// mean 0 → t-stat 0.
	if s.TStat != 0 {
		t.Errorf("expected t-stat 0 for zero mean, got %v", s.TStat)
	}
}

func TestComputeZeroStd(t *testing.T) {
	trades := makeTrades(0.05, 0.05, 0.05)

	s, err := Compute("c", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if s.Std != 0 {
		t.Fatalf("expected zero std, got %v", s.Std)
	}
	if s.TStat != 0 {
		t.Errorf("zero std must yield t-stat 0, got %v", s.TStat)
	}
	if !math.IsInf(s.ProfitFactor, 1) {
		t.Errorf("no losses must yield +Inf profit factor, got %v", s.ProfitFactor)
	}
}

func TestComputeAvgWinLoss(t *testing.T) {
	trades := makeTrades(0.10, 0.20, -0.05, 0.0)

	s, err := Compute("c", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(s.AvgWin-0.15) > 1e-9 {
		t.Errorf("expected avg win 0.15, got %v", s.AvgWin)
	}
	// Zero-pnl trades count as losses.
	if math.Abs(s.AvgLoss-(-0.025)) > 1e-9 {
		t.Errorf("expected avg loss -0.025, got %v", s.AvgLoss)
	}
}

func TestComputeSplitHalf(t *testing.T) {
	// First half positive, second half negative: unstable.
	trades := makeTrades(0.10, 0.10, -0.10, -0.10)
	s, err := Compute("c", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if s.Stable {
		t.Error("expected unstable split")
	}
	if s.FirstHalfMean <= 0 || s.SecondHalfMean >= 0 {
		t.Errorf("unexpected half means: %v / %v", s.FirstHalfMean, s.SecondHalfMean)
	}

	// Both halves positive: stable.
	trades = makeTrades(0.10, 0.05, 0.08, 0.12)
	s, err = Compute("c", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !s.Stable {
		t.Error("expected stable split")
	}

	// A single trade has an empty first half and cannot be stable.
	trades = makeTrades(0.10)
	s, err = Compute("c", domain.FamilyMomentum, trades)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if s.Stable {
		t.Error("single trade must not be stable")
	}
}

func TestComputeEmpty(t *testing.T) {
	_, err := Compute("c", domain.FamilyMomentum, nil)
	if !errors.Is(err, ErrNoTrades) {
		t.Errorf("expected ErrNoTrades, got %v", err)
	}
}

func TestRankOrdersByTStat(t *testing.T) {
	all := []*domain.Stats{
		{ConfigName: "a", N: 25, TStat: 1.2},
		{ConfigName: "b", N: 25, TStat: 3.4},
		{ConfigName: "c", N: 10, TStat: 9.9}, // under min sample
		{ConfigName: "d", N: 25, TStat: 3.4},
	}

	ranked := Rank(all, 20)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 qualifying configs, got %d", len(ranked))
	}
	if ranked[0].ConfigName != "b" || ranked[1].ConfigName != "d" || ranked[2].ConfigName != "a" {
		t.Errorf("unexpected order: %s, %s, %s",
			ranked[0].ConfigName, ranked[1].ConfigName, ranked[2].ConfigName)
	}
}

func TestTopPerFamily(t *testing.T) {
	all := []*domain.Stats{
		{ConfigName: "m1", Family: domain.FamilyMomentum, N: 20, TStat: 1.0},
		{ConfigName: "m2", Family: domain.FamilyMomentum, N: 20, TStat: 2.0},
		{ConfigName: "m3", Family: domain.FamilyMomentum, N: 20, TStat: 3.0},
		{ConfigName: "e1", Family: domain.FamilyEarlyCheap, N: 20, TStat: 0.5},
	}

	top := TopPerFamily(all, 15, 2)
	if len(top[domain.FamilyMomentum]) != 2 {
		t.Fatalf("expected 2 momentum configs, got %d", len(top[domain.FamilyMomentum]))
	}
	if top[domain.FamilyMomentum][0].ConfigName != "m3" {
		t.Errorf("expected m3 first, got %s", top[domain.FamilyMomentum][0].ConfigName)
	}
	if len(top[domain.FamilyEarlyCheap]) != 1 {
		t.Errorf("expected 1 early_cheap config, got %d", len(top[domain.FamilyEarlyCheap]))
	}
}
