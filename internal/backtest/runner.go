// Package backtest fans a strategy grid out over historical periods. Each
// config replays every period's snapshot series prefix by prefix through the
// same Evaluate call the live session machine uses, so backtest and live
// entries can never disagree.
package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/exits"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/idhash"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/stats"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/strategy"
)

// periodEndMinute is where a trading period closes and settles.
const periodEndMinute = 15.0

// PeriodData bundles a resolved period with its snapshot series.
type PeriodData struct {
	Period *domain.Period
	Series *domain.PriceSeries
}

// Result is the outcome of one config across all periods. Stats is nil when
// the config never traded.
type Result struct {
	Config domain.StrategyConfig
	Trades []*domain.TradeRecord
	Stats  *domain.Stats
}

// Runner evaluates configs concurrently. Configs are independent of each
// other, so the fan-out is per config; trades within a config stay
// chronological.
type Runner struct {
	workers int
	now     func() time.Time
}

// NewRunner creates a Runner. workers <= 0 selects a CPU-based default.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	return &Runner{workers: workers, now: time.Now}
}

// WithClock overrides the record timestamp source.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run evaluates every config over every period. Periods are processed in
// chronological order regardless of input order. A period without usable
// data is skipped; an invalid config aborts the run.
func (r *Runner) Run(ctx context.Context, configs []domain.StrategyConfig, periods []*PeriodData) ([]*Result, error) {
	sorted := make([]*PeriodData, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period.StartTs < sorted[j].Period.StartTs
	})

	// Validate up front so workers never see a bad config.
	evaluators := make(map[string]strategy.Evaluator, len(configs))
	for _, cfg := range configs {
		ev, err := strategy.FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build evaluator %s: %w", cfg.Name, err)
		}
		evaluators[cfg.Name] = ev
	}

	workCh := make(chan domain.StrategyConfig)
	resultCh := make(chan *Result, len(configs))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cfg := range workCh {
				resultCh <- r.runConfig(cfg, evaluators[cfg.Name], sorted)
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, cfg := range configs {
			select {
			case workCh <- cfg:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []*Result
	for res := range resultCh {
		results = append(results, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Config.Name < results[j].Config.Name
	})
	return results, nil
}

func (r *Runner) runConfig(cfg domain.StrategyConfig, ev strategy.Evaluator, periods []*PeriodData) *Result {
	res := &Result{Config: cfg}
	for _, pd := range periods {
		if tr := r.runPeriod(cfg, ev, pd); tr != nil {
			res.Trades = append(res.Trades, tr)
		}
	}
	if len(res.Trades) > 0 {
		// Compute cannot fail on a non-empty slice.
		res.Stats, _ = stats.Compute(cfg.Name, cfg.Family, res.Trades)
	}
	return res
}

// runPeriod replays one period through the evaluator and, on a signal,
// simulates the exit against the full series. At most one trade per period.
func (r *Runner) runPeriod(cfg domain.StrategyConfig, ev strategy.Evaluator, pd *PeriodData) *domain.TradeRecord {
	if pd.Series == nil || pd.Series.Len() == 0 {
		return nil
	}

	var sig *domain.TradeSignal
	for i, pt := range pd.Series.Points {
		prefix := &domain.PriceSeries{PeriodTs: pd.Series.PeriodTs, Points: pd.Series.Points[:i+1]}
		if sig = ev.Evaluate(prefix, pt.Minute); sig != nil {
			break
		}
	}
	if sig == nil {
		// Catch-up pass for series that end before the evaluator's gating
		// minute: evaluators only look at points inside their window, so
		// re-evaluating at the period end yields the same signal a later
		// tick would have.
		sig = ev.Evaluate(pd.Series, periodEndMinute)
	}
	if sig == nil {
		return nil
	}

	rules := exits.FromParams(cfg.Exit, sig.EntryPrice)
	out := exits.Simulate(pd.Series, sig, rules, pd.Period.Outcome)

	outcome := domain.TradeLost
	if out.PnL > 0 {
		outcome = domain.TradeWon
	}

	return &domain.TradeRecord{
		TradeID:     idhash.TradeID(cfg.Name, sig.PeriodTs, sig.Side),
		ConfigName:  cfg.Name,
		Family:      cfg.Family,
		PeriodTs:    sig.PeriodTs,
		Side:        sig.Side,
		EntryPrice:  sig.EntryPrice,
		EntryMinute: sig.EntryMinute,
		Status:      domain.StatusSimulated,
		Outcome:     outcome,
		ExitType:    out.Type,
		ExitPrice:   out.Price,
		ExitMinute:  out.Minute,
		PnL:         out.PnL,
		CreatedAt:   r.now().UTC(),
	}
}
