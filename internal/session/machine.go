// Package session drives one strategy against the live market. The machine
// is ticked by the caller; every tick it folds the latest quote into the
// period buffer, asks the evaluator for an entry and checks the exit rules
// on the open position. Per-tick errors are logged and swallowed so a flaky
// feed never kills the session.
package session

import (
	"log"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/execution"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/exits"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/observability"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/strategy"
)

// Phase is the machine's position in the period lifecycle.
type Phase int

const (
	// PhaseIdle means no period is being tracked yet.
	PhaseIdle Phase = iota
	// PhaseCollecting means snapshots are being buffered and the evaluator
	// runs on every accepted snapshot.
	PhaseCollecting
	// PhaseSignaled means an entry signal fired and the order is being
	// placed. Transient: the same tick moves on to open or exited.
	PhaseSignaled
	// PhasePositionOpen means a position is held and exit rules run on
	// every tick.
	PhasePositionOpen
	// PhaseExited means the period's trade is done; the machine waits for
	// the next period.
	PhaseExited
)

// Quote is one observation handed to Tick. PeriodTs identifies the current
// period; HasPrice is false while no book has been seen yet.
type Quote struct {
	PeriodTs int64
	PriceUp  float64
	HasPrice bool
}

// Limits bound snapshot collection. Prices at or beyond the sanity bounds
// are near-settled books and are not collected.
type Limits struct {
	CollectFrom float64
	CollectTo   float64
	MinSpacing  float64
	MinPrice    float64
	MaxPrice    float64
}

// DefaultLimits matches the evaluators' expectations: collect from minute
// 2.5 to 14.0, at most one snapshot per 0.4 minutes, prices in (0.02, 0.98).
func DefaultLimits() Limits {
	return Limits{
		CollectFrom: 2.5,
		CollectTo:   14.0,
		MinSpacing:  0.4,
		MinPrice:    0.02,
		MaxPrice:    0.98,
	}
}

// Machine runs one evaluator and one executor over consecutive periods.
// It is not safe for concurrent use; drive it from a single tick loop.
type Machine struct {
	evaluator strategy.Evaluator
	exitSpec  domain.ExitParams
	exec      execution.Executor
	limits    Limits
	logger    *log.Logger
	metrics   *observability.Metrics

	phase       Phase
	periodTs    int64
	series      *domain.PriceSeries
	signalFired bool
	rules       exits.Rules
	side        domain.Side
	entryPrice  float64
}

// NewMachine wires an evaluator, its exit parameterization and an executor.
func NewMachine(ev strategy.Evaluator, exitSpec domain.ExitParams, exec execution.Executor, logger *log.Logger) *Machine {
	return &Machine{
		evaluator: ev,
		exitSpec:  exitSpec,
		exec:      exec,
		limits:    DefaultLimits(),
		logger:    logger,
		phase:     PhaseIdle,
	}
}

// WithLimits overrides the collection limits.
func (m *Machine) WithLimits(l Limits) *Machine {
	m.limits = l
	return m
}

// WithMetrics attaches session metrics.
func (m *Machine) WithMetrics(mx *observability.Metrics) *Machine {
	m.metrics = mx
	return m
}

// Phase returns the machine's current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Tick processes one quote observation taken at now.
func (m *Machine) Tick(now time.Time, q Quote) {
	if m.metrics != nil {
		m.metrics.Ticks.Inc()
	}
	if q.PeriodTs == 0 {
		return
	}

	if q.PeriodTs != m.periodTs {
		m.rollPeriod(q)
	}

	if !q.HasPrice {
		return
	}
	minute := float64(now.UnixMilli()-q.PeriodTs*1000) / 60000.0

	switch m.phase {
	case PhaseCollecting:
		m.collect(minute, q.PriceUp)
	case PhasePositionOpen:
		m.checkExit(minute, q.PriceUp)
	}
}

// rollPeriod closes out the previous period and resets for the new one. A
// position still open at the boundary is force-closed at the last quote, or
// cancelled when no price is available.
func (m *Machine) rollPeriod(q Quote) {
	if m.phase == PhasePositionOpen {
		if q.HasPrice {
			m.closePosition(domain.ExitDeadline, m.side.PositionPrice(q.PriceUp), 15.0)
		} else {
			if trade, err := m.exec.Cancel(); err != nil {
				m.logger.Printf("cancel at period boundary: %v", err)
			} else {
				m.logger.Printf("trade %s cancelled at period boundary, no quote", trade.TradeID)
				m.recordClose(trade)
			}
			m.phase = PhaseExited
		}
	}

	m.periodTs = q.PeriodTs
	m.series = &domain.PriceSeries{PeriodTs: q.PeriodTs}
	m.signalFired = false
	m.phase = PhaseCollecting
	m.logger.Printf("period %d started", q.PeriodTs)
}

func (m *Machine) collect(minute, priceUp float64) {
	if minute < m.limits.CollectFrom || minute > m.limits.CollectTo {
		return
	}
	if priceUp <= m.limits.MinPrice || priceUp >= m.limits.MaxPrice {
		return
	}
	if last := m.series.Last(); last != nil && minute-last.Minute < m.limits.MinSpacing {
		return
	}

	m.series.Points = append(m.series.Points, &domain.PriceSnapshot{
		Minute:     minute,
		PriceUp:    priceUp,
		ObservedAt: time.Now().UTC(),
	})
	if m.metrics != nil {
		m.metrics.SnapshotsCollected.Inc()
	}

	if m.signalFired {
		return
	}
	sig := m.evaluator.Evaluate(m.series, minute)
	if sig == nil {
		return
	}
	m.signalFired = true
	m.phase = PhaseSignaled
	m.openPosition(sig)
}

func (m *Machine) openPosition(sig *domain.TradeSignal) {
	if m.metrics != nil {
		m.metrics.Signals.WithLabelValues(string(sig.Family)).Inc()
	}
	m.logger.Printf("signal %s side=%s entry=%.4f minute=%.2f", sig.ConfigName, sig.Side, sig.EntryPrice, sig.EntryMinute)

	trade, err := m.exec.Execute(sig)
	if err != nil {
		m.logger.Printf("execute failed: %v", err)
		m.phase = PhaseExited
		return
	}

	m.side = sig.Side
	m.entryPrice = sig.EntryPrice
	m.rules = exits.FromParams(m.exitSpec, sig.EntryPrice)
	m.phase = PhasePositionOpen
	if m.metrics != nil {
		m.metrics.TradesOpened.Inc()
	}
	m.logger.Printf("position open: trade %s", trade.TradeID)
}

func (m *Machine) checkExit(minute, priceUp float64) {
	exitType, price := m.rules.Check(m.side, m.entryPrice, priceUp, minute)
	if exitType == domain.ExitNone {
		return
	}
	m.closePosition(exitType, price, minute)
}

func (m *Machine) closePosition(exitType domain.ExitType, price, minute float64) {
	trade, err := m.exec.ExitPosition(exitType, price, minute)
	if err != nil {
		m.logger.Printf("exit position: %v", err)
		m.phase = PhaseExited
		return
	}
	m.logger.Printf("position closed: trade %s exit=%s price=%.4f pnl=%.4f", trade.TradeID, exitType, price, trade.PnL)
	m.recordClose(trade)
	m.phase = PhaseExited
}

// OnOutcome settles a position that was held to the end of periodTs. Other
// periods' outcomes are ignored.
func (m *Machine) OnOutcome(periodTs int64, outcome domain.PeriodOutcome) {
	if periodTs != m.periodTs || m.phase != PhasePositionOpen {
		return
	}
	trade, err := m.exec.Settle(outcome)
	if err != nil {
		m.logger.Printf("settle: %v", err)
		m.phase = PhaseExited
		return
	}
	m.logger.Printf("position settled: trade %s outcome=%s pnl=%.4f", trade.TradeID, outcome, trade.PnL)
	m.recordClose(trade)
	m.phase = PhaseExited
}

func (m *Machine) recordClose(trade *domain.TradeRecord) {
	if m.metrics == nil {
		return
	}
	m.metrics.TradesClosed.WithLabelValues(string(trade.ExitType)).Inc()
	m.metrics.TotalPnL.Set(m.exec.Book().TotalPnL())
}
