package session

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/execution"
)

const testPeriodTs int64 = 1700000100

func at(periodTs int64, minute float64) time.Time {
	return time.Unix(periodTs, 0).Add(time.Duration(minute * float64(time.Minute)))
}

func quote(priceUp float64) Quote {
	return Quote{PeriodTs: testPeriodTs, PriceUp: priceUp, HasPrice: true}
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubEvaluator fires as soon as the last collected price reaches trigger.
type stubEvaluator struct {
	trigger   float64
	evals     int
	lastSeen  int
	seriesLen []int
}

func (s *stubEvaluator) Name() string          { return "stub" }
func (s *stubEvaluator) Family() domain.Family { return domain.FamilyMomentum }

func (s *stubEvaluator) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	s.evals++
	s.lastSeen = series.Len()
	s.seriesLen = append(s.seriesLen, series.Len())
	last := series.Last()
	if last == nil || last.PriceUp < s.trigger {
		return nil
	}
	return &domain.TradeSignal{
		ConfigName:  "stub",
		Family:      domain.FamilyMomentum,
		Side:        domain.SideUp,
		EntryPrice:  last.PriceUp,
		EntryMinute: nowMinute,
		PeriodTs:    series.PeriodTs,
	}
}

func exitParams() domain.ExitParams {
	return domain.ExitParams{TPDelta: 0.15, SLDelta: 0.05, DeadlineMinute: 14}
}

func TestMachine_FullLifecycle(t *testing.T) {
	ev := &stubEvaluator{trigger: 0.60}
	exec := execution.NewPaperExecutor(100)
	m := NewMachine(ev, exitParams(), exec, discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))
	assert.Equal(t, PhaseCollecting, m.Phase())

	m.Tick(at(testPeriodTs, 5.0), quote(0.62))
	assert.Equal(t, PhasePositionOpen, m.Phase())

	open := exec.Book().Open()
	require.NotNil(t, open)
	assert.InDelta(t, 0.62, open.EntryPrice, 1e-9)

	// Below take-profit, position stays open.
	m.Tick(at(testPeriodTs, 6.0), quote(0.70))
	assert.Equal(t, PhasePositionOpen, m.Phase())

	m.Tick(at(testPeriodTs, 8.0), quote(0.78))
	assert.Equal(t, PhaseExited, m.Phase())

	trades := exec.Book().Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, domain.ExitTakeProfit, trades[0].ExitType)
	assert.InDelta(t, 0.77, trades[0].ExitPrice, 1e-9)
	assert.Equal(t, domain.TradeWon, trades[0].Outcome)
}

func TestMachine_SnapshotSpacingAndSanity(t *testing.T) {
	ev := &stubEvaluator{trigger: 2.0} // never fires
	m := NewMachine(ev, exitParams(), execution.NewPaperExecutor(100), discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))  // accepted
	m.Tick(at(testPeriodTs, 3.2), quote(0.56))  // too close to previous
	m.Tick(at(testPeriodTs, 3.6), quote(0.99))  // beyond sanity bound
	m.Tick(at(testPeriodTs, 3.6), quote(0.57))  // accepted
	m.Tick(at(testPeriodTs, 1.0), quote(0.58))  // before collection window
	m.Tick(at(testPeriodTs, 14.5), quote(0.58)) // after collection window

	assert.Equal(t, 2, ev.lastSeen)
}

func TestMachine_EvaluatorFiresOnce(t *testing.T) {
	ev := &stubEvaluator{trigger: 0.0} // fires on the first snapshot
	exec := execution.NewPaperExecutor(100)
	m := NewMachine(ev, exitParams(), exec, discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))
	require.Equal(t, PhasePositionOpen, m.Phase())
	evalsAfterSignal := ev.evals

	m.Tick(at(testPeriodTs, 4.0), quote(0.56))
	m.Tick(at(testPeriodTs, 5.0), quote(0.57))

	assert.Equal(t, evalsAfterSignal, ev.evals)
	require.NotNil(t, exec.Book().Open())
	assert.Len(t, exec.Book().Trades(), 0)
}

func TestMachine_PeriodBoundaryForcesExit(t *testing.T) {
	ev := &stubEvaluator{trigger: 0.60}
	exec := execution.NewPaperExecutor(100)
	m := NewMachine(ev, exitParams(), exec, discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))
	m.Tick(at(testPeriodTs, 5.0), quote(0.62))
	require.Equal(t, PhasePositionOpen, m.Phase())

	next := testPeriodTs + domain.PeriodSeconds
	m.Tick(at(next, 0.1), Quote{PeriodTs: next, PriceUp: 0.64, HasPrice: true})

	trades := exec.Book().Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, domain.ExitDeadline, trades[0].ExitType)
	assert.InDelta(t, 0.64, trades[0].ExitPrice, 1e-9)
	assert.Equal(t, PhaseCollecting, m.Phase())
}

func TestMachine_PeriodBoundaryCancelsWithoutQuote(t *testing.T) {
	ev := &stubEvaluator{trigger: 0.60}
	exec := execution.NewPaperExecutor(100)
	m := NewMachine(ev, exitParams(), exec, discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))
	m.Tick(at(testPeriodTs, 5.0), quote(0.62))
	require.Equal(t, PhasePositionOpen, m.Phase())

	next := testPeriodTs + domain.PeriodSeconds
	m.Tick(at(next, 0.1), Quote{PeriodTs: next})

	trades := exec.Book().Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, domain.StatusCancelled, trades[0].Status)
	assert.InDelta(t, 0.0, trades[0].PnL, 1e-9)
	assert.Equal(t, PhaseCollecting, m.Phase())
}

func TestMachine_OnOutcomeSettlesHeldPosition(t *testing.T) {
	ev := &stubEvaluator{trigger: 0.60}
	exec := execution.NewPaperExecutor(100)
	hold := domain.ExitParams{TPDelta: 10, SLDelta: 10, DeadlineMinute: 14, HoldToSettle: true}
	m := NewMachine(ev, hold, exec, discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))
	m.Tick(at(testPeriodTs, 5.0), quote(0.62))
	require.Equal(t, PhasePositionOpen, m.Phase())

	// Other periods' outcomes are ignored.
	m.OnOutcome(testPeriodTs-domain.PeriodSeconds, domain.OutcomeUp)
	require.Equal(t, PhasePositionOpen, m.Phase())

	m.OnOutcome(testPeriodTs, domain.OutcomeUp)
	assert.Equal(t, PhaseExited, m.Phase())

	trades := exec.Book().Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, domain.ExitSettlement, trades[0].ExitType)
	assert.InDelta(t, 1.0, trades[0].ExitPrice, 1e-9)
}

// failingExecutor rejects every Execute call.
type failingExecutor struct {
	book *execution.BookState
}

func (f *failingExecutor) Execute(*domain.TradeSignal) (*domain.TradeRecord, error) {
	return nil, errors.New("order rejected")
}

func (f *failingExecutor) ExitPosition(domain.ExitType, float64, float64) (*domain.TradeRecord, error) {
	return nil, execution.ErrNoPosition
}

func (f *failingExecutor) Settle(domain.PeriodOutcome) (*domain.TradeRecord, error) {
	return nil, execution.ErrNoPosition
}

func (f *failingExecutor) Cancel() (*domain.TradeRecord, error) {
	return nil, execution.ErrNoPosition
}

func (f *failingExecutor) Book() *execution.BookState { return f.book }

func TestMachine_ExecuteFailureEndsPeriod(t *testing.T) {
	ev := &stubEvaluator{trigger: 0.60}
	m := NewMachine(ev, exitParams(), &failingExecutor{book: execution.NewBookState()}, discard())

	m.Tick(at(testPeriodTs, 3.0), quote(0.55))
	m.Tick(at(testPeriodTs, 5.0), quote(0.62))

	assert.Equal(t, PhaseExited, m.Phase())

	// The next period starts cleanly.
	next := testPeriodTs + domain.PeriodSeconds
	m.Tick(at(next, 0.1), Quote{PeriodTs: next, PriceUp: 0.5, HasPrice: true})
	assert.Equal(t, PhaseCollecting, m.Phase())
}
