package execution

import (
	"fmt"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/idhash"
)

// PaperExecutor fills orders instantly at the quoted price with a fixed USD
// size. P&L is in USD: shares = size / entry price.
type PaperExecutor struct {
	sizeUSD float64
	book    *BookState
	log     *TradeLog // optional
	now     func() time.Time
}

var _ Executor = (*PaperExecutor)(nil)

// NewPaperExecutor creates a paper executor with a fixed position size.
func NewPaperExecutor(sizeUSD float64) *PaperExecutor {
	return &PaperExecutor{
		sizeUSD: sizeUSD,
		book:    NewBookState(),
		now:     time.Now,
	}
}

// WithTradeLog attaches a JSONL trade log.
func (e *PaperExecutor) WithTradeLog(log *TradeLog) *PaperExecutor {
	e.log = log
	return e
}

// WithClock overrides the timestamp source.
func (e *PaperExecutor) WithClock(now func() time.Time) *PaperExecutor {
	e.now = now
	return e
}

// Book exposes the running book.
func (e *PaperExecutor) Book() *BookState {
	return e.book
}

// Execute opens a paper position at the signal's entry price.
func (e *PaperExecutor) Execute(sig *domain.TradeSignal) (*domain.TradeRecord, error) {
	if e.book.Open() != nil {
		return nil, ErrPositionOpen
	}
	if sig.EntryPrice <= 0 {
		return nil, fmt.Errorf("invalid entry price %v", sig.EntryPrice)
	}

	record := &domain.TradeRecord{
		TradeID:     idhash.TradeID(sig.ConfigName, sig.PeriodTs, sig.Side),
		ConfigName:  sig.ConfigName,
		Family:      sig.Family,
		PeriodTs:    sig.PeriodTs,
		Side:        sig.Side,
		EntryPrice:  sig.EntryPrice,
		EntryMinute: sig.EntryMinute,
		SizeUSD:     e.sizeUSD,
		Status:      domain.StatusPaper,
		Outcome:     domain.TradePending,
		CreatedAt:   e.now().UTC(),
	}
	e.book.openPosition(record)
	e.appendLog(record)
	return record, nil
}

// ExitPosition closes the open position at the given price.
func (e *PaperExecutor) ExitPosition(exitType domain.ExitType, price, minute float64) (*domain.TradeRecord, error) {
	open := e.book.Open()
	if open == nil {
		return nil, ErrNoPosition
	}

	shares := open.SizeUSD / open.EntryPrice
	open.ExitType = exitType
	open.ExitPrice = price
	open.ExitMinute = minute
	open.PnL = shares * (price - open.EntryPrice)
	open.Status = domain.StatusFilled
	if open.PnL > 0 {
		open.Outcome = domain.TradeWon
	} else {
		open.Outcome = domain.TradeLost
	}

	e.book.closePosition(open)
	e.appendLog(open)
	return open, nil
}

// Settle closes the open position at the period's settlement price.
func (e *PaperExecutor) Settle(outcome domain.PeriodOutcome) (*domain.TradeRecord, error) {
	open := e.book.Open()
	if open == nil {
		return nil, ErrNoPosition
	}
	sp, ok := outcome.SettlementPrice()
	if !ok {
		return e.Cancel()
	}
	return e.ExitPosition(domain.ExitSettlement, open.Side.PositionPrice(sp), 15.0)
}

// Cancel abandons the open position with zero P&L.
func (e *PaperExecutor) Cancel() (*domain.TradeRecord, error) {
	open := e.book.Open()
	if open == nil {
		return nil, ErrNoPosition
	}

	open.Status = domain.StatusCancelled
	open.PnL = 0
	e.book.closePosition(open)
	e.appendLog(open)
	return open, nil
}

func (e *PaperExecutor) appendLog(t *domain.TradeRecord) {
	if e.log == nil {
		return
	}
	// The trade log is best-effort; a write failure must not stop trading.
	_ = e.log.Append(t)
}
