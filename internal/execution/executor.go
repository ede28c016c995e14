// Package execution turns trade signals into positions and tracks the live
// book. The paper executor fills at the quoted price; a broker-backed
// executor implements the same interface, so the session machine never
// knows which one it drives.
package execution

import (
	"errors"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

var (
	// ErrPositionOpen is returned when Execute is called while a position
	// is already open.
	ErrPositionOpen = errors.New("position already open")

	// ErrNoPosition is returned by exit operations without an open position.
	ErrNoPosition = errors.New("no open position")
)

// Executor opens and closes positions. At most one position is open at a
// time; the session machine enforces the per-period signal limit, the
// executor enforces the book limit.
type Executor interface {
	// Execute opens a position for the signal. Returns the recorded trade,
	// or an error that leaves the book unchanged (recorded as a failed
	// trade by the caller).
	Execute(sig *domain.TradeSignal) (*domain.TradeRecord, error)

	// ExitPosition closes the open position at the given price.
	ExitPosition(exitType domain.ExitType, price, minute float64) (*domain.TradeRecord, error)

	// Settle closes the open position at the period's settlement price.
	Settle(outcome domain.PeriodOutcome) (*domain.TradeRecord, error)

	// Cancel abandons the open position without a fill price; the trade is
	// recorded as cancelled with zero P&L.
	Cancel() (*domain.TradeRecord, error)

	// Book exposes the running book.
	Book() *BookState
}
