package execution

import (
	"sync"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// BookState is the running account of a live session: the open position,
// the closed trade list and the totals. All mutation goes through the
// executor on the evaluation goroutine; the lock makes reads from other
// goroutines (metrics, shutdown summary) safe.
type BookState struct {
	mu       sync.RWMutex
	open     *domain.TradeRecord
	closed   []*domain.TradeRecord
	totalPnL float64
	wins     int
	losses   int
}

// NewBookState creates an empty book.
func NewBookState() *BookState {
	return &BookState{}
}

func (b *BookState) openPosition(t *domain.TradeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = t
}

// closePosition moves the open position to the closed list. Cancelled
// trades carry no P&L and count for neither wins nor losses.
func (b *BookState) closePosition(t *domain.TradeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = nil
	b.closed = append(b.closed, t)
	if t.Status == domain.StatusCancelled || t.Status == domain.StatusFailed {
		return
	}
	b.totalPnL += t.PnL
	if t.PnL > 0 {
		b.wins++
	} else {
		b.losses++
	}
}

// Open returns a copy of the open position, or nil.
func (b *BookState) Open() *domain.TradeRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.open == nil {
		return nil
	}
	copy := *b.open
	return &copy
}

// Trades returns copies of all closed trades in close order.
func (b *BookState) Trades() []*domain.TradeRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*domain.TradeRecord, 0, len(b.closed))
	for _, t := range b.closed {
		copy := *t
		out = append(out, &copy)
	}
	return out
}

// TotalPnL returns the realized P&L in USD.
func (b *BookState) TotalPnL() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalPnL
}

// Wins returns the number of closed winning trades.
func (b *BookState) Wins() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.wins
}

// Losses returns the number of closed losing trades.
func (b *BookState) Losses() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.losses
}

// WinRate returns wins over settled trades, 0 with no settled trades.
func (b *BookState) WinRate() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	settled := b.wins + b.losses
	if settled == 0 {
		return 0
	}
	return float64(b.wins) / float64(settled)
}
