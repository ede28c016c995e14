// Package feed supplies live market data: the current period's token IDs
// and best-ask quotes over REST and the CLOB websocket.
package feed

import "sync"

// View is a consistent read of the feed state.
type View struct {
	PeriodTs  int64
	TokenUp   string
	TokenDown string
	PriceUp   float64
	PriceDown float64
	HasPrice  bool
}

// State is the shared quote blackboard. Writers are the poller and the
// websocket stream; the tick loop reads a View each cycle.
type State struct {
	mu        sync.RWMutex
	periodTs  int64
	tokenUp   string
	tokenDown string
	priceUp   float64
	priceDown float64
	hasPrice  bool
}

// NewState creates an empty state.
func NewState() *State {
	return &State{}
}

// SetPeriod switches to a new period. Stale quotes from the previous
// period's tokens are dropped.
func (s *State) SetPeriod(periodTs int64, tokenUp, tokenDown string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodTs = periodTs
	s.tokenUp = tokenUp
	s.tokenDown = tokenDown
	s.priceUp = 0
	s.priceDown = 0
	s.hasPrice = false
}

// SetPrice records the best ask for one of the current period's tokens.
// Quotes for unknown tokens are ignored.
func (s *State) SetPrice(tokenID string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tokenID {
	case s.tokenUp:
		s.priceUp = price
		s.hasPrice = true
	case s.tokenDown:
		s.priceDown = price
	}
}

// View returns a snapshot of the state.
func (s *State) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		PeriodTs:  s.periodTs,
		TokenUp:   s.tokenUp,
		TokenDown: s.tokenDown,
		PriceUp:   s.priceUp,
		PriceDown: s.priceDown,
		HasPrice:  s.hasPrice,
	}
}

// TokenIDs returns the current period's token pair.
func (s *State) TokenIDs() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenUp, s.tokenDown
}
