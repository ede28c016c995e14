package feed

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/observability"
)

// DefaultPollInterval is how often the poller checks for a period rollover.
const DefaultPollInterval = 2 * time.Second

// Poller tracks the period boundary: when the aligned timestamp advances it
// resolves the new period's token pair and rotates the state. It also
// resolves outcomes of finished periods for hold-to-settlement positions.
type Poller struct {
	client  *Client
	state   *State
	coin    string
	logger  *log.Logger
	metrics *observability.Metrics
	now     func() time.Time

	// OnOutcome, when set, is called once per finished period as soon as
	// its outcome resolves.
	OnOutcome func(periodTs int64, outcome domain.PeriodOutcome)

	pendingOutcome int64
}

// NewPoller creates a period tracker for one coin.
func NewPoller(client *Client, state *State, coin string, logger *log.Logger) *Poller {
	return &Poller{
		client: client,
		state:  state,
		coin:   coin,
		logger: logger,
		now:    time.Now,
	}
}

// WithMetrics attaches feed metrics.
func (p *Poller) WithMetrics(mx *observability.Metrics) *Poller {
	p.metrics = mx
	return p
}

// WithClock overrides the wall clock.
func (p *Poller) WithClock(now func() time.Time) *Poller {
	p.now = now
	return p
}

// Run polls until the context is cancelled. Per-cycle errors are logged and
// retried on the next cycle.
func (p *Poller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	current := domain.AlignPeriodTs(p.now().UTC().Unix())

	view := p.state.View()
	if view.PeriodTs != current {
		p.rotate(ctx, view.PeriodTs, current)
	} else if !view.HasPrice && view.TokenUp != "" {
		// REST fallback until the websocket delivers its first quote.
		if mid, err := p.client.Midpoint(ctx, view.TokenUp); err == nil {
			p.state.SetPrice(view.TokenUp, mid)
		}
	}
	p.resolveOutcome(ctx)
}

// rotate switches the state to the new period's token pair. The previous
// period becomes the pending-outcome candidate.
func (p *Poller) rotate(ctx context.Context, previous, current int64) {
	up, dn, err := p.client.TokenIDs(ctx, p.coin, current)
	if err != nil {
		p.logger.Printf("resolve tokens for period %d: %v", current, err)
		if p.metrics != nil {
			p.metrics.FeedErrors.Inc()
		}
		return
	}

	p.state.SetPeriod(current, up, dn)
	if previous != 0 {
		p.pendingOutcome = previous
	}
	p.logger.Printf("period %d tokens resolved", current)
}

func (p *Poller) resolveOutcome(ctx context.Context) {
	if p.pendingOutcome == 0 || p.OnOutcome == nil {
		return
	}

	outcome, err := p.client.Outcome(ctx, p.coin, p.pendingOutcome)
	if err != nil {
		if !errors.Is(err, ErrNotResolved) {
			p.logger.Printf("resolve outcome for period %d: %v", p.pendingOutcome, err)
			if p.metrics != nil {
				p.metrics.FeedErrors.Inc()
			}
		}
		return
	}

	p.OnOutcome(p.pendingOutcome, outcome)
	p.pendingOutcome = 0
}
