package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/observability"
)

// DefaultWSEndpoint is the CLOB market-data websocket.
const DefaultWSEndpoint = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

var errTokensRotated = errors.New("period tokens rotated")

// StreamConfig configures websocket behavior.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is the maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns the default websocket configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      20 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// MarketStream subscribes to the market channel for the current period's
// token pair and writes best-ask quotes into the shared state. When the
// poller rotates the tokens, the stream resubscribes.
type MarketStream struct {
	endpoint string
	config   StreamConfig
	state    *State
	logger   *log.Logger
	metrics  *observability.Metrics
}

// NewMarketStream creates a market stream over the given state.
func NewMarketStream(endpoint string, state *State, logger *log.Logger, config *StreamConfig) *MarketStream {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	return &MarketStream{
		endpoint: endpoint,
		config:   cfg,
		state:    state,
		logger:   logger,
	}
}

// WithMetrics attaches feed metrics.
func (s *MarketStream) WithMetrics(mx *observability.Metrics) *MarketStream {
	s.metrics = mx
	return s
}

// Run streams quotes until the context is cancelled, reconnecting with
// exponential backoff on errors.
func (s *MarketStream) Run(ctx context.Context) error {
	delay := s.config.ReconnectDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		up, dn := s.state.TokenIDs()
		if up == "" {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		started := time.Now()
		err := s.stream(ctx, up, dn)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if errors.Is(err, errTokensRotated) {
			// Normal rotation at a period boundary, reconnect immediately.
			delay = s.config.ReconnectDelay
			continue
		}

		s.logger.Printf("market stream: %v, reconnecting in %s", err, delay)
		if s.metrics != nil {
			s.metrics.WSReconnects.Inc()
			s.metrics.FeedErrors.Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if time.Since(started) > time.Minute {
			delay = s.config.ReconnectDelay
		} else {
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
		}
	}
}

type subscribeRequest struct {
	AssetsIDs []string `json:"assets_ids"`
	Type      string   `json:"type"`
}

// stream holds one connection for one token pair.
func (s *MarketStream) stream(ctx context.Context, up, dn string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteJSON(subscribeRequest{AssetsIDs: []string{up, dn}, Type: "market"}); err != nil {
		return err
	}
	s.logger.Printf("market stream connected, tokens %s/%s", shortToken(up), shortToken(dn))

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cur, _ := s.state.TokenIDs(); cur != up {
			return errTokensRotated
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.handleMessage(message)
	}
}

func (s *MarketStream) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type bookEntry struct {
	AssetID string `json:"asset_id"`
	Asks    []struct {
		Price string `json:"price"`
	} `json:"asks"`
}

type priceChangeEvent struct {
	EventType    string `json:"event_type"`
	PriceChanges []struct {
		AssetID string `json:"asset_id"`
		BestAsk string `json:"best_ask"`
	} `json:"price_changes"`
}

// handleMessage folds one message into the state. Book snapshots arrive as
// a list; incremental updates as a price_change event.
func (s *MarketStream) handleMessage(message []byte) {
	var books []bookEntry
	if err := json.Unmarshal(message, &books); err == nil {
		for _, b := range books {
			if ask, ok := minAsk(b); ok {
				s.state.SetPrice(b.AssetID, ask)
			}
		}
		return
	}

	var change priceChangeEvent
	if err := json.Unmarshal(message, &change); err == nil && change.EventType == "price_change" {
		for _, ch := range change.PriceChanges {
			if ch.BestAsk == "" {
				continue
			}
			price, err := strconv.ParseFloat(ch.BestAsk, 64)
			if err != nil {
				continue
			}
			s.state.SetPrice(ch.AssetID, price)
		}
	}
}

func minAsk(b bookEntry) (float64, bool) {
	best := 0.0
	found := false
	for _, a := range b.Asks {
		price, err := strconv.ParseFloat(a.Price, 64)
		if err != nil {
			continue
		}
		if !found || price < best {
			best = price
			found = true
		}
	}
	return best, found
}

func shortToken(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
