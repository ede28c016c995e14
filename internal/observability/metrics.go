// Package observability exposes the live session's Prometheus metrics.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the live session's instrument set. All instruments are
// registered on construction; a nil *Metrics disables instrumentation.
type Metrics struct {
	Ticks              prometheus.Counter
	SnapshotsCollected prometheus.Counter
	Signals            *prometheus.CounterVec
	TradesOpened       prometheus.Counter
	TradesClosed       *prometheus.CounterVec
	TotalPnL           prometheus.Gauge
	WSReconnects       prometheus.Counter
	FeedErrors         prometheus.Counter
}

// NewMetrics registers the session instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_ticks_total",
			Help: "Evaluation ticks processed.",
		}),
		SnapshotsCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_snapshots_collected_total",
			Help: "Price snapshots accepted into the period buffer.",
		}),
		Signals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_signals_total",
			Help: "Entry signals fired, by strategy family.",
		}, []string{"family"}),
		TradesOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_trades_opened_total",
			Help: "Positions opened.",
		}),
		TradesClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_trades_closed_total",
			Help: "Positions closed, by exit type.",
		}, []string{"exit_type"}),
		TotalPnL: factory.NewGauge(prometheus.GaugeOpts{
			Name: "session_total_pnl_usd",
			Help: "Realized P&L of the session in USD.",
		}),
		WSReconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "feed_ws_reconnects_total",
			Help: "Market websocket reconnects.",
		}),
		FeedErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "feed_errors_total",
			Help: "REST and websocket feed errors.",
		}),
	}
}

// ListenAndServe serves /metrics for the gatherer on addr. It blocks.
func ListenAndServe(addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
