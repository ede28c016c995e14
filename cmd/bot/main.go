package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/execution"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/feed"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/observability"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/session"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/migrations"
	pgstore "github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/postgres"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/strategy"
)

type outcomeEvent struct {
	periodTs int64
	outcome  domain.PeriodOutcome
}

func main() {
	// Parse flags
	coin := flag.String("coin", "btc", "Coin symbol (btc, eth, sol, xrp)")
	configName := flag.String("config", "mom_m5_lb2_60%_tp0.15_sl0.05", "Strategy config name from the grid")
	sizeUSD := flag.Float64("size", 10, "Position size in USD")
	tick := flag.Duration("tick", 2*time.Second, "Evaluation tick interval")
	logDir := flag.String("log-dir", "trade_logs", "Directory for JSONL trade logs")
	wsEndpoint := flag.String("ws-endpoint", feed.DefaultWSEndpoint, "CLOB market websocket endpoint")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for closed-trade persistence (optional)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[bot] ", log.LstdFlags)

	cfg, ok := strategy.FindConfig(*configName)
	if !ok {
		logger.Fatalf("Unknown config %q; see the grid for valid names", *configName)
	}
	evaluator, err := strategy.FromConfig(cfg)
	if err != nil {
		logger.Fatalf("Build evaluator: %v", err)
	}
	logger.Printf("Trading %s on %s, size $%.2f", cfg.Name, *coin, *sizeUSD)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Metrics
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	if *metricsAddr != "" {
		go func() {
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := observability.ListenAndServe(*metricsAddr, registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Optional closed-trade persistence
	var tradeStore storage.TradeStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to PostgreSQL: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Run PostgreSQL migrations: %v", err)
		}
		tradeStore = pgstore.NewTradeStore(pool)
	}

	// Executor with JSONL trade log
	tradeLog, err := execution.NewTradeLog(*logDir)
	if err != nil {
		logger.Fatalf("Create trade log: %v", err)
	}
	executor := execution.NewPaperExecutor(*sizeUSD).WithTradeLog(tradeLog)

	machine := session.NewMachine(evaluator, cfg.Exit, executor, logger).WithMetrics(metrics)

	// Feed: REST poller rotates periods, websocket streams quotes
	state := feed.NewState()
	client := feed.NewClient()

	outcomeCh := make(chan outcomeEvent, 4)
	poller := feed.NewPoller(client, state, *coin, logger).WithMetrics(metrics)
	poller.OnOutcome = func(periodTs int64, outcome domain.PeriodOutcome) {
		select {
		case outcomeCh <- outcomeEvent{periodTs: periodTs, outcome: outcome}:
		default:
		}
	}
	go func() {
		if err := poller.Run(ctx, feed.DefaultPollInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("Poller stopped: %v", err)
		}
	}()

	stream := feed.NewMarketStream(*wsEndpoint, state, logger, nil).WithMetrics(metrics)
	go func() {
		if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("Market stream stopped: %v", err)
		}
	}()

	// Tick loop. The machine is single-threaded: quotes, ticks and outcome
	// events all funnel through here.
	ticker := time.NewTicker(*tick)
	defer ticker.Stop()

	persisted := 0
	for {
		select {
		case <-ctx.Done():
			printSummary(logger, executor.Book())
			return
		case ev := <-outcomeCh:
			machine.OnOutcome(ev.periodTs, ev.outcome)
			persisted = persistClosedTrades(ctx, logger, tradeStore, executor.Book(), persisted)
		case <-ticker.C:
			view := state.View()
			machine.Tick(time.Now(), session.Quote{
				PeriodTs: view.PeriodTs,
				PriceUp:  view.PriceUp,
				HasPrice: view.HasPrice,
			})
			persisted = persistClosedTrades(ctx, logger, tradeStore, executor.Book(), persisted)
		}
	}
}

// persistClosedTrades inserts trades closed since the last call. Duplicate
// IDs are expected after a restart and skipped.
func persistClosedTrades(ctx context.Context, logger *log.Logger, store storage.TradeStore, book *execution.BookState, persisted int) int {
	if store == nil {
		return persisted
	}
	trades := book.Trades()
	for _, t := range trades[persisted:] {
		if err := store.Insert(ctx, t); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			logger.Printf("Persist trade %s: %v", t.TradeID, err)
		}
	}
	return len(trades)
}

func printSummary(logger *log.Logger, book *execution.BookState) {
	logger.Printf("Session summary: %d trades, %d won, %d lost, win rate %.0f%%, total P&L $%.2f",
		len(book.Trades()), book.Wins(), book.Losses(), book.WinRate()*100, book.TotalPnL())
}
