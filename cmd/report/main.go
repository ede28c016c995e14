package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/reporting"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/stats"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/migrations"
	pgstore "github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/postgres"
)

func main() {
	// Parse flags
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	configName := flag.String("config", "", "Restrict the report to one config")
	coin := flag.String("coin", "btc", "Coin label for the report header")

	topN := flag.Int("top", 25, "Overall leaderboard size")
	minTrades := flag.Int("min-trades", stats.DefaultMinTrades, "Minimum trades to qualify overall")
	familyTopN := flag.Int("family-top", 5, "Per-family leaderboard size")
	familyMinTrades := flag.Int("family-min-trades", stats.DefaultFamilyMinTrades, "Minimum trades to qualify per family")

	mdOut := flag.String("md-out", "", "Write the markdown report to this file")
	csvOut := flag.String("csv-out", "", "Write the overall leaderboard CSV to this file")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

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

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to PostgreSQL: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Run PostgreSQL migrations: %v", err)
	}
	store := pgstore.NewTradeStore(pool)

	// Load trades
	var trades []*domain.TradeRecord
	if *configName != "" {
		trades, err = store.GetByConfig(ctx, *configName)
	} else {
		trades, err = store.GetAll(ctx)
	}
	if err != nil {
		logger.Fatalf("Load trades: %v", err)
	}
	if len(trades) == 0 {
		logger.Fatal("No trades in storage")
	}
	logger.Printf("Loaded %d trades", len(trades))

	// Aggregate per config
	byConfig := make(map[string][]*domain.TradeRecord)
	periods := make(map[int64]bool)
	for _, t := range trades {
		byConfig[t.ConfigName] = append(byConfig[t.ConfigName], t)
		periods[t.PeriodTs] = true
	}

	var allStats []*domain.Stats
	for name, group := range byConfig {
		s, err := stats.Compute(name, group[0].Family, group)
		if err != nil {
			logger.Printf("Stats for %s: %v", name, err)
			continue
		}
		allStats = append(allStats, s)
	}

	gen := reporting.NewGenerator(reporting.Options{
		TopN:            *topN,
		MinTrades:       *minTrades,
		FamilyTopN:      *familyTopN,
		FamilyMinTrades: *familyMinTrades,
	})
	report := gen.Build(reporting.Meta{
		Coin:    *coin,
		Periods: len(periods),
		Configs: len(byConfig),
	}, allStats)

	reporting.RenderConsole(os.Stdout, report)

	if *mdOut != "" {
		if err := os.WriteFile(*mdOut, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			logger.Fatalf("Write markdown report: %v", err)
		}
		logger.Printf("Markdown report written to %s", *mdOut)
	}
	if *csvOut != "" {
		csv, err := reporting.RenderCSV(report.Overall)
		if err != nil {
			logger.Fatalf("Render CSV: %v", err)
		}
		if err := os.WriteFile(*csvOut, []byte(csv), 0o644); err != nil {
			logger.Fatalf("Write CSV report: %v", err)
		}
		logger.Printf("CSV report written to %s", *csvOut)
	}
}
