package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/backtest"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/feed"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/reporting"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/stats"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
	chstore "github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/clickhouse"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/migrations"
	pgstore "github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage/postgres"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/strategy"
)

func main() {
	// Parse flags
	coin := flag.String("coin", "btc", "Coin symbol (btc, eth, sol, xrp)")
	hours := flag.Int("hours", 24, "Lookback window in hours")
	maxPeriods := flag.Int("max-periods", 0, "Cap on periods to backtest (0 = no cap)")
	workers := flag.Int("workers", 0, "Worker count (0 = CPU-based default)")

	// Leaderboard
	topN := flag.Int("top", 25, "Overall leaderboard size")
	minTrades := flag.Int("min-trades", stats.DefaultMinTrades, "Minimum trades to qualify overall")
	familyTopN := flag.Int("family-top", 5, "Per-family leaderboard size")
	familyMinTrades := flag.Int("family-min-trades", stats.DefaultFamilyMinTrades, "Minimum trades to qualify per family")

	// Output
	mdOut := flag.String("md-out", "", "Write the markdown report to this file")
	csvOut := flag.String("csv-out", "", "Write the overall leaderboard CSV to this file")
	jsonOut := flag.String("json-out", "", "Write the full report as JSON to this file")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (periods, trade records)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (price snapshots)")
	persist := flag.Bool("persist", false, "Persist fetched periods and snapshots")
	persistTrades := flag.Bool("persist-trades", false, "Persist simulated trades to PostgreSQL")
	fromStore := flag.Bool("from-store", false, "Load periods and snapshots from storage instead of the APIs")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

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

	if (*persist || *persistTrades || *fromStore) && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required with --persist / --persist-trades / --from-store")
	}
	if (*persist || *fromStore) && *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required with --persist / --from-store")
	}

	// Connect stores when persistence is requested
	var periodStore storage.PeriodStore
	var tradeStore storage.TradeStore
	var snapshotStore storage.SnapshotStore

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to PostgreSQL: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Run PostgreSQL migrations: %v", err)
		}
		periodStore = pgstore.NewPeriodStore(pool)
		tradeStore = pgstore.NewTradeStore(pool)
	}
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Run ClickHouse migrations: %v", err)
		}
		defer conn.Close()
		snapshotStore = chstore.NewSnapshotStore(conn)
	}

	// Phase 1: collect resolved periods
	logger.Printf("Collecting resolved periods: coin=%s hours=%d", *coin, *hours)
	client := feed.NewClient()

	var periods []*domain.Period
	var err error
	if *fromStore {
		end := time.Now().UTC().Unix()
		periods, err = periodStore.GetByTimeRange(ctx, *coin, end-int64(*hours)*3600, end)
	} else {
		periods, err = client.ResolvedPeriods(ctx, *coin, *hours)
	}
	if err != nil {
		logger.Fatalf("Collect periods: %v", err)
	}
	logger.Printf("Found %d resolved periods", len(periods))
	if len(periods) == 0 {
		logger.Fatal("No resolved periods in the window")
	}
	if *maxPeriods > 0 && len(periods) > *maxPeriods {
		periods = periods[:*maxPeriods]
	}

	// Phase 2: fetch price histories
	logger.Printf("Fetching price histories for %d periods", len(periods))
	var periodData []*backtest.PeriodData
	for i, p := range periods {
		if ctx.Err() != nil {
			logger.Fatal("Interrupted during fetch")
		}

		var series *domain.PriceSeries
		if *fromStore {
			points, err := snapshotStore.GetByPeriod(ctx, *coin, p.StartTs)
			if err != nil {
				logger.Printf("Snapshots for period %d: %v", p.StartTs, err)
				continue
			}
			series = &domain.PriceSeries{PeriodTs: p.StartTs, Points: points}
		} else {
			upToken, _, err := client.TokenIDs(ctx, *coin, p.StartTs)
			if err != nil {
				if !errors.Is(err, feed.ErrNoMarket) {
					logger.Printf("Tokens for period %d: %v", p.StartTs, err)
				}
				continue
			}
			series, err = client.PriceHistory(ctx, upToken, p.StartTs)
			if err != nil {
				logger.Printf("Price history for period %d: %v", p.StartTs, err)
				continue
			}
			// The CLOB API rate-limits aggressive clients.
			time.Sleep(300 * time.Millisecond)
		}
		if series.Len() == 0 {
			continue
		}

		periodData = append(periodData, &backtest.PeriodData{Period: p, Series: series})

		if *persist && !*fromStore {
			persistPeriod(ctx, logger, periodStore, snapshotStore, *coin, p, series)
		}
		if (i+1)%20 == 0 {
			logger.Printf("  ... %d/%d (%d with data)", i+1, len(periods), len(periodData))
		}
	}
	logger.Printf("Total: %d periods with data", len(periodData))
	if len(periodData) == 0 {
		logger.Fatal("No periods with price data")
	}

	// Phase 3: run the grid
	configs := strategy.Grid()
	logger.Printf("Testing %d strategy configurations", len(configs))

	runner := backtest.NewRunner(*workers)
	results, err := runner.Run(ctx, configs, periodData)
	if err != nil {
		logger.Fatalf("Run backtest: %v", err)
	}

	var allStats []*domain.Stats
	var allTrades []*domain.TradeRecord
	for _, res := range results {
		if res.Stats != nil {
			allStats = append(allStats, res.Stats)
		}
		allTrades = append(allTrades, res.Trades...)
	}
	logger.Printf("Done: %d configs traded, %d trades total", len(allStats), len(allTrades))

	if *persistTrades && len(allTrades) > 0 {
		if err := tradeStore.InsertBulk(ctx, allTrades); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			logger.Printf("Persist trades: %v", err)
		}
	}

	// Phase 4: report
	gen := reporting.NewGenerator(reporting.Options{
		TopN:            *topN,
		MinTrades:       *minTrades,
		FamilyTopN:      *familyTopN,
		FamilyMinTrades: *familyMinTrades,
	})
	report := gen.Build(reporting.Meta{
		Coin:    *coin,
		Hours:   *hours,
		Periods: len(periodData),
		Configs: len(configs),
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
	if *jsonOut != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Fatalf("Marshal JSON report: %v", err)
		}
		if err := os.WriteFile(*jsonOut, data, 0o644); err != nil {
			logger.Fatalf("Write JSON report: %v", err)
		}
		logger.Printf("JSON report written to %s", *jsonOut)
	}
}

// persistPeriod stores one period and its snapshot series. Duplicates are
// expected on re-runs and skipped.
func persistPeriod(ctx context.Context, logger *log.Logger, periods storage.PeriodStore, snapshots storage.SnapshotStore, coin string, p *domain.Period, series *domain.PriceSeries) {
	if err := periods.Insert(ctx, p); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		logger.Printf("Persist period %d: %v", p.StartTs, err)
	}
	if err := snapshots.InsertBulk(ctx, coin, p.StartTs, series.Points); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		logger.Printf("Persist snapshots for period %d: %v", p.StartTs, err)
	}
}
