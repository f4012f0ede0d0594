package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "pricefeed-api/internal/cache"
	"pricefeed-api/internal/cli"
	"pricefeed-api/internal/config"
	"pricefeed-api/internal/model"
	"pricefeed-api/internal/persistence"
	"pricefeed-api/pkg/quote"

	// Imports for side-effects: register provider backends
	_ "pricefeed-api/pkg/quote/providers/coingecko"
	_ "pricefeed-api/pkg/quote/providers/frankfurter"
	_ "pricefeed-api/pkg/quote/providers/ticker"
	_ "pricefeed-api/pkg/quote/providers/yahoo"
)

const (
	fetchTimeout    = 30 * time.Second       // Timeout for one symbol burst
	burstSize       = 5                      // Symbols fetched concurrently per burst
	burstPacing     = 500 * time.Millisecond // Delay between bursts
	shutdownTimeout = 10 * time.Second       // Grace period for shutdown
)

// refreshPeriods are the lookbacks swept each cycle. Hourly data expires too
// fast to be worth refreshing from a ticker.
var refreshPeriods = []quote.Period{quote.PeriodDay, quote.PeriodWeek}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting price refresher...")

	// Load application configuration
	var appCfg *config.Config
	var err error
	configPath := "etc/pricefeed.yaml"
	appCfg, err = config.Load(configPath)
	if err != nil {
		log.Printf("[main] Warning: Failed to load app config: %v", err)
		log.Printf("[main] Using default configuration")
		appCfg = &config.Config{Env: "dev"} // Default fallback
	}

	// Log configuration information
	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	marketCfg := appCfg.Market.Value
	marketPath := appCfg.Market.File
	if marketCfg == nil {
		marketCfg = config.MustLoadMarket()
		if marketPath == "" {
			marketPath = "etc/market.yaml (default)"
		}
	}

	ttl := cachekeys.NewTTLSet(appCfg.TTL)
	refreshInterval := cachekeys.PriceResultTTL(ttl)

	log.Printf("  - Market Config Path: %s", marketPath)
	log.Printf("  - Refresh Interval: %s", refreshInterval)
	log.Printf("  - Refresh Periods: %v", refreshPeriods)

	// Build price providers
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("[main] Failed to build price providers: %v", err)
	}

	// Mirror refreshed quotes to Postgres when a DSN is configured
	var opts []quote.ServiceOption
	if appCfg.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", appCfg.Postgres.DSN)
		if rec := persistence.NewService(persistence.Config{
			SQLConn:      conn,
			LatestModel:  model.NewPriceLatestModel(conn),
			CandlesModel: model.NewPriceCandlesModel(conn),
		}); rec != nil {
			opts = append(opts, quote.WithRecorder(rec))
			log.Printf("  - Postgres mirroring: enabled")
		}
	} else {
		log.Printf("  - Postgres mirroring: disabled (no DSN)")
	}

	// No result cache in the refresher: every sweep goes upstream and feeds
	// the recorder.
	quotes := quote.NewService(providers, nil, opts...)
	fetcher := quote.NewBatchFetcher(quotes, marketCfg.Universes())

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create wait group for goroutines
	var wg sync.WaitGroup

	// Start one refresh loop per configured asset class
	for _, class := range quote.AssetClasses() {
		if len(fetcher.Universe(class)) == 0 {
			log.Printf("[main] No universe configured for %s, skipping", class)
			continue
		}
		wg.Add(1)
		go func(class quote.AssetClass) {
			defer wg.Done()
			runClassRefresher(ctx, fetcher, class, refreshInterval)
		}(class)
	}

	log.Println("[main] Price refresher started. Press Ctrl+C to stop.")

	// Wait for signal
	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	// Give tasks time to complete current work
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Price refresher stopped")
}

// runClassRefresher sweeps one asset class universe on a schedule.
func runClassRefresher(ctx context.Context, fetcher *quote.BatchFetcher, class quote.AssetClass, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately on startup
	refreshClass(ctx, fetcher, class)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[quote.refresh.%s] Stopping refresher", class)
			return
		case <-ticker.C:
			refreshClass(ctx, fetcher, class)
		}
	}
}

// refreshClass fetches every universe symbol for each refresh period, in
// paced bursts so free upstream APIs are not hammered.
func refreshClass(parentCtx context.Context, fetcher *quote.BatchFetcher, class quote.AssetClass) {
	// Check if parent context is already cancelled
	if parentCtx.Err() != nil {
		return
	}

	symbols := fetcher.Universe(class)
	for _, period := range refreshPeriods {
		start := time.Now()
		refreshed := 0

		for offset := 0; offset < len(symbols); offset += burstSize {
			end := offset + burstSize
			if end > len(symbols) {
				end = len(symbols)
			}

			func(burst []string) {
				ctx, cancel := context.WithTimeout(parentCtx, fetchTimeout)
				defer cancel()
				refreshed += len(fetcher.FetchAssets(ctx, class, burst, period))
			}(symbols[offset:end])

			if end < len(symbols) {
				select {
				case <-parentCtx.Done():
					return
				case <-time.After(burstPacing):
				}
			}
		}

		elapsed := time.Since(start)
		if refreshed == 0 {
			log.Printf("[quote.refresh.%s] [ERROR] 0/%d symbols refreshed (%s), took %dms",
				class, len(symbols), period, elapsed.Milliseconds())
			continue
		}
		log.Printf("[quote.refresh.%s] [OK] refreshed %d/%d symbols (%s), took %dms",
			class, refreshed, len(symbols), period, elapsed.Milliseconds())
	}
}
