package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pricefeed-api/internal/config"
	"pricefeed-api/pkg/quote"

	// Import for side-effects: registers provider backends
	_ "pricefeed-api/pkg/quote/providers/coingecko"
	_ "pricefeed-api/pkg/quote/providers/frankfurter"
	_ "pricefeed-api/pkg/quote/providers/ticker"
	_ "pricefeed-api/pkg/quote/providers/yahoo"
)

// Fetches one symbol straight through the configured provider, bypassing the
// cache, so a misbehaving upstream can be checked from the shell:
//
//	go run scripts/check_quote.go -class crypto -symbol BTC -period 1d
func main() {
	classArg := flag.String("class", "crypto", "asset class: stocks, crypto or forex")
	symbolArg := flag.String("symbol", "BTC", "symbol to fetch")
	periodArg := flag.String("period", "1d", "lookback period: 1h, 1d or 1w")
	flag.Parse()

	class, err := quote.ParseAssetClass(*classArg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	period, err := quote.ParsePeriod(*periodArg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	symbol := strings.ToUpper(strings.TrimSpace(*symbolArg))

	marketCfg := config.MustLoadMarket()
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		fmt.Printf("Error: failed to build providers: %v\n", err)
		os.Exit(1)
	}
	provider, ok := providers[class]
	if !ok {
		fmt.Printf("Error: no provider configured for %s\n", class)
		os.Exit(1)
	}

	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("Fetching %s/%s (period %s)\n", class, symbol, period)
	fmt.Println("═══════════════════════════════════════════════════════════════")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	res := provider.Fetch(ctx, symbol, period)
	elapsed := time.Since(start)

	if res.Failed() {
		fmt.Printf("FAILED: %s (took %dms)\n", res.Err, elapsed.Milliseconds())
		os.Exit(1)
	}

	fmt.Printf("Current Price: %.6f\n", res.CurrentPrice)
	fmt.Printf("Candles: %d (took %dms)\n", len(res.Candles), elapsed.Milliseconds())

	tail := res.Candles
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
		fmt.Printf("Last %d:\n", len(tail))
	}
	for _, c := range tail {
		fmt.Printf("  %s  O=%.6f H=%.6f L=%.6f C=%.6f V=%.2f\n",
			c.Timestamp.UTC().Format(time.RFC3339), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
}
