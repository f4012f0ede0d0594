package logic_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/config"
	"pricefeed-api/internal/logic"
	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/confkit"
	"pricefeed-api/pkg/quote"

	_ "pricefeed-api/pkg/quote/providers/coingecko"
)

// newMarketContext wires a ServiceContext whose crypto provider talks to a
// mock OHLC upstream. Symbols in series answer with their closes; every
// other symbol gets an empty payload, which the provider reports as a
// failed lookup. hits counts upstream requests.
func newMarketContext(t *testing.T, universe []string, series map[string][]float64) (*svc.ServiceContext, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Path shape: /api/v3/coins/{id}/ohlc
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 6 {
			http.NotFound(w, r)
			return
		}
		id := parts[4]
		w.Header().Set("Content-Type", "application/json")

		closes, ok := series[id]
		if !ok {
			fmt.Fprint(w, "[]")
			return
		}
		rows := make([][]float64, len(closes))
		for i, c := range closes {
			ts := float64(1700000000000 + int64(i)*3600000)
			rows[i] = []float64{ts, c, c, c, c}
		}
		payload, err := json.Marshal(rows)
		if err != nil {
			t.Errorf("marshal rows: %v", err)
			return
		}
		w.Write(payload)
	}))
	t.Cleanup(server.Close)

	marketYAML := fmt.Sprintf("providers:\n  crypto:\n    type: coingecko\n    base_url: %s\n", server.URL)
	if len(universe) > 0 {
		marketYAML += fmt.Sprintf("universe:\n  crypto: [%s]\n", strings.Join(universe, ", "))
	}
	marketCfg, err := quote.LoadConfigFromReader(strings.NewReader(marketYAML))
	require.NoError(t, err, "market config must load")

	cfg := config.Config{
		Env: "test",
		TTL: config.CacheTTL{Short: 10, Medium: 60, Long: 300},
		Market: confkit.Section[quote.Config]{
			Value: marketCfg,
		},
	}
	cfg.Name = "pricefeed-test"
	cfg.Host = "127.0.0.1"
	cfg.Port = 18888

	return svc.NewServiceContext(cfg), &hits
}

// Mixed-direction market: GAMMA +10%, ALPHA +5%, BETA -4%.
func mixedSeries() map[string][]float64 {
	return map[string][]float64{
		"alpha": {100, 105},
		"beta":  {50, 48},
		"gamma": {10, 11},
	}
}

func requireStatus(t *testing.T, err error, code int) *apierror.Error {
	t.Helper()
	var appErr *apierror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code, "status for %q", appErr.Message)
	return appErr
}

func TestGainersRanksAcrossPartialFailures(t *testing.T) {
	universe := []string{"ALPHA", "BETA", "BAD1", "BAD2", "GAMMA"}
	svcCtx, hits := newMarketContext(t, universe, mixedSeries())

	l := logic.NewGainersLogic(context.Background(), svcCtx)
	resp, err := l.Gainers(&types.RankRequest{AssetClass: "crypto", Limit: 3, Timeframe: "1d"})
	require.NoError(t, err)

	// limit 3 over a 5-symbol universe queries all five, two of which fail.
	assert.Equal(t, int64(5), hits.Load())
	assert.Equal(t, 3, resp.TotalFetched, "failed symbols are dropped silently")

	require.Len(t, resp.Items, 3, "losers still fill the list when fewer than limit rose")
	assert.Equal(t, "GAMMA", resp.Items[0].Symbol)
	assert.Equal(t, "ALPHA", resp.Items[1].Symbol)
	assert.Equal(t, "BETA", resp.Items[2].Symbol)

	require.NotNil(t, resp.Items[0].PctChange)
	assert.InDelta(t, 10.0, *resp.Items[0].PctChange, 0.001)
	assert.InDelta(t, 5.0, *resp.Items[1].PctChange, 0.001)
	assert.InDelta(t, -4.0, *resp.Items[2].PctChange, 0.001)

	assert.Equal(t, []float64{10, 11}, resp.Items[0].Prices)
	assert.InDelta(t, 11.0, resp.Items[0].CurrentPrice, 1e-9)
	assert.Nil(t, resp.Items[0].VolatilityPct, "change ranking carries no volatility")
}

func TestGainersInvalidTimeframeNeverReachesUpstream(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewGainersLogic(context.Background(), svcCtx)
	_, err := l.Gainers(&types.RankRequest{AssetClass: "crypto", Limit: 10, Timeframe: "2d"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "invalid period")
	assert.Equal(t, int64(0), hits.Load(), "validation failures must not hit the provider")
}

func TestGainersInvalidClass(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewGainersLogic(context.Background(), svcCtx)
	_, err := l.Gainers(&types.RankRequest{AssetClass: "bonds", Limit: 10, Timeframe: "1d"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "unsupported asset class")
	assert.Equal(t, int64(0), hits.Load())
}

func TestGainersLimitBounds(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewGainersLogic(context.Background(), svcCtx)
	_, err := l.Gainers(&types.RankRequest{AssetClass: "crypto", Limit: 0, Timeframe: "1d"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "limit must be between 1 and 50")

	_, err = l.Gainers(&types.RankRequest{AssetClass: "crypto", Limit: 51, Timeframe: "1d"})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, int64(0), hits.Load())
}

func TestLosersOrdersAscending(t *testing.T) {
	universe := []string{"ALPHA", "BETA", "GAMMA"}
	svcCtx, _ := newMarketContext(t, universe, mixedSeries())

	l := logic.NewLosersLogic(context.Background(), svcCtx)
	resp, err := l.Losers(&types.RankRequest{AssetClass: "crypto", Limit: 2, Timeframe: "1d"})
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "BETA", resp.Items[0].Symbol, "worst performer first")
	assert.Equal(t, "ALPHA", resp.Items[1].Symbol)
	assert.Equal(t, 3, resp.TotalFetched)
}

func TestPriceReturnsSeries(t *testing.T) {
	svcCtx, _ := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewPriceLogic(context.Background(), svcCtx)
	resp, err := l.Price(&types.PriceRequest{AssetClass: "crypto", Symbol: "alpha", Period: "1d"})
	require.NoError(t, err)

	assert.Equal(t, "crypto", resp.AssetClass)
	assert.Equal(t, "ALPHA", resp.Symbol, "symbol echoes back uppercased")
	assert.Equal(t, "1d", resp.Period)
	assert.InDelta(t, 105.0, resp.CurrentPrice, 1e-9)
	require.Len(t, resp.Candles, 2)
	assert.InDelta(t, 100.0, resp.Candles[0].Close, 1e-9)
	assert.Equal(t, int64(1700000000), resp.Candles[0].Timestamp, "timestamps serialize as unix seconds")
}

func TestPriceUpstreamFailureIs404(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewPriceLogic(context.Background(), svcCtx)
	_, err := l.Price(&types.PriceRequest{AssetClass: "crypto", Symbol: "MISSING", Period: "1d"})
	appErr := requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "No crypto data", appErr.Message, "the result's own error reaches the client")
	assert.Equal(t, int64(1), hits.Load())
}

func TestPriceValidationRejects(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())
	l := logic.NewPriceLogic(context.Background(), svcCtx)

	_, err := l.Price(&types.PriceRequest{AssetClass: "bonds", Symbol: "ALPHA", Period: "1d"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = l.Price(&types.PriceRequest{AssetClass: "crypto", Symbol: "ALPHA", Period: "2d"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = l.Price(&types.PriceRequest{AssetClass: "crypto", Symbol: "   ", Period: "1d"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "symbol is required", appErr.Message)

	assert.Equal(t, int64(0), hits.Load())
}

func TestPriceSecondLookupServedFromCache(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())
	l := logic.NewPriceLogic(context.Background(), svcCtx)

	req := &types.PriceRequest{AssetClass: "crypto", Symbol: "ALPHA", Period: "1d"}
	_, err := l.Price(req)
	require.NoError(t, err)
	_, err = l.Price(req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load(), "within the TTL only the first lookup goes upstream")
}

func TestStableFiltersByVolatility(t *testing.T) {
	universe := []string{"STEADY", "CALM", "WILD"}
	series := map[string][]float64{
		"steady": {100, 100, 100}, // 0%
		"calm":   {100, 100, 101}, // ~0.47%
		"wild":   {90, 100, 110},  // ~8.17%
	}
	svcCtx, _ := newMarketContext(t, universe, series)

	l := logic.NewStableLogic(context.Background(), svcCtx)
	resp, err := l.Stable(&types.StableRequest{
		AssetClass: "crypto", Limit: 10, VolThreshold: 2.0, Timeframe: "1w",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalFetched)
	require.Len(t, resp.Items, 2, "WILD sits above the threshold")
	assert.Equal(t, "STEADY", resp.Items[0].Symbol, "least volatile first")
	assert.Equal(t, "CALM", resp.Items[1].Symbol)

	require.NotNil(t, resp.Items[0].VolatilityPct)
	assert.InDelta(t, 0.0, *resp.Items[0].VolatilityPct, 0.001)
	assert.Nil(t, resp.Items[0].PctChange, "volatility ranking carries no change")
}

func TestStableRejectsHourlyTimeframe(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewStableLogic(context.Background(), svcCtx)
	_, err := l.Stable(&types.StableRequest{
		AssetClass: "crypto", Limit: 10, VolThreshold: 2.0, Timeframe: "1h",
	})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "timeframe must be 1d or 1w", appErr.Message)
	assert.Equal(t, int64(0), hits.Load())
}

func TestStableThresholdBounds(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewStableLogic(context.Background(), svcCtx)
	_, err := l.Stable(&types.StableRequest{
		AssetClass: "crypto", Limit: 10, VolThreshold: 51, Timeframe: "1w",
	})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "vol_threshold must be between 0 and 50")
	assert.Equal(t, int64(0), hits.Load())
}

func TestAssetsGainersAppliesSignFilter(t *testing.T) {
	universe := []string{"ALPHA", "BETA", "GAMMA"}
	svcCtx, _ := newMarketContext(t, universe, mixedSeries())

	l := logic.NewAssetsLogic(context.Background(), svcCtx)
	resp, err := l.Assets(&types.AssetsRequest{
		Category: "gainers", AssetClass: "crypto", Timeframe: "1d", VolThreshold: 2.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "gainers", resp.Category)
	assert.Equal(t, "crypto", resp.AssetClass)
	assert.Equal(t, 3, resp.TotalFetched)
	require.Len(t, resp.Items, 2, "the decliner is filtered out, not ranked last")
	assert.Equal(t, "GAMMA", resp.Items[0].Symbol)
	assert.Equal(t, "ALPHA", resp.Items[1].Symbol)
}

func TestAssetsExplicitSymbolList(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA", "BETA", "GAMMA"}, mixedSeries())

	l := logic.NewAssetsLogic(context.Background(), svcCtx)
	resp, err := l.Assets(&types.AssetsRequest{
		Category: "losers", AssetClass: "crypto", Symbols: "alpha, beta",
		Timeframe: "1d", VolThreshold: 2.0,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), hits.Load(), "only the requested symbols are fetched")
	assert.Equal(t, 2, resp.TotalFetched)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "BETA", resp.Items[0].Symbol)
}

func TestAssetsStableCategory(t *testing.T) {
	universe := []string{"STEADY", "WILD"}
	series := map[string][]float64{
		"steady": {100, 100, 100},
		"wild":   {90, 100, 110},
	}
	svcCtx, _ := newMarketContext(t, universe, series)

	l := logic.NewAssetsLogic(context.Background(), svcCtx)
	resp, err := l.Assets(&types.AssetsRequest{
		Category: "stable", AssetClass: "crypto", Timeframe: "1d", VolThreshold: 2.0,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "STEADY", resp.Items[0].Symbol)
}

func TestAssetsUnknownCategory(t *testing.T) {
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewAssetsLogic(context.Background(), svcCtx)
	_, err := l.Assets(&types.AssetsRequest{
		Category: "winners", AssetClass: "crypto", Timeframe: "1d", VolThreshold: 2.0,
	})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "unsupported category")
	assert.Equal(t, int64(0), hits.Load())
}

func TestAssetsNoSymbolsNoUniverse(t *testing.T) {
	// The crypto provider exists but forex has neither universe nor symbols.
	svcCtx, hits := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewAssetsLogic(context.Background(), svcCtx)
	_, err := l.Assets(&types.AssetsRequest{
		Category: "gainers", AssetClass: "forex", Timeframe: "1d", VolThreshold: 2.0,
	})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "no universe configured for forex")
	assert.Equal(t, int64(0), hits.Load())
}

func TestHealth(t *testing.T) {
	svcCtx, _ := newMarketContext(t, []string{"ALPHA"}, mixedSeries())

	l := logic.NewHealthLogic(context.Background(), svcCtx)
	resp, err := l.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "pricefeed-test is running", resp.Message)
}
