package yahoo

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefeed-api/pkg/quote"
)

const chartPayload = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "AAPL", "currency": "USD"},
			"timestamp": [1700000000, 1700001800, 1700003600, 1700005400],
			"indicators": {
				"quote": [{
					"open":   [100.0, 101.5, null, 103.0],
					"high":   [101.0, 102.5, null, 104.5],
					"low":    [99.5, 100.5, null, 102.5],
					"close":  [101.0, 102.0, null, 104.0],
					"volume": [1000, 1200, null, 900]
				}]
			}
		}],
		"error": null
	}
}`

const chartErrorPayload = `{
	"chart": {
		"result": null,
		"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
	}
}`

func newChartServer(t *testing.T, payload string, lastURL *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastURL != nil {
			lastURL.Store(r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestClientGetChart(t *testing.T) {
	var lastURL atomic.Value
	server := newChartServer(t, chartPayload, &lastURL)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	candles, err := client.GetChart(context.Background(), "aapl", "5d", "30m")
	require.NoError(t, err)

	// The null slot is skipped, the remaining bars stay ascending.
	require.Len(t, candles, 3)
	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))
	assert.True(t, candles[1].Timestamp.Before(candles[2].Timestamp))
	assert.InDelta(t, 101.0, candles[0].Close, 1e-9)
	assert.InDelta(t, 104.0, candles[2].Close, 1e-9)
	assert.InDelta(t, 103.0, candles[2].Open, 1e-9)
	assert.InDelta(t, 900.0, candles[2].Volume, 1e-9)

	url, _ := lastURL.Load().(string)
	assert.Contains(t, url, "/v8/finance/chart/AAPL", "symbol should be uppercased in the path")
	assert.Contains(t, url, "interval=30m")
	assert.Contains(t, url, "range=5d")
}

func TestClientGetChartSparseBar(t *testing.T) {
	payload := `{
		"chart": {
			"result": [{
				"timestamp": [1700000000],
				"indicators": {"quote": [{"open": [null], "high": [null], "low": [null], "close": [42.5], "volume": [null]}]}
			}],
			"error": null
		}
	}`
	server := newChartServer(t, payload, nil)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	candles, err := client.GetChart(context.Background(), "AAPL", "1d", "5m")
	require.NoError(t, err)
	require.Len(t, candles, 1)

	// Missing OHLC components fall back to the close.
	assert.InDelta(t, 42.5, candles[0].Open, 1e-9)
	assert.InDelta(t, 42.5, candles[0].High, 1e-9)
	assert.InDelta(t, 42.5, candles[0].Low, 1e-9)
	assert.InDelta(t, 0.0, candles[0].Volume, 1e-9)
}

func TestClientGetChartUpstreamError(t *testing.T) {
	server := newChartServer(t, chartErrorPayload, nil)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	_, err := client.GetChart(context.Background(), "NOPE", "5d", "30m")
	require.ErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "delisted")
}

func TestClientGetChartEmptyResult(t *testing.T) {
	server := newChartServer(t, `{"chart": {"result": [], "error": null}}`, nil)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	_, err := client.GetChart(context.Background(), "AAPL", "5d", "30m")
	require.ErrorIs(t, err, ErrNoData)
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chartPayload)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(3), WithLogger(quietLogger()))
	candles, err := client.GetChart(context.Background(), "AAPL", "5d", "30m")
	require.NoError(t, err)
	assert.Len(t, candles, 3)
	assert.Equal(t, int64(3), calls.Load(), "two failures then one success")
}

func TestClientStopsAfterRetryBudget(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(1), WithLogger(quietLogger()))
	_, err := client.GetChart(context.Background(), "AAPL", "5d", "30m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status 500")
	assert.Equal(t, int64(2), calls.Load(), "initial attempt plus one retry")
}

func TestProviderFetchSuccess(t *testing.T) {
	var lastURL atomic.Value
	server := newChartServer(t, chartPayload, &lastURL)
	defer server.Close()

	provider := NewProvider(quote.AssetClassStocks,
		WithClientOptions(WithBaseURL(server.URL), WithLogger(quietLogger())))
	assert.Equal(t, "yahoo", provider.Name())
	assert.Equal(t, quote.AssetClassStocks, provider.Class())

	res := provider.Fetch(context.Background(), "AAPL", quote.PeriodDay)
	require.False(t, res.Failed(), "unexpected failure: %s", res.Err)
	assert.InDelta(t, 104.0, res.CurrentPrice, 1e-9)
	assert.Len(t, res.Candles, 3)

	url, _ := lastURL.Load().(string)
	assert.Contains(t, url, "range=5d", "1d period maps to the 5d chart range")
	assert.Contains(t, url, "interval=30m")
}

func TestProviderFetchRangeOverride(t *testing.T) {
	var lastURL atomic.Value
	server := newChartServer(t, chartPayload, &lastURL)
	defer server.Close()

	provider := NewProvider(quote.AssetClassStocks,
		WithClientOptions(WithBaseURL(server.URL), WithLogger(quietLogger())),
		WithRanges(map[quote.Period]quote.RangeInterval{
			quote.PeriodHour: {Range: "1d", Interval: "1m"},
		}))

	provider.Fetch(context.Background(), "AAPL", quote.PeriodHour)
	url, _ := lastURL.Load().(string)
	assert.Contains(t, url, "interval=1m", "overlay should replace the hourly granularity")

	// Periods absent from the overlay keep their defaults.
	provider.Fetch(context.Background(), "AAPL", quote.PeriodWeek)
	url, _ = lastURL.Load().(string)
	assert.Contains(t, url, "range=1mo")
}

func TestProviderFetchNoDataMessage(t *testing.T) {
	server := newChartServer(t, chartErrorPayload, nil)
	defer server.Close()

	provider := NewProvider(quote.AssetClassStocks,
		WithClientOptions(WithBaseURL(server.URL), WithLogger(quietLogger())))
	res := provider.Fetch(context.Background(), "NOPE", quote.PeriodDay)
	require.True(t, res.Failed())
	assert.Equal(t, "No stock data", res.Err)
	assert.Empty(t, res.Candles)
}

func TestProviderFetchTransportErrorKeepsDetail(t *testing.T) {
	server := newChartServer(t, chartPayload, nil)
	server.Close() // connection refused from here on

	provider := NewProvider(quote.AssetClassStocks,
		WithClientOptions(WithBaseURL(server.URL), WithMaxRetries(0), WithLogger(quietLogger())))
	res := provider.Fetch(context.Background(), "AAPL", quote.PeriodDay)
	require.True(t, res.Failed())
	assert.NotEqual(t, "No stock data", res.Err, "transport failures keep their own message")
	assert.True(t, strings.Contains(res.Err, "connection refused") || strings.Contains(res.Err, "connect"),
		"expected a dial error, got %q", res.Err)
}

func TestProviderFetchTimeoutFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, chartPayload)
	}))
	defer server.Close()

	provider := NewProvider(quote.AssetClassStocks,
		WithTimeout(5*time.Millisecond),
		WithClientOptions(WithBaseURL(server.URL), WithLogger(quietLogger())))
	res := provider.Fetch(context.Background(), "AAPL", quote.PeriodDay)
	require.True(t, res.Failed())
	assert.Contains(t, res.Err, "context deadline exceeded")
}

func TestRangesFromConfigRejectsBadPeriod(t *testing.T) {
	_, err := rangesFromConfig(map[string]quote.RangeInterval{
		"2d": {Range: "5d", Interval: "30m"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid period")

	_, err = rangesFromConfig(map[string]quote.RangeInterval{
		"1d": {Range: "", Interval: "30m"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "range and interval are required")
}
