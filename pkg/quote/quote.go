// Package quote normalizes price data from heterogeneous upstream providers
// into a common candle representation shared by the API, cache, and batch
// fetch layers.
package quote

import (
	"fmt"
	"strings"
	"time"
)

// AssetClass selects the provider family and symbol universe for a lookup.
type AssetClass string

const (
	AssetClassStocks AssetClass = "stocks"
	AssetClassCrypto AssetClass = "crypto"
	AssetClassForex  AssetClass = "forex"
)

// AssetClasses returns the closed set of supported classes.
func AssetClasses() []AssetClass {
	return []AssetClass{AssetClassStocks, AssetClassCrypto, AssetClassForex}
}

// ParseAssetClass validates a user-supplied asset class token.
func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(strings.ToLower(strings.TrimSpace(s))) {
	case AssetClassStocks:
		return AssetClassStocks, nil
	case AssetClassCrypto:
		return AssetClassCrypto, nil
	case AssetClassForex:
		return AssetClassForex, nil
	default:
		return "", fmt.Errorf("unsupported asset class %q", s)
	}
}

// Period is an abstract lookback window. Providers translate it into their
// own query parameters (range+interval, day counts, or date windows).
type Period string

const (
	PeriodHour Period = "1h"
	PeriodDay  Period = "1d"
	PeriodWeek Period = "1w"
)

// ParsePeriod validates a user-supplied period token.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodHour:
		return PeriodHour, nil
	case PeriodDay:
		return PeriodDay, nil
	case PeriodWeek:
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("invalid period %q", s)
	}
}

// Candle is one time-bucketed OHLCV record. Series are ordered by strictly
// increasing Timestamp; Volume is 0 when the upstream does not report it.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceResult is the outcome of a single provider lookup. Either Err is set
// and the result carries no data, or Candles is non-empty and CurrentPrice
// equals the close of the last candle. Use NewResult/FailedResult so the
// invariant holds by construction.
type PriceResult struct {
	CurrentPrice float64  `json:"current_price"`
	Candles      []Candle `json:"candles"`
	Err          string   `json:"error,omitempty"`
}

// NewResult builds a successful result from a normalized candle series.
func NewResult(candles []Candle) PriceResult {
	if len(candles) == 0 {
		return FailedResult("no price data")
	}
	return PriceResult{
		CurrentPrice: candles[len(candles)-1].Close,
		Candles:      candles,
	}
}

// FailedResult builds an error-carrying result. Upstream data errors and
// transport failures share this shape so neither can abort a batch.
func FailedResult(msg string) PriceResult {
	if msg == "" {
		msg = "unknown provider failure"
	}
	return PriceResult{Err: msg}
}

// Failed reports whether the lookup produced no usable data.
func (r PriceResult) Failed() bool {
	return r.Err != ""
}

// AssetQuote is the batch-fetch projection of a successful PriceResult:
// chronological closes plus the latest price.
type AssetQuote struct {
	Symbol       string    `json:"symbol"`
	Prices       []float64 `json:"prices"`
	CurrentPrice float64   `json:"current_price"`
}

// Quote projects the result for a symbol. Failed results never produce a
// quote; the second return is false for them.
func (r PriceResult) Quote(symbol string) (AssetQuote, bool) {
	if r.Failed() || len(r.Candles) == 0 {
		return AssetQuote{}, false
	}
	prices := make([]float64, len(r.Candles))
	for i, c := range r.Candles {
		prices[i] = c.Close
	}
	return AssetQuote{
		Symbol:       symbol,
		Prices:       prices,
		CurrentPrice: r.CurrentPrice,
	}, true
}
