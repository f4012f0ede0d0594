package logic

import (
	"fmt"
	"strings"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/quote"
	"pricefeed-api/pkg/quote/metrics"
)

func candleViews(candles []quote.Candle) []types.CandleView {
	views := make([]types.CandleView, len(candles))
	for i, c := range candles {
		views[i] = types.CandleView{
			Timestamp: c.Timestamp.Unix(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		}
	}
	return views
}

func changeViews(ranked []metrics.ChangeRanked) []types.RankedAssetView {
	views := make([]types.RankedAssetView, len(ranked))
	for i, r := range ranked {
		pct := r.PctChange
		views[i] = types.RankedAssetView{
			Symbol:       r.Symbol,
			Prices:       r.Prices,
			CurrentPrice: r.CurrentPrice,
			PctChange:    &pct,
		}
	}
	return views
}

func volatilityViews(ranked []metrics.VolatilityRanked) []types.RankedAssetView {
	views := make([]types.RankedAssetView, len(ranked))
	for i, r := range ranked {
		vol := r.VolatilityPct
		views[i] = types.RankedAssetView{
			Symbol:        r.Symbol,
			Prices:        r.Prices,
			CurrentPrice:  r.CurrentPrice,
			VolatilityPct: &vol,
		}
	}
	return views
}

// parseRankParams validates the inputs shared by every ranking endpoint.
// Validation failures never reach a provider.
func parseRankParams(assetClass, timeframe string, limit int) (quote.AssetClass, quote.Period, error) {
	class, err := quote.ParseAssetClass(assetClass)
	if err != nil {
		return "", "", apierror.BadRequest(err.Error())
	}
	period, err := quote.ParsePeriod(timeframe)
	if err != nil {
		return "", "", apierror.BadRequest(err.Error())
	}
	if limit < 1 || limit > 50 {
		return "", "", apierror.BadRequest(fmt.Sprintf("limit must be between 1 and 50, got %d", limit))
	}
	return class, period, nil
}

func validateVolThreshold(v float64) error {
	if v < 0 || v > 50 {
		return apierror.BadRequest(fmt.Sprintf("vol_threshold must be between 0 and 50, got %g", v))
	}
	return nil
}

func splitSymbols(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
