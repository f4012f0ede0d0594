// Package metrics derives ranking statistics from normalized price series.
package metrics

import (
	"math"
	"sort"

	"pricefeed-api/pkg/quote"
)

// PercentChange returns the relative change between the first and last price
// as a percentage. Series with fewer than two points or a zero first price
// yield 0 rather than an error.
func PercentChange(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	first := prices[0]
	if first == 0 {
		return 0
	}
	last := prices[len(prices)-1]
	return (last - first) / first * 100
}

// VolatilityPct returns the coefficient of variation as a percentage:
// population standard deviation over mean, times 100. Series with fewer
// than two points or a zero mean yield 0.
func VolatilityPct(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var mean float64
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(prices))
	return math.Sqrt(variance) / mean * 100
}

// ChangeRanked pairs a quote with its percent change for output ordering.
type ChangeRanked struct {
	quote.AssetQuote
	PctChange float64 `json:"pct_change"`
}

// VolatilityRanked pairs a quote with its volatility for output ordering.
type VolatilityRanked struct {
	quote.AssetQuote
	VolatilityPct float64 `json:"volatility_pct"`
}

// RankGainers orders quotes by descending percent change and keeps the top
// limit entries. The full set is ranked with no sign filter: when fewer than
// limit assets rose, negative movers fill the tail.
func RankGainers(quotes []quote.AssetQuote, limit int) []ChangeRanked {
	ranked := attachChange(quotes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PctChange > ranked[j].PctChange
	})
	return truncate(ranked, limit)
}

// RankLosers orders quotes by ascending percent change and keeps the top
// limit entries.
func RankLosers(quotes []quote.AssetQuote, limit int) []ChangeRanked {
	ranked := attachChange(quotes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PctChange < ranked[j].PctChange
	})
	return truncate(ranked, limit)
}

// RankStable keeps quotes whose volatility is strictly below threshold,
// ordered ascending, truncated to limit.
func RankStable(quotes []quote.AssetQuote, limit int, threshold float64) []VolatilityRanked {
	return truncate(FilterStable(quotes, threshold), limit)
}

// FilterGainers keeps positive movers only, descending. Serves the bulk
// category endpoint, which filters a combined list instead of ranking a
// fixed-size one.
func FilterGainers(quotes []quote.AssetQuote) []ChangeRanked {
	ranked := attachChange(quotes)
	kept := ranked[:0]
	for _, r := range ranked {
		if r.PctChange > 0 {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].PctChange > kept[j].PctChange
	})
	return kept
}

// FilterLosers keeps negative movers only, ascending.
func FilterLosers(quotes []quote.AssetQuote) []ChangeRanked {
	ranked := attachChange(quotes)
	kept := ranked[:0]
	for _, r := range ranked {
		if r.PctChange < 0 {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].PctChange < kept[j].PctChange
	})
	return kept
}

// FilterStable keeps quotes with volatility strictly below threshold,
// ascending, without a size cap.
func FilterStable(quotes []quote.AssetQuote, threshold float64) []VolatilityRanked {
	kept := make([]VolatilityRanked, 0, len(quotes))
	for _, q := range quotes {
		v := VolatilityPct(q.Prices)
		if v < threshold {
			kept = append(kept, VolatilityRanked{AssetQuote: q, VolatilityPct: v})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].VolatilityPct < kept[j].VolatilityPct
	})
	return kept
}

func attachChange(quotes []quote.AssetQuote) []ChangeRanked {
	ranked := make([]ChangeRanked, len(quotes))
	for i, q := range quotes {
		ranked[i] = ChangeRanked{AssetQuote: q, PctChange: PercentChange(q.Prices)}
	}
	return ranked
}

func truncate[T any](list []T, limit int) []T {
	if limit >= 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
