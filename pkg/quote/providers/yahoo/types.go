package yahoo

import (
	"fmt"
	"sort"
	"time"

	"pricefeed-api/pkg/quote"
)

// chartResponse mirrors the subset of the v8 chart payload the service reads.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []quoteBlock `json:"quote"`
	} `json:"indicators"`
}

// quoteBlock carries the parallel OHLCV arrays. Entries are null when the
// upstream has no bar for a slot.
type quoteBlock struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// candles flattens the payload into ascending candles, skipping null bars.
func (r *chartResponse) candles() ([]quote.Candle, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoData, r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	result := r.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	block := result.Indicators.Quote[0]
	candles := make([]quote.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		candle, ok := block.barAt(i)
		if !ok {
			continue
		}
		candle.Timestamp = time.Unix(ts, 0).UTC()
		candles = append(candles, candle)
	}
	if len(candles) == 0 {
		return nil, ErrNoData
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// barAt assembles one candle from the parallel arrays. Bars without a close
// are upstream null slots and are dropped; missing open/high/low fall back
// to the close so a sparse bar still carries a price.
func (b quoteBlock) barAt(i int) (quote.Candle, bool) {
	closeVal, ok := at(b.Close, i)
	if !ok || closeVal == 0 {
		return quote.Candle{}, false
	}
	candle := quote.Candle{Close: closeVal}
	if v, ok := at(b.Open, i); ok {
		candle.Open = v
	} else {
		candle.Open = closeVal
	}
	if v, ok := at(b.High, i); ok {
		candle.High = v
	} else {
		candle.High = closeVal
	}
	if v, ok := at(b.Low, i); ok {
		candle.Low = v
	} else {
		candle.Low = closeVal
	}
	if v, ok := at(b.Volume, i); ok {
		candle.Volume = v
	}
	return candle, true
}

func at(values []*float64, i int) (float64, bool) {
	if i < 0 || i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
