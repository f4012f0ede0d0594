package frankfurter

import "pricefeed-api/pkg/quote"

// buildCandles turns single daily rates into synthetic OHLC candles: each
// day's high, low, and close all equal the published rate, while the open
// carries the previous day's close forward. The first day opens at its own
// rate. Downstream change and volatility math is defined over this shape;
// do not reshape it into real OHLC.
func buildCandles(rates []DailyRate) []quote.Candle {
	candles := make([]quote.Candle, len(rates))
	for i, r := range rates {
		open := r.Rate
		if i > 0 {
			open = rates[i-1].Rate
		}
		candles[i] = quote.Candle{
			Timestamp: r.Date,
			Open:      open,
			High:      r.Rate,
			Low:       r.Rate,
			Close:     r.Rate,
		}
	}
	return candles
}
