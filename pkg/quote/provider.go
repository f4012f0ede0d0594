package quote

import "context"

// Provider fetches normalized price data for one asset class.
type Provider interface {
	// Name identifies the configured backend, e.g. "yahoo" or "coingecko".
	Name() string
	// Class returns the asset class this provider serves.
	Class() AssetClass
	// Fetch returns the price series for a symbol over the given period.
	// Failures never escape as errors or panics; every failure path ends in
	// an error-carrying PriceResult so batch callers stay isolated from
	// individual upstream trouble.
	Fetch(ctx context.Context, symbol string, period Period) PriceResult
}
