package quote

import "context"

// Recorder hooks allow the service to mirror fetched prices to an external
// store. Implementations are best-effort: errors are logged by the caller
// and never affect the serving path.
type Recorder interface {
	// RecordResult persists a successful lookup (latest price plus candles).
	RecordResult(ctx context.Context, class AssetClass, symbol string, period Period, res PriceResult) error
}
