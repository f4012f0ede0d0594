package model

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// PriceCandle is one OHLCV bar of the price_candles table. BucketTs is the
// bar's upstream bucket timestamp, not the fetch time.
type PriceCandle struct {
	AssetClass string    `db:"asset_class"`
	Symbol     string    `db:"symbol"`
	Period     string    `db:"period"`
	BucketTs   time.Time `db:"bucket_ts"`
	Open       float64   `db:"open"`
	High       float64   `db:"high"`
	Low        float64   `db:"low"`
	Close      float64   `db:"close"`
	Volume     float64   `db:"volume"`
	CreatedAt  time.Time `db:"created_at"`
}

type (
	// PriceCandlesModel wraps access to the price_candles table.
	PriceCandlesModel interface {
		InsertBatch(ctx context.Context, rows []PriceCandle) error
		ListRecent(ctx context.Context, assetClass, symbol, period string, limit int) ([]PriceCandle, error)
	}

	defaultPriceCandlesModel struct {
		conn sqlx.SqlConn
	}
)

// NewPriceCandlesModel returns a model for the price_candles table.
func NewPriceCandlesModel(conn sqlx.SqlConn) PriceCandlesModel {
	return &defaultPriceCandlesModel{conn: conn}
}

// InsertBatch stores a candle series. Bars already present for the same
// bucket are left untouched, so refetching a window is idempotent.
func (m *defaultPriceCandlesModel) InsertBatch(ctx context.Context, rows []PriceCandle) error {
	const stmt = `
INSERT INTO public.price_candles (asset_class, symbol, period, bucket_ts, open, high, low, close, volume, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
ON CONFLICT (asset_class, symbol, period, bucket_ts) DO NOTHING;`
	for i := range rows {
		row := &rows[i]
		if _, err := m.conn.ExecCtx(ctx, stmt,
			row.AssetClass, row.Symbol, row.Period, row.BucketTs,
			row.Open, row.High, row.Low, row.Close, row.Volume,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListRecent returns up to limit bars for a series, newest first.
func (m *defaultPriceCandlesModel) ListRecent(ctx context.Context, assetClass, symbol, period string, limit int) ([]PriceCandle, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT asset_class, symbol, period, bucket_ts, open, high, low, close, volume, created_at
FROM public.price_candles
WHERE asset_class = $1 AND symbol = $2 AND period = $3
ORDER BY bucket_ts DESC
LIMIT $4`
	var rows []PriceCandle
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, assetClass, symbol, period, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
