package model

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// PriceLatest is one row of the price_latest table: the most recent price
// seen for a symbol within an asset class.
type PriceLatest struct {
	AssetClass string    `db:"asset_class"`
	Symbol     string    `db:"symbol"`
	Price      float64   `db:"price"`
	Period     string    `db:"period"`
	FetchedAt  time.Time `db:"fetched_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type (
	// PriceLatestModel wraps access to the price_latest table.
	PriceLatestModel interface {
		Upsert(ctx context.Context, row *PriceLatest) error
		FindOne(ctx context.Context, assetClass, symbol string) (*PriceLatest, error)
	}

	defaultPriceLatestModel struct {
		conn sqlx.SqlConn
	}
)

// NewPriceLatestModel returns a model for the price_latest table.
func NewPriceLatestModel(conn sqlx.SqlConn) PriceLatestModel {
	return &defaultPriceLatestModel{conn: conn}
}

func (m *defaultPriceLatestModel) Upsert(ctx context.Context, row *PriceLatest) error {
	const stmt = `
INSERT INTO public.price_latest (asset_class, symbol, price, period, fetched_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (asset_class, symbol) DO UPDATE SET
    price = EXCLUDED.price,
    period = EXCLUDED.period,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = NOW();`
	_, err := m.conn.ExecCtx(ctx, stmt, row.AssetClass, row.Symbol, row.Price, row.Period, row.FetchedAt)
	return err
}

func (m *defaultPriceLatestModel) FindOne(ctx context.Context, assetClass, symbol string) (*PriceLatest, error) {
	const query = `
SELECT asset_class, symbol, price, period, fetched_at, created_at, updated_at
FROM public.price_latest
WHERE asset_class = $1 AND symbol = $2
LIMIT 1`
	var row PriceLatest
	if err := m.conn.QueryRowCtx(ctx, &row, query, assetClass, symbol); err != nil {
		return nil, err
	}
	return &row, nil
}
