package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"pricefeed-api/internal/model"
	"pricefeed-api/pkg/quote"
)

// Service mirrors fetched price results into Postgres. It sits behind the
// quote.Recorder interface so the fetch path stays storage-agnostic.
type Service struct {
	sqlConn      sqlx.SqlConn
	latestModel  model.PriceLatestModel
	candlesModel model.PriceCandlesModel
}

// Config enumerates dependencies required to persist price results.
type Config struct {
	SQLConn      sqlx.SqlConn
	LatestModel  model.PriceLatestModel
	CandlesModel model.PriceCandlesModel
}

// NewService wires a price persistence service. Returns nil when the SQL
// connection is missing.
func NewService(cfg Config) quote.Recorder {
	if cfg.SQLConn == nil {
		return nil
	}
	return &Service{
		sqlConn:      cfg.SQLConn,
		latestModel:  cfg.LatestModel,
		candlesModel: cfg.CandlesModel,
	}
}

// RecordResult upserts the latest price row and appends the candle series.
// Failed results and blank symbols are ignored.
func (s *Service) RecordResult(ctx context.Context, class quote.AssetClass, symbol string, period quote.Period, res quote.PriceResult) error {
	if s == nil || s.sqlConn == nil || res.Failed() || strings.TrimSpace(symbol) == "" {
		return nil
	}

	if s.latestModel != nil {
		row := &model.PriceLatest{
			AssetClass: string(class),
			Symbol:     symbol,
			Price:      res.CurrentPrice,
			Period:     string(period),
			FetchedAt:  time.Now().UTC(),
		}
		if err := s.latestModel.Upsert(ctx, row); err != nil {
			return err
		}
	}

	if s.candlesModel == nil || len(res.Candles) == 0 {
		return nil
	}
	rows := make([]model.PriceCandle, len(res.Candles))
	for i, c := range res.Candles {
		rows[i] = model.PriceCandle{
			AssetClass: string(class),
			Symbol:     symbol,
			Period:     string(period),
			BucketTs:   c.Timestamp,
			Open:       c.Open,
			High:       c.High,
			Low:        c.Low,
			Close:      c.Close,
			Volume:     c.Volume,
		}
	}
	return s.candlesModel.InsertBatch(ctx, rows)
}
