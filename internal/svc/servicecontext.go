package svc

import (
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "pricefeed-api/internal/cache"
	"pricefeed-api/internal/config"
	"pricefeed-api/internal/model"
	"pricefeed-api/internal/persistence"
	"pricefeed-api/pkg/quote"

	// Imports for side-effects: register provider backends
	_ "pricefeed-api/pkg/quote/providers/coingecko"
	_ "pricefeed-api/pkg/quote/providers/frankfurter"
	_ "pricefeed-api/pkg/quote/providers/ticker"
	_ "pricefeed-api/pkg/quote/providers/yahoo"
)

type ServiceContext struct {
	Config config.Config

	MarketConfig *quote.Config
	Providers    map[quote.AssetClass]quote.Provider
	Quotes       *quote.Service
	Fetcher      *quote.BatchFetcher
	TTL          cachekeys.TTLSet

	// Optional DB layer; everything below stays nil without a DSN.
	DBConn            sqlx.SqlConn
	PriceLatestModel  model.PriceLatestModel
	PriceCandlesModel model.PriceCandlesModel
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}

	marketCfg := c.Market.Value
	if marketCfg == nil {
		marketCfg = config.MustLoadMarket()
	}
	svc.MarketConfig = marketCfg

	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("failed to build price providers: %v", err)
	}
	svc.Providers = providers

	svc.TTL = cachekeys.NewTTLSet(c.TTL)
	resultCache, err := quote.NewResultCache(
		cachekeys.PriceResultTTL(svc.TTL),
		quote.WithKeyFunc(cachekeys.PriceResultKey),
	)
	if err != nil {
		log.Fatalf("failed to init result cache: %v", err)
	}

	// Only mirror to Postgres when a DSN is provided; the serving path never
	// depends on the database.
	var opts []quote.ServiceOption
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn
		svc.PriceLatestModel = model.NewPriceLatestModel(conn)
		svc.PriceCandlesModel = model.NewPriceCandlesModel(conn)
		if rec := persistence.NewService(persistence.Config{
			SQLConn:      conn,
			LatestModel:  svc.PriceLatestModel,
			CandlesModel: svc.PriceCandlesModel,
		}); rec != nil {
			opts = append(opts, quote.WithRecorder(rec))
		}
	}

	svc.Quotes = quote.NewService(providers, resultCache, opts...)
	svc.Fetcher = quote.NewBatchFetcher(svc.Quotes, marketCfg.Universes())
	return svc
}
