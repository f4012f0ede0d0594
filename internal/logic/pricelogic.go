package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/quote"
)

type PriceLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPriceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PriceLogic {
	return &PriceLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Price looks up one symbol. Upstream failures surface as 404 with the
// result's error message; bad input never reaches a provider.
func (l *PriceLogic) Price(req *types.PriceRequest) (*types.PriceResponse, error) {
	class, err := quote.ParseAssetClass(req.AssetClass)
	if err != nil {
		return nil, apierror.BadRequest(err.Error())
	}
	period, err := quote.ParsePeriod(req.Period)
	if err != nil {
		return nil, apierror.BadRequest(err.Error())
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, apierror.BadRequest("symbol is required")
	}

	res := l.svcCtx.Quotes.GetPrice(l.ctx, class, symbol, period)
	if res.Failed() {
		return nil, apierror.NotFound(res.Err)
	}
	return &types.PriceResponse{
		AssetClass:   string(class),
		Symbol:       symbol,
		Period:       string(period),
		CurrentPrice: res.CurrentPrice,
		Candles:      candleViews(res.Candles),
	}, nil
}
