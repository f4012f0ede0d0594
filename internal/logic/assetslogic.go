package logic

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/quote"
	"pricefeed-api/pkg/quote/metrics"
)

type AssetsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAssetsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AssetsLogic {
	return &AssetsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Assets filters one combined quote list by category. Unlike the ranked
// endpoints it applies a sign filter: gainers keeps positive movers only,
// losers negative only. Symbols defaults to the configured universe.
func (l *AssetsLogic) Assets(req *types.AssetsRequest) (*types.AssetsResponse, error) {
	class, err := quote.ParseAssetClass(req.AssetClass)
	if err != nil {
		return nil, apierror.BadRequest(err.Error())
	}
	period, err := quote.ParsePeriod(req.Timeframe)
	if err != nil {
		return nil, apierror.BadRequest(err.Error())
	}
	if err := validateVolThreshold(req.VolThreshold); err != nil {
		return nil, err
	}
	switch req.Category {
	case "gainers", "losers", "stable":
	default:
		return nil, apierror.BadRequest(fmt.Sprintf("unsupported category %q", req.Category))
	}

	symbols := splitSymbols(req.Symbols)
	if len(symbols) == 0 {
		symbols = l.svcCtx.Fetcher.Universe(class)
	}
	if len(symbols) == 0 {
		return nil, apierror.BadRequest(fmt.Sprintf("no symbols requested and no universe configured for %s", class))
	}

	quotes := l.svcCtx.Fetcher.FetchAssets(l.ctx, class, symbols, period)

	var items []types.RankedAssetView
	switch req.Category {
	case "gainers":
		items = changeViews(metrics.FilterGainers(quotes))
	case "losers":
		items = changeViews(metrics.FilterLosers(quotes))
	case "stable":
		items = volatilityViews(metrics.FilterStable(quotes, req.VolThreshold))
	}
	return &types.AssetsResponse{
		Category:     req.Category,
		AssetClass:   string(class),
		Items:        items,
		TotalFetched: len(quotes),
	}, nil
}
