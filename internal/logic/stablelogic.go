package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/quote"
	"pricefeed-api/pkg/quote/metrics"
)

type StableLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStableLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StableLogic {
	return &StableLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Stable returns assets whose volatility sits below the threshold, least
// volatile first. The timeframe is restricted to 1d and 1w.
func (l *StableLogic) Stable(req *types.StableRequest) (*types.RankedListResponse, error) {
	class, period, err := parseRankParams(req.AssetClass, req.Timeframe, req.Limit)
	if err != nil {
		return nil, err
	}
	if period == quote.PeriodHour {
		return nil, apierror.BadRequest("timeframe must be 1d or 1w")
	}
	if err := validateVolThreshold(req.VolThreshold); err != nil {
		return nil, err
	}

	quotes := l.svcCtx.Fetcher.FetchTopAssets(l.ctx, class, req.Limit, period)
	ranked := metrics.RankStable(quotes, req.Limit, req.VolThreshold)
	return &types.RankedListResponse{
		Items:        volatilityViews(ranked),
		TotalFetched: len(quotes),
	}, nil
}
