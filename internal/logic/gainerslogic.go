package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/quote/metrics"
)

type GainersLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGainersLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GainersLogic {
	return &GainersLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Gainers returns the top movers by descending percent change. The ranking
// does not filter by sign, so a down market still fills the list.
func (l *GainersLogic) Gainers(req *types.RankRequest) (*types.RankedListResponse, error) {
	class, period, err := parseRankParams(req.AssetClass, req.Timeframe, req.Limit)
	if err != nil {
		return nil, err
	}

	quotes := l.svcCtx.Fetcher.FetchTopAssets(l.ctx, class, req.Limit, period)
	ranked := metrics.RankGainers(quotes, req.Limit)
	return &types.RankedListResponse{
		Items:        changeViews(ranked),
		TotalFetched: len(quotes),
	}, nil
}
