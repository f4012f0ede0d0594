package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
	"pricefeed-api/pkg/quote/metrics"
)

type LosersLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLosersLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LosersLogic {
	return &LosersLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Losers returns the top movers by ascending percent change.
func (l *LosersLogic) Losers(req *types.RankRequest) (*types.RankedListResponse, error) {
	class, period, err := parseRankParams(req.AssetClass, req.Timeframe, req.Limit)
	if err != nil {
		return nil, err
	}

	quotes := l.svcCtx.Fetcher.FetchTopAssets(l.ctx, class, req.Limit, period)
	ranked := metrics.RankLosers(quotes, req.Limit)
	return &types.RankedListResponse{
		Items:        changeViews(ranked),
		TotalFetched: len(quotes),
	}, nil
}
