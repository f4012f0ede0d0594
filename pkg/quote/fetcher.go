package quote

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"
)

// overFetchFactor pads ranking queries: fetching 3x the requested limit
// absorbs expected per-symbol failures before filtering.
const overFetchFactor = 3

// BatchFetcher fans out cached lookups across a symbol universe and keeps
// only successful projections. One symbol's failure never affects siblings.
type BatchFetcher struct {
	svc      *Service
	universe map[AssetClass][]string
}

// NewBatchFetcher builds a fetcher over the configured per-class universes.
func NewBatchFetcher(svc *Service, universe map[AssetClass][]string) *BatchFetcher {
	if universe == nil {
		universe = make(map[AssetClass][]string)
	}
	return &BatchFetcher{svc: svc, universe: universe}
}

// Universe returns a copy of the configured symbols for a class.
func (f *BatchFetcher) Universe(class AssetClass) []string {
	symbols := f.universe[class]
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}

// FetchTopAssets queries a prefix of min(3·limit, universe size) symbols for
// the class and returns the quotes that succeeded, in arrival order.
func (f *BatchFetcher) FetchTopAssets(ctx context.Context, class AssetClass, limit int, period Period) []AssetQuote {
	universe := f.universe[class]
	if limit <= 0 || len(universe) == 0 {
		return nil
	}
	n := limit * overFetchFactor
	if n > len(universe) {
		n = len(universe)
	}
	return f.FetchAssets(ctx, class, universe[:n], period)
}

// FetchAssets queries an explicit symbol list, all symbols concurrently,
// and returns the successful quotes in arrival order.
func (f *BatchFetcher) FetchAssets(ctx context.Context, class AssetClass, symbols []string, period Period) []AssetQuote {
	if len(symbols) == 0 {
		return nil
	}
	quotes, err := mr.MapReduce(func(source chan<- string) {
		for _, symbol := range symbols {
			source <- symbol
		}
	}, func(symbol string, writer mr.Writer[AssetQuote], cancel func(error)) {
		res := f.svc.GetPrice(ctx, class, symbol, period)
		q, ok := res.Quote(symbol)
		if !ok {
			logx.WithContext(ctx).Debugf("quote: batch drop %s/%s period=%s: %s", class, symbol, period, res.Err)
			return
		}
		writer.Write(q)
	}, func(pipe <-chan AssetQuote, writer mr.Writer[[]AssetQuote], cancel func(error)) {
		out := make([]AssetQuote, 0, len(symbols))
		for q := range pipe {
			out = append(out, q)
		}
		writer.Write(out)
	}, mr.WithContext(ctx), mr.WithWorkers(len(symbols)))
	if err != nil {
		logx.WithContext(ctx).Errorf("quote: batch fetch %s period=%s: %v", class, period, err)
		return nil
	}
	return quotes
}
