package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// Service dispatches lookups to the provider for each asset class and wraps
// them with the shared result cache and optional persistence mirroring.
type Service struct {
	providers map[AssetClass]Provider
	cache     *ResultCache
	recorder  Recorder
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithRecorder mirrors successful uncached fetches to the given store.
func WithRecorder(rec Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = rec
	}
}

// NewService wires providers to the shared cache. A nil cache disables
// caching and sends every call upstream.
func NewService(providers map[AssetClass]Provider, cache *ResultCache, opts ...ServiceOption) *Service {
	s := &Service{providers: providers, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the configured provider for a class.
func (s *Service) Provider(class AssetClass) (Provider, bool) {
	p, ok := s.providers[class]
	return p, ok
}

// GetPrice returns the cached or freshly fetched result for one symbol.
// Like the providers underneath, it never returns an error: misconfiguration
// and upstream trouble both surface as a failed PriceResult.
func (s *Service) GetPrice(ctx context.Context, class AssetClass, symbol string, period Period) PriceResult {
	provider, ok := s.providers[class]
	if !ok {
		return FailedResult(fmt.Sprintf("no provider configured for %s", class))
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return FailedResult("empty symbol")
	}
	if s.cache == nil {
		return s.fetch(ctx, provider, class, symbol, period)
	}
	return s.cache.Take(class, symbol, period, func() PriceResult {
		return s.fetch(ctx, provider, class, symbol, period)
	})
}

func (s *Service) fetch(ctx context.Context, provider Provider, class AssetClass, symbol string, period Period) PriceResult {
	res := provider.Fetch(ctx, symbol, period)
	if !res.Failed() {
		s.record(ctx, class, symbol, period, res)
	}
	return res
}

func (s *Service) record(ctx context.Context, class AssetClass, symbol string, period Period, res PriceResult) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordResult(ctx, class, symbol, period, res); err != nil {
		logx.WithContext(ctx).Errorf("quote: record %s/%s period=%s: %v", class, symbol, period, err)
	}
}
