package coingecko

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pricefeed-api/pkg/quote"
)

const (
	defaultProviderTimeout = 10 * time.Second

	noDataMessage = "No crypto data"
)

// dayCounts maps abstract periods to the OHLC window the aggregator expects.
// CoinGecko serves sub-daily granularity only inside the 1-day window, so
// both 1h and 1d resolve to it.
var dayCounts = map[quote.Period]int{
	quote.PeriodHour: 1,
	quote.PeriodDay:  1,
	quote.PeriodWeek: 7,
}

func daysForPeriod(period quote.Period) int {
	if days, ok := dayCounts[period]; ok {
		return days
	}
	return 1
}

// Provider adapts the CoinGecko OHLC client to the quote.Provider contract.
type Provider struct {
	client  *Client
	timeout time.Duration
	class   quote.AssetClass
}

type providerConfig struct {
	timeout      time.Duration
	clientConfig []Option
}

// ProviderOption customises the CoinGecko provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying API client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// NewProvider constructs a crypto data provider backed by CoinGecko OHLC.
func NewProvider(class quote.AssetClass, opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Provider{
		client:  NewClient(cfg.clientConfig...),
		timeout: cfg.timeout,
		class:   class,
	}
}

func init() {
	quote.RegisterProvider("coingecko", func(class quote.AssetClass, cfg *quote.ProviderConfig) (quote.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, WithBaseURL(cfg.BaseURL))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, WithMaxRetries(cfg.MaxRetries))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		return NewProvider(class, opts...), nil
	})
}

// Name implements quote.Provider.
func (p *Provider) Name() string { return "coingecko" }

// Class implements quote.Provider.
func (p *Provider) Class() quote.AssetClass { return p.class }

// Fetch implements quote.Provider: the symbol resolves through the coin id
// map and the period through the day-count table; every failure ends in an
// error-carrying result.
func (p *Provider) Fetch(ctx context.Context, symbol string, period quote.Period) quote.PriceResult {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	candles, err := p.client.GetOHLC(ctx, CoinID(symbol), daysForPeriod(period))
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return quote.FailedResult(noDataMessage)
		}
		return quote.FailedResult(err.Error())
	}
	return quote.NewResult(candles)
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
