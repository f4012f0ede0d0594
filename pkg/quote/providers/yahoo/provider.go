package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pricefeed-api/pkg/quote"
)

const (
	defaultProviderTimeout = 10 * time.Second

	// noDataMessage is the data-error surfaced when the upstream answers
	// without bars; transport failures keep their own message.
	noDataMessage = "No stock data"
)

// defaultRanges maps abstract periods to chart query granularities. Override
// per deployment through the provider config ranges block.
var defaultRanges = map[quote.Period]quote.RangeInterval{
	quote.PeriodHour: {Range: "1d", Interval: "5m"},
	quote.PeriodDay:  {Range: "5d", Interval: "30m"},
	quote.PeriodWeek: {Range: "1mo", Interval: "1h"},
}

// Provider adapts the Yahoo chart client to the quote.Provider contract.
type Provider struct {
	client  *Client
	timeout time.Duration
	ranges  map[quote.Period]quote.RangeInterval
	class   quote.AssetClass
}

type providerConfig struct {
	timeout      time.Duration
	clientConfig []Option
	ranges       map[quote.Period]quote.RangeInterval
}

// ProviderOption customises the Yahoo provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying chart client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// WithRanges overlays the period lookup table; periods absent from the
// overlay keep their defaults.
func WithRanges(ranges map[quote.Period]quote.RangeInterval) ProviderOption {
	return func(cfg *providerConfig) {
		for period, ri := range ranges {
			cfg.ranges[period] = ri
		}
	}
}

// NewProvider constructs a stock data provider backed by Yahoo charts.
func NewProvider(class quote.AssetClass, opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout: defaultProviderTimeout,
		ranges:  make(map[quote.Period]quote.RangeInterval, len(defaultRanges)),
	}
	for period, ri := range defaultRanges {
		cfg.ranges[period] = ri
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Provider{
		client:  NewClient(cfg.clientConfig...),
		timeout: cfg.timeout,
		ranges:  cfg.ranges,
		class:   class,
	}
}

func init() {
	quote.RegisterProvider("yahoo", func(class quote.AssetClass, cfg *quote.ProviderConfig) (quote.Provider, error) {
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
		if len(cfg.Ranges) > 0 {
			ranges, err := rangesFromConfig(cfg.Ranges)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithRanges(ranges))
		}
		return NewProvider(class, opts...), nil
	})
}

func rangesFromConfig(raw map[string]quote.RangeInterval) (map[quote.Period]quote.RangeInterval, error) {
	out := make(map[quote.Period]quote.RangeInterval, len(raw))
	for key, ri := range raw {
		period, err := quote.ParsePeriod(key)
		if err != nil {
			return nil, fmt.Errorf("yahoo: ranges: %w", err)
		}
		if ri.Range == "" || ri.Interval == "" {
			return nil, fmt.Errorf("yahoo: ranges[%s]: range and interval are required", key)
		}
		out[period] = ri
	}
	return out, nil
}

// Name implements quote.Provider.
func (p *Provider) Name() string { return "yahoo" }

// Class implements quote.Provider.
func (p *Provider) Class() quote.AssetClass { return p.class }

// Fetch implements quote.Provider: it maps the period onto a chart query and
// converts every failure into an error-carrying result.
func (p *Provider) Fetch(ctx context.Context, symbol string, period quote.Period) quote.PriceResult {
	ri, ok := p.ranges[period]
	if !ok {
		ri = p.ranges[quote.PeriodWeek]
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	candles, err := p.client.GetChart(ctx, symbol, ri.Range, ri.Interval)
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
