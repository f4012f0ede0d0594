package frankfurter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pricefeed-api/pkg/quote"
)

const (
	defaultProviderTimeout = 10 * time.Second
	defaultWindowDays      = 8

	noDataMessage = "No forex rates"
)

// windowDays maps abstract periods to the day-count behind the date window.
// The extra day covers the carry-forward open of the first requested day.
var windowDays = map[quote.Period]int{
	quote.PeriodDay:  2,
	quote.PeriodWeek: 8,
}

func daysForPeriod(period quote.Period) int {
	if days, ok := windowDays[period]; ok {
		return days
	}
	return defaultWindowDays
}

// Provider adapts the Frankfurter rate client to the quote.Provider contract.
type Provider struct {
	client  *Client
	timeout time.Duration
	class   quote.AssetClass
	now     func() time.Time
}

type providerConfig struct {
	timeout      time.Duration
	clientConfig []Option
}

// ProviderOption customises the Frankfurter provider.
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

// NewProvider constructs a forex data provider backed by Frankfurter.
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
		now:     time.Now,
	}
}

func init() {
	quote.RegisterProvider("frankfurter", func(class quote.AssetClass, cfg *quote.ProviderConfig) (quote.Provider, error) {
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

// ParsePair splits a pair symbol such as EURUSD (separators / - _ allowed)
// into its base and quote currencies.
func ParsePair(symbol string) (string, string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(symbol))
	for _, sep := range []string{"/", "-", "_"} {
		cleaned = strings.ReplaceAll(cleaned, sep, "")
	}
	if len(cleaned) != 6 {
		return "", "", fmt.Errorf("invalid forex pair %q", symbol)
	}
	for _, r := range cleaned {
		if r < 'A' || r > 'Z' {
			return "", "", fmt.Errorf("invalid forex pair %q", symbol)
		}
	}
	return cleaned[:3], cleaned[3:], nil
}

// Name implements quote.Provider.
func (p *Provider) Name() string { return "frankfurter" }

// Class implements quote.Provider.
func (p *Provider) Class() quote.AssetClass { return p.class }

// Fetch implements quote.Provider: the pair symbol resolves to a base/quote
// currency window query whose daily rates become synthetic candles.
func (p *Provider) Fetch(ctx context.Context, symbol string, period quote.Period) quote.PriceResult {
	base, quoteCurrency, err := ParsePair(symbol)
	if err != nil {
		return quote.FailedResult(err.Error())
	}

	end := p.now().UTC()
	start := end.AddDate(0, 0, -daysForPeriod(period))

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rates, err := p.client.GetDailyRates(ctx, base, quoteCurrency, start, end)
	if err != nil {
		if errors.Is(err, ErrNoRates) {
			return quote.FailedResult(noDataMessage)
		}
		return quote.FailedResult(err.Error())
	}
	return quote.NewResult(buildCandles(rates))
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
