package ticker

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"pricefeed-api/pkg/quote"
)

const (
	defaultPrimaryURL  = "https://api.binance.com"
	defaultFallbackURL = "https://api.binance.us"
	defaultQuoteAsset  = "USDT"

	defaultProviderTimeout = 10 * time.Second

	noDataMessage = "No crypto data"
)

// Provider is the degenerate crypto backend: a single latest price from a
// primary exchange ticker, falling back to a secondary exchange when the
// primary is unavailable. The result carries one synthetic candle, so the
// PriceResult shape stays uniform for callers.
type Provider struct {
	primary    *Client
	fallback   *Client
	timeout    time.Duration
	quoteAsset string
	class      quote.AssetClass
	now        func() time.Time
}

type providerConfig struct {
	timeout      time.Duration
	primaryURL   string
	fallbackURL  string
	quoteAsset   string
	clientConfig []Option
}

// ProviderOption customises the ticker provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithEndpoints overrides the primary and fallback exchange base URLs. An
// empty fallback disables the secondary attempt.
func WithEndpoints(primary, fallback string) ProviderOption {
	return func(cfg *providerConfig) {
		if primary != "" {
			cfg.primaryURL = primary
		}
		cfg.fallbackURL = fallback
	}
}

// WithQuoteAsset overrides the pair suffix appended to symbols (USDT by
// default, so BTC queries BTCUSDT).
func WithQuoteAsset(asset string) ProviderOption {
	return func(cfg *providerConfig) {
		if asset != "" {
			cfg.quoteAsset = strings.ToUpper(strings.TrimSpace(asset))
		}
	}
}

// WithClientOptions passes options to both exchange clients.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// NewProvider constructs the primary/fallback ticker provider.
func NewProvider(class quote.AssetClass, opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout:     defaultProviderTimeout,
		primaryURL:  defaultPrimaryURL,
		fallbackURL: defaultFallbackURL,
		quoteAsset:  defaultQuoteAsset,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Provider{
		primary:    NewClient(cfg.primaryURL, cfg.clientConfig...),
		timeout:    cfg.timeout,
		quoteAsset: cfg.quoteAsset,
		class:      class,
		now:        time.Now,
	}
	if cfg.fallbackURL != "" {
		p.fallback = NewClient(cfg.fallbackURL, cfg.clientConfig...)
	}
	return p
}

func init() {
	quote.RegisterProvider("ticker", func(class quote.AssetClass, cfg *quote.ProviderConfig) (quote.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, WithMaxRetries(cfg.MaxRetries))
		}
		if cfg.PrimaryURL != "" || cfg.FallbackURL != "" {
			primary := cfg.PrimaryURL
			if primary == "" {
				primary = defaultPrimaryURL
			}
			opts = append(opts, WithEndpoints(primary, cfg.FallbackURL))
		}
		if cfg.QuoteAsset != "" {
			opts = append(opts, WithQuoteAsset(cfg.QuoteAsset))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		return NewProvider(class, opts...), nil
	})
}

// Name implements quote.Provider.
func (p *Provider) Name() string { return "ticker" }

// Class implements quote.Provider.
func (p *Provider) Class() quote.AssetClass { return p.class }

// Fetch implements quote.Provider. The period is accepted for interface
// symmetry but ignored: ticker endpoints only expose the latest trade.
func (p *Provider) Fetch(ctx context.Context, symbol string, period quote.Period) quote.PriceResult {
	pair := strings.ToUpper(strings.TrimSpace(symbol)) + p.quoteAsset
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	price, err := p.primary.GetPrice(ctx, pair)
	if err != nil && p.fallback != nil && ctx.Err() == nil {
		logx.WithContext(ctx).Infof("ticker: primary failed for %s, trying fallback: %v", pair, err)
		price, err = p.fallback.GetPrice(ctx, pair)
	}
	if err != nil {
		logx.WithContext(ctx).Errorf("ticker: all endpoints failed for %s: %v", pair, err)
		return quote.FailedResult(noDataMessage)
	}

	candle := quote.Candle{
		Timestamp: p.now().UTC(),
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
	}
	return quote.NewResult([]quote.Candle{candle})
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
