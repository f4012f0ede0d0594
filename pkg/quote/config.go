package quote

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"pricefeed-api/pkg/confkit"
)

// Config describes the price providers and symbol universes available to the
// application, keyed by asset class.
type Config struct {
	Providers map[string]*ProviderConfig `yaml:"providers"`
	Universe  map[string][]string        `yaml:"universe"`
}

// RangeInterval is one stock chart query granularity: the upstream range
// token paired with the bar interval used inside it.
type RangeInterval struct {
	Range    string `yaml:"range"`
	Interval string `yaml:"interval"`
}

// ProviderConfig represents configuration for a single provider backend.
// Vendor-specific knobs (Ranges, PrimaryURL/FallbackURL, QuoteAsset) are
// ignored by backends that do not use them.
type ProviderConfig struct {
	Type string `yaml:"type"`

	BaseURL     string `yaml:"base_url"`
	PrimaryURL  string `yaml:"primary_url"`
	FallbackURL string `yaml:"fallback_url"`
	QuoteAsset  string `yaml:"quote_asset"`

	Ranges map[string]RangeInterval `yaml:"ranges"`

	TimeoutRaw     string        `yaml:"timeout"`
	Timeout        time.Duration `yaml:"-"`
	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	MaxRetries     int           `yaml:"max_retries"`
}

// ProviderBuilder constructs a Provider for an asset class from configuration.
type ProviderBuilder func(class AssetClass, cfg *ProviderConfig) (Provider, error)

var (
	providerRegistry   = make(map[string]ProviderBuilder)
	providerRegistryMu sync.RWMutex
)

// RegisterProvider registers a provider constructor under a backend type name.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	providerRegistryMu.Lock()
	defer providerRegistryMu.Unlock()
	providerRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupProviderBuilder(typeName string) (ProviderBuilder, bool) {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	builder, ok := providerRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads provider configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads provider configuration from the default project location
// and panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/market.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	for class, provider := range c.Providers {
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[class] = provider
		}
		provider.expandEnv()
		if err := provider.parseDurations(class); err != nil {
			return err
		}
	}
	for class, symbols := range c.Universe {
		c.Universe[class] = normaliseSymbols(symbols)
	}
	return nil
}

func normaliseSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(os.ExpandEnv(sym)))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

func (p *ProviderConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.PrimaryURL = strings.TrimSpace(os.ExpandEnv(p.PrimaryURL))
	p.FallbackURL = strings.TrimSpace(os.ExpandEnv(p.FallbackURL))
	p.QuoteAsset = strings.TrimSpace(os.ExpandEnv(p.QuoteAsset))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
	p.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.HTTPTimeoutRaw))
	for period, ri := range p.Ranges {
		ri.Range = strings.TrimSpace(os.ExpandEnv(ri.Range))
		ri.Interval = strings.TrimSpace(os.ExpandEnv(ri.Interval))
		p.Ranges[period] = ri
	}
}

func (p *ProviderConfig) parseDurations(class string) error {
	if p.TimeoutRaw != "" {
		d, err := time.ParseDuration(p.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("market provider %s: invalid timeout %q: %w", class, p.TimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("market provider %s: timeout must be positive, got %s", class, d)
		}
		p.Timeout = d
	}
	if p.HTTPTimeoutRaw != "" {
		d, err := time.ParseDuration(p.HTTPTimeoutRaw)
		if err != nil {
			return fmt.Errorf("market provider %s: invalid http_timeout %q: %w", class, p.HTTPTimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("market provider %s: http_timeout must be positive, got %s", class, d)
		}
		p.HTTPTimeout = d
	}
	return nil
}

// Validate ensures the configuration is structurally sound: every provider
// key is a supported asset class with a registered backend type, and every
// universe key refers to a supported class.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market config: providers cannot be empty")
	}
	for class, provider := range c.Providers {
		if _, err := ParseAssetClass(class); err != nil {
			return fmt.Errorf("market config: %v", err)
		}
		if err := provider.validate(class); err != nil {
			return err
		}
	}
	for class, symbols := range c.Universe {
		if _, err := ParseAssetClass(class); err != nil {
			return fmt.Errorf("market config: universe: %v", err)
		}
		if len(symbols) == 0 {
			return fmt.Errorf("market config: universe for %s is empty", class)
		}
	}
	return nil
}

func (p *ProviderConfig) validate(class string) error {
	if p == nil {
		return fmt.Errorf("market config: provider %s is nil", class)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf("market config: provider %s must specify type", class)
	}
	if _, ok := lookupProviderBuilder(p.Type); !ok {
		return fmt.Errorf("market config: provider %s has unsupported type %q", class, p.Type)
	}
	return nil
}

// BuildProviders instantiates one provider per configured asset class.
func (c *Config) BuildProviders() (map[AssetClass]Provider, error) {
	result := make(map[AssetClass]Provider, len(c.Providers))
	for key, providerCfg := range c.Providers {
		class, err := ParseAssetClass(key)
		if err != nil {
			return nil, fmt.Errorf("market provider %s: %w", key, err)
		}
		builder, ok := lookupProviderBuilder(providerCfg.Type)
		if !ok {
			return nil, fmt.Errorf("market provider %s: unsupported type %q", key, providerCfg.Type)
		}
		provider, err := builder(class, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("market provider %s: %w", key, err)
		}
		result[class] = provider
	}
	return result, nil
}

// UniverseFor returns the configured symbol universe for a class. The slice
// is a copy; callers may reorder it freely.
func (c *Config) UniverseFor(class AssetClass) []string {
	symbols := c.Universe[string(class)]
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}

// Universes returns all configured universes keyed by parsed asset class,
// in deterministic class order.
func (c *Config) Universes() map[AssetClass][]string {
	out := make(map[AssetClass][]string, len(c.Universe))
	keys := make([]string, 0, len(c.Universe))
	for key := range c.Universe {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		class, err := ParseAssetClass(key)
		if err != nil {
			continue
		}
		out[class] = c.UniverseFor(class)
	}
	return out
}
