package quote

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
)

const (
	defaultResultTTL  = 60 * time.Second
	defaultCacheLimit = 4096
)

// KeyFunc builds the cache key for one lookup.
type KeyFunc func(class AssetClass, symbol string, period Period) string

func defaultCacheKey(class AssetClass, symbol string, period Period) string {
	return fmt.Sprintf("%s:%s:%s", class, symbol, period)
}

// ResultCache is the shared TTL store for price lookups. Values are whole
// PriceResults, failed ones included: a broken upstream is not re-queried
// until its entry expires. Expiry and LRU eviction are handled by the
// underlying go-zero cache.
type ResultCache struct {
	store *collection.Cache
	keyFn KeyFunc
}

// CacheOption customises a ResultCache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	limit int
	keyFn KeyFunc
}

// WithCacheLimit bounds the number of live entries.
func WithCacheLimit(limit int) CacheOption {
	return func(o *cacheOptions) {
		if limit > 0 {
			o.limit = limit
		}
	}
}

// WithKeyFunc overrides the cache key scheme.
func WithKeyFunc(fn KeyFunc) CacheOption {
	return func(o *cacheOptions) {
		if fn != nil {
			o.keyFn = fn
		}
	}
}

// NewResultCache builds a cache whose entries live for ttl (60s when
// non-positive).
func NewResultCache(ttl time.Duration, opts ...CacheOption) (*ResultCache, error) {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	o := cacheOptions{limit: defaultCacheLimit, keyFn: defaultCacheKey}
	for _, opt := range opts {
		opt(&o)
	}
	store, err := collection.NewCache(ttl, collection.WithName("quote"), collection.WithLimit(o.limit))
	if err != nil {
		return nil, fmt.Errorf("quote: new result cache: %w", err)
	}
	return &ResultCache{store: store, keyFn: o.keyFn}, nil
}

// Take returns the cached result for the key, or runs fetch once and caches
// whatever it returns. Concurrent callers on the same key share a single
// fetch.
func (c *ResultCache) Take(class AssetClass, symbol string, period Period, fetch func() PriceResult) PriceResult {
	val, err := c.store.Take(c.keyFn(class, symbol, period), func() (any, error) {
		return fetch(), nil
	})
	if err != nil {
		return FailedResult(err.Error())
	}
	res, ok := val.(PriceResult)
	if !ok {
		return FailedResult("cache: unexpected entry type")
	}
	return res
}

// Get returns the cached result without fetching.
func (c *ResultCache) Get(class AssetClass, symbol string, period Period) (PriceResult, bool) {
	val, ok := c.store.Get(c.keyFn(class, symbol, period))
	if !ok {
		return PriceResult{}, false
	}
	res, ok := val.(PriceResult)
	return res, ok
}

// Set stores a result under the standard TTL. Exposed for warm-up paths and
// tests; the serving path goes through Take.
func (c *ResultCache) Set(class AssetClass, symbol string, period Period, res PriceResult) {
	c.store.Set(c.keyFn(class, symbol, period), res)
}
