package ticker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 2
	defaultRetryBackoffBase = 150 * time.Millisecond
)

// ErrNoPrice indicates the exchange answered without a usable price.
var ErrNoPrice = errors.New("ticker: no price")

// tickerResponse is the exchange ticker payload; the price arrives as a
// JSON string.
type tickerResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price,string"`
}

// Client fetches single latest prices from one exchange ticker endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	logger     *log.Logger
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a ticker client for one exchange base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// GetPrice returns the latest traded price for an exchange pair symbol such
// as BTCUSDT.
func (c *Client) GetPrice(ctx context.Context, pair string) (float64, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return 0, errors.New("ticker: empty pair")
	}
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.baseURL, url.QueryEscape(pair))

	var payload tickerResponse
	if err := c.doRequest(ctx, endpoint, &payload); err != nil {
		return 0, err
	}
	if payload.Price <= 0 {
		return 0, ErrNoPrice
	}
	return payload.Price, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("ticker: build request: %w", err)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("ticker: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("ticker: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			} else {
				if result != nil {
					if err := json.Unmarshal(body, result); err != nil {
						return fmt.Errorf("ticker: decode response: %w", err)
					}
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			c.logf("ticker: retrying after error: %v", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
			continue
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("ticker: request failed without error detail")
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
