package yahoo

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

	"pricefeed-api/pkg/quote"
)

const (
	defaultBaseURL          = "https://query1.finance.yahoo.com"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 150 * time.Millisecond

	// Yahoo rejects requests without a browser-looking agent.
	userAgent = "Mozilla/5.0"
)

// ErrNoData indicates the upstream answered without usable chart bars.
var ErrNoData = errors.New("yahoo: no chart data")

// Client wraps the Yahoo Finance v8 chart endpoint.
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

// WithBaseURL overrides the default chart host.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
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

// NewClient constructs a Yahoo chart client.
func NewClient(opts ...Option) *Client {
	httpClient := &http.Client{Timeout: defaultHTTPTimeout}
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = httpClient
	}
	return client
}

// GetChart fetches bars for a symbol at the given range and interval and
// normalizes them into an ascending candle series.
func (c *Client) GetChart(ctx context.Context, symbol, rng, interval string) ([]quote.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("yahoo: empty symbol")
	}
	if rng == "" || interval == "" {
		return nil, errors.New("yahoo: range and interval are required")
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))

	var payload chartResponse
	if err := c.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.candles()
}

// doRequest issues a GET and decodes the body into result, retrying
// transient failures with doubling backoff.
func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("yahoo: build request: %w", err)
		}
		httpReq.Header.Set("User-Agent", userAgent)

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
				lastErr = fmt.Errorf("yahoo: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("yahoo: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			} else {
				if result != nil {
					if err := json.Unmarshal(body, result); err != nil {
						return fmt.Errorf("yahoo: decode response: %w", err)
					}
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			c.logf("yahoo: retrying after error: %v", lastErr)
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
	return fmt.Errorf("yahoo: request failed without error detail")
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
