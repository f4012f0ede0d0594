package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"pricefeed-api/pkg/quote"
)

const (
	defaultBaseURL          = "https://api.coingecko.com"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 150 * time.Millisecond
)

// ErrNoData indicates the upstream answered without OHLC rows.
var ErrNoData = errors.New("coingecko: no ohlc data")

// Client wraps the CoinGecko v3 OHLC endpoint.
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

// WithBaseURL overrides the default API host.
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

// NewClient constructs a CoinGecko API client.
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

// GetOHLC fetches the USD-denominated OHLC series for a coin id over the
// given day-count window. Rows arrive as [tsMillis, open, high, low, close];
// volume is not published and stays 0.
func (c *Client) GetOHLC(ctx context.Context, id string, days int) ([]quote.Candle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("coingecko: empty coin id")
	}
	if days <= 0 {
		days = 1
	}
	endpoint := fmt.Sprintf("%s/api/v3/coins/%s/ohlc?vs_currency=usd&days=%d",
		c.baseURL, url.PathEscape(id), days)

	var rows [][]float64
	if err := c.doRequest(ctx, endpoint, &rows); err != nil {
		return nil, err
	}

	candles := make([]quote.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, quote.Candle{
			Timestamp: time.UnixMilli(int64(row[0])).UTC(),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
		})
	}
	if len(candles) == 0 {
		return nil, ErrNoData
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// doRequest issues a GET and decodes the body into result, retrying
// transient failures with doubling backoff.
func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("coingecko: build request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")

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
				lastErr = fmt.Errorf("coingecko: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("coingecko: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			} else {
				if result != nil {
					if err := json.Unmarshal(body, result); err != nil {
						return fmt.Errorf("coingecko: decode response: %w", err)
					}
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			c.logf("coingecko: retrying after error: %v", lastErr)
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
	return fmt.Errorf("coingecko: request failed without error detail")
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
