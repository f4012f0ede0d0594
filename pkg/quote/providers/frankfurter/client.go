package frankfurter

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
)

const (
	defaultBaseURL          = "https://api.frankfurter.app"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 150 * time.Millisecond

	dateLayout = "2006-01-02"
)

// ErrNoRates indicates the upstream answered without rates for the window.
var ErrNoRates = errors.New("frankfurter: no rates")

// DailyRate is one published reference rate. Weekends and holidays are
// absent from the series.
type DailyRate struct {
	Date time.Time
	Rate float64
}

// seriesResponse mirrors the time-series payload: rates keyed by date, then
// by quote currency.
type seriesResponse struct {
	Amount    float64                       `json:"amount"`
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

// Client wraps the Frankfurter exchange-rate time-series endpoint.
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

// NewClient constructs a Frankfurter API client.
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

// GetDailyRates fetches the base→quote reference rates between start and end
// (inclusive), sorted ascending by date.
func (c *Client) GetDailyRates(ctx context.Context, base, quoteCurrency string, start, end time.Time) ([]DailyRate, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quoteCurrency = strings.ToUpper(strings.TrimSpace(quoteCurrency))
	if base == "" || quoteCurrency == "" {
		return nil, errors.New("frankfurter: base and quote currencies are required")
	}
	endpoint := fmt.Sprintf("%s/%s..%s?from=%s&to=%s",
		c.baseURL, start.Format(dateLayout), end.Format(dateLayout),
		url.QueryEscape(base), url.QueryEscape(quoteCurrency))

	var payload seriesResponse
	if err := c.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	rates := make([]DailyRate, 0, len(payload.Rates))
	for dateStr, dayRates := range payload.Rates {
		rate, ok := dayRates[quoteCurrency]
		if !ok || rate == 0 {
			continue
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		rates = append(rates, DailyRate{Date: date.UTC(), Rate: rate})
	}
	if len(rates) == 0 {
		return nil, ErrNoRates
	}
	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Date.Before(rates[j].Date)
	})
	return rates, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("frankfurter: build request: %w", err)
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
				lastErr = fmt.Errorf("frankfurter: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("frankfurter: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			} else {
				if result != nil {
					if err := json.Unmarshal(body, result); err != nil {
						return fmt.Errorf("frankfurter: decode response: %w", err)
					}
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			c.logf("frankfurter: retrying after error: %v", lastErr)
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
	return fmt.Errorf("frankfurter: request failed without error detail")
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
