package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedCurrency is returned for any currency outside the CAD/USD pair.
var ErrUnsupportedCurrency = errors.New("unsupported currency conversion")

// CounterCurrency returns the other side of the supported pair.
func CounterCurrency(currency string) (string, error) {
	switch strings.ToUpper(currency) {
	case "CAD":
		return "USD", nil
	case "USD":
		return "CAD", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
}

// Fetcher returns the rate converting one unit of from into its counter currency.
type Fetcher interface {
	Rate(ctx context.Context, from string) (decimal.Decimal, error)
}

// Client fetches rates from an open.er-api.com compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new rate client.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

type latestResponse struct {
	Result    string                     `json:"result"`
	BaseCode  string                     `json:"base_code"`
	ErrorType string                     `json:"error-type"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Rate returns the rate converting one unit of from into its counter currency.
// Unsupported currencies fail before any request is sent.
func (c *Client) Rate(ctx context.Context, from string) (decimal.Decimal, error) {
	to, err := CounterCurrency(from)
	if err != nil {
		return decimal.Zero, err
	}
	from = strings.ToUpper(from)

	endpoint := fmt.Sprintf("%s/latest/%s", c.baseURL, url.PathEscape(from))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch %s rate: %w", from, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("failed to fetch %s rate: status %d", from, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode %s rate: %w", from, err)
	}
	if body.Result != "success" {
		return decimal.Zero, fmt.Errorf("rate provider returned %q for %s: %s", body.Result, from, body.ErrorType)
	}

	rate, ok := body.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate provider has no %s rate for %s", to, from)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate provider returned non-positive %s/%s rate %s", from, to, rate)
	}
	return rate, nil
}
