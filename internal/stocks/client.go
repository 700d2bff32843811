package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrUpstreamUnavailable is returned when the quote provider cannot
	// be reached or answers with a non-2xx status.
	ErrUpstreamUnavailable = errors.New("Unable to fetch stock data")

	// ErrNoData is returned when the provider has no data for a symbol.
	// Finnhub reports unknown symbols as all-zero open/high/low.
	ErrNoData = errors.New("no data found for symbol")
)

// Quote holds a single stock quote.
type Quote struct {
	Symbol        string  `json:"symbol"`
	OpeningPrice  float64 `json:"opening_price"`
	CurrentPrice  float64 `json:"current_price"`
	HighPrice     float64 `json:"high_price"`
	LowPrice      float64 `json:"low_price"`
	PreviousClose float64 `json:"previous_close"`
}

// finnhubQuote is the provider's wire format for /quote.
type finnhubQuote struct {
	Open          float64 `json:"o"`
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	PreviousClose float64 `json:"pc"`
}

// Client fetches quotes from the Finnhub HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetQuote fetches the current quote for a symbol. The call applies its
// own timeout via the underlying http.Client and holds no locks.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?%s", c.baseURL, url.Values{
		"symbol": {symbol},
		"token":  {c.apiKey},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var raw finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	// Finnhub answers 200 with zeroed open/high/low for unknown symbols.
	if raw.Open == 0 && raw.High == 0 && raw.Low == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return &Quote{
		Symbol:        symbol,
		OpeningPrice:  raw.Open,
		CurrentPrice:  raw.Current,
		HighPrice:     raw.High,
		LowPrice:      raw.Low,
		PreviousClose: raw.PreviousClose,
	}, nil
}
