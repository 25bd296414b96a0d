package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("currency api key is not configured")
	ErrUpstream      = errors.New("currency api request failed")
)

// Rate is one exchange rate against the upstream base currency.
type Rate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// Client 汇率查询客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

type latestResponse struct {
	Data map[string]float64 `json:"data"`
}

// Latest fetches the latest rates for a comma separated currency list.
// Results are ordered by currency code.
func (c *Client) Latest(ctx context.Context, currencies string) ([]Rate, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing currency api url: %w", err)
	}
	q := u.Query()
	q.Set("apikey", c.apiKey)
	q.Set("currencies", currencies)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, body)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: response has no data", ErrUpstream)
	}

	rates := make([]Rate, 0, len(payload.Data))
	for code, rate := range payload.Data {
		rates = append(rates, Rate{Currency: code, Rate: rate})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Currency < rates[j].Currency })
	return rates, nil
}
