package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// IRateProvider is the external exchange-rate source. The production
// implementation calls a third-party HTTP API; tests inject a fake.
type IRateProvider interface {
	FetchLatestRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error)
}

// HTTPRateProvider fetches rates from an exchange-rate API over HTTP. The
// endpoint and API key come from configuration; the client has a bounded
// timeout so a hung provider cannot stall a refresh indefinitely.
type HTTPRateProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPRateProvider(baseURL, apiKey string) *HTTPRateProvider {
	return &HTTPRateProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type providerResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchLatestRates calls the provider's latest-rates endpoint once and
// returns the currency -> rate mapping relative to baseCurrency.
func (p *HTTPRateProvider) FetchLatestRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/latest?%s", p.baseURL, url.Values{
		"access_key": {p.apiKey},
		"base":       {baseCurrency},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build rate provider request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not decode rate provider response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rate provider returned no rates")
	}

	return payload.Rates, nil
}
