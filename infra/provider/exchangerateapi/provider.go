// Package exchangerateapi implements the RateProvider collaborator against
// an exchangerate-api.com v6-style endpoint. Retry policy lives here, not in
// the engine.
package exchangerateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/config"
	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/provider"
	"github.com/telephant/firewise/pkg/ratecache"
)

// Provider fetches USD-based exchange rates over HTTP.
type Provider struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger
}

// responseV6 is the v6 payload of the ExchangeRate API.
// See: https://www.exchangerate-api.com/docs/standard-requests
type responseV6 struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// New creates the provider from config.
func New(cfg *config.ExchangeRateApi, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		apiKey:     cfg.ApiKey,
		baseURL:    cfg.ApiUrl,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger,
	}
}

// Name identifies the provider in logs.
func (p *Provider) Name() string { return "exchangerate-api" }

// FetchCurrentRates fetches the full USD-based rate table, retrying
// transient failures with a short linear backoff.
func (p *Provider) FetchCurrentRates(ctx context.Context) (*provider.RateSnapshot, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, ratecache.USD)

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		snap, err := p.fetch(ctx, url)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		p.logger.Warn("rate fetch attempt failed",
			"provider", p.Name(), "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, lastErr)
}

func (p *Provider) fetch(ctx context.Context, url string) (*provider.RateSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp responseV6
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if apiResp.Result != "success" {
		return nil, fmt.Errorf("API returned result=%s error=%s", apiResp.Result, apiResp.ErrorType)
	}

	rates := make(map[string]decimal.Decimal, len(apiResp.ConversionRates))
	for code, rate := range apiResp.ConversionRates {
		rates[code] = decimal.NewFromFloat(rate)
	}

	return &provider.RateSnapshot{
		Date:  time.Unix(apiResp.TimeLastUpdateUnix, 0).UTC().Format(domain.DateLayout),
		Rates: rates,
	}, nil
}

var _ provider.RateProvider = (*Provider)(nil)
