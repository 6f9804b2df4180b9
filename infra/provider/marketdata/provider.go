// Package marketdata implements the MarketDataProvider collaborator against
// a quote API exposing latest prices and historical annualized growth.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/config"
	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/provider"
)

// Provider fetches security quotes over HTTP.
type Provider struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger
}

type quoteResponse struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type growthResponse struct {
	Symbol string  `json:"symbol"`
	Years  int     `json:"years"`
	CAGR   float64 `json:"cagr"`
}

// New creates the provider from config.
func New(cfg *config.MarketDataApi, logger *slog.Logger) *Provider {
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

// FetchSecurityPrice returns the latest quote for a ticker.
func (p *Provider) FetchSecurityPrice(ctx context.Context, ticker string) (*provider.SecurityPrice, error) {
	var quote quoteResponse
	err := p.getJSON(ctx, "/v1/quote", url.Values{"symbol": {ticker}}, &quote)
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 || quote.Currency == "" {
		return nil, fmt.Errorf("invalid quote for %s: price=%v currency=%q",
			ticker, quote.Price, quote.Currency)
	}
	return &provider.SecurityPrice{
		Price:    decimal.NewFromFloat(quote.Price),
		Currency: quote.Currency,
	}, nil
}

// FetchHistoricalGrowth returns the annualized growth rate of a ticker over
// the given lookback.
func (p *Provider) FetchHistoricalGrowth(ctx context.Context, ticker string, years int) (float64, error) {
	var growth growthResponse
	err := p.getJSON(ctx, "/v1/growth", url.Values{
		"symbol": {ticker},
		"years":  {strconv.Itoa(years)},
	}, &growth)
	if err != nil {
		return 0, err
	}
	return growth.CAGR, nil
}

func (p *Provider) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := p.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}
		if err := p.doOnce(ctx, endpoint, out); err != nil {
			lastErr = err
			p.logger.Warn("market data fetch attempt failed",
				"path", path, "attempt", attempt+1, "error", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, lastErr)
}

func (p *Provider) doOnce(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching market data: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ provider.MarketDataProvider = (*Provider)(nil)
