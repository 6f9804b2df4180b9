package exchangerateapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telephant/firewise/pkg/config"
	"github.com/telephant/firewise/pkg/domain"
)

func newTestProvider(url string, retries int) *Provider {
	return New(&config.ExchangeRateApi{
		ApiKey:      "test-key",
		ApiUrl:      url,
		HTTPTimeout: time.Second,
		MaxRetries:  retries,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchCurrentRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key/latest/USD", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"result": "success",
			"time_last_update_unix": 1717200000,
			"base_code": "USD",
			"conversion_rates": {"USD": 1, "EUR": 0.92, "JPY": 149.5}
		}`))
	}))
	defer srv.Close()

	snap, err := newTestProvider(srv.URL, 0).FetchCurrentRates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", snap.Date)
	assert.True(t, snap.Rates["EUR"].Equal(decimal.NewFromFloat(0.92)))
	assert.Len(t, snap.Rates, 3)
}

func TestFetchCurrentRates_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"result":"success","conversion_rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	snap, err := newTestProvider(srv.URL, 3).FetchCurrentRates(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Len(t, snap.Rates, 1)
}

func TestFetchCurrentRates_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL, 1).FetchCurrentRates(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchCurrentRates_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL, 0).FetchCurrentRates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-key")
}
