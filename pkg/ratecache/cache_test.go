package ratecache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/provider"
)

type fakeRateProvider struct {
	calls atomic.Int64
	delay time.Duration
	err   error
	rates map[string]decimal.Decimal
}

func (f *fakeRateProvider) FetchCurrentRates(_ context.Context) (*provider.RateSnapshot, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &provider.RateSnapshot{
		Date:  time.Now().UTC().Format(domain.DateLayout),
		Rates: f.rates,
	}, nil
}

func (f *fakeRateProvider) Name() string { return "fake" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetRates_ColdMissFetchesOnce(t *testing.T) {
	p := &fakeRateProvider{rates: map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.9),
		"JPY": decimal.NewFromFloat(150),
	}}
	c := New(p, discardLogger())

	rates := c.GetRates(context.Background(), []string{"EUR", "JPY", "USD"})
	require.Len(t, rates, 3)
	assert.True(t, rates["EUR"].Equal(decimal.NewFromFloat(0.9)))
	assert.True(t, rates["USD"].Equal(decimal.NewFromInt(1)))

	// Warm hits do not refetch.
	_ = c.GetRates(context.Background(), []string{"EUR"})
	_ = c.GetRates(context.Background(), []string{"JPY"})
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestGetRates_ConcurrentMissesCollapseToOneFetch(t *testing.T) {
	p := &fakeRateProvider{
		delay: 20 * time.Millisecond,
		rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.9)},
	}
	c := New(p, discardLogger())

	const callers = 50
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			rates := c.GetRates(context.Background(), []string{"EUR"})
			assert.True(t, rates["EUR"].Equal(decimal.NewFromFloat(0.9)))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, p.calls.Load(), "N concurrent misses must trigger exactly 1 fetch")
}

func TestGetRates_RefreshFailureReturnsEmptyMap(t *testing.T) {
	p := &fakeRateProvider{err: domain.ErrUpstreamUnavailable}
	c := New(p, discardLogger())

	rates := c.GetRates(context.Background(), []string{"EUR"})
	assert.Empty(t, rates)

	// The failed flight is cleared: the next call attempts a fresh fetch.
	p.err = nil
	p.rates = map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.9)}
	rates = c.GetRates(context.Background(), []string{"EUR"})
	require.Len(t, rates, 1)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestGetRates_StaleEntryRefreshesNextDay(t *testing.T) {
	p := &fakeRateProvider{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.9)}}
	c := New(p, discardLogger())

	day := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return day }

	_ = c.GetRates(context.Background(), []string{"EUR"})
	_ = c.GetRates(context.Background(), []string{"EUR"})
	assert.EqualValues(t, 1, p.calls.Load())

	day = day.AddDate(0, 0, 1)
	_ = c.GetRates(context.Background(), []string{"EUR"})
	assert.EqualValues(t, 2, p.calls.Load(), "entry from yesterday is a miss")
}

func TestGetRates_MissingCodeIsOmitted(t *testing.T) {
	p := &fakeRateProvider{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.9)}}
	c := New(p, discardLogger())

	rates := c.GetRates(context.Background(), []string{"EUR", "XXX"})
	assert.Len(t, rates, 1)
	_, ok := rates["XXX"]
	assert.False(t, ok, "unresolvable code must be absent, not defaulted")
}

func TestSnapshot_IncludesImplicitUSD(t *testing.T) {
	p := &fakeRateProvider{rates: map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.9),
		"USD": decimal.NewFromInt(1), // providers sometimes echo the base; it is dropped
	}}
	c := New(p, discardLogger())

	snap := c.Snapshot(context.Background())
	require.Len(t, snap, 2)
	assert.True(t, snap["USD"].Equal(decimal.NewFromInt(1)))
}
