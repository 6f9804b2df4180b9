// Package ratecache maintains a process-wide, daily-refreshing table of
// USD-relative exchange rates.
//
// The cache is keyed by the UTC calendar date. A miss (no entry, or an entry
// from a previous day) triggers exactly one upstream fetch even under
// concurrent callers: the first caller starts the refresh and every
// concurrent caller awaits the same in-flight result. A failed refresh
// yields an empty map so downstream conversions for unresolvable currencies
// fail closed instead of silently assuming a 1:1 rate.
package ratecache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/provider"
)

// USD is the pivot currency. Its rate is implicitly 1 and never stored.
const USD = "USD"

type entry struct {
	date  string // UTC "YYYY-MM-DD" the entry was fetched on
	rates map[string]decimal.Decimal
}

// Cache is a daily exchange-rate cache with single-flight refresh.
type Cache struct {
	provider provider.RateProvider
	logger   *slog.Logger

	mu      sync.RWMutex
	current *entry

	inflight singleflight.Group

	// now is injectable for tests.
	now func() time.Time
}

// New creates a rate cache backed by the given provider.
func New(p provider.RateProvider, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		provider: p,
		logger:   logger,
		now:      time.Now,
	}
}

// GetRates returns USD-relative rates for the requested currency codes,
// refreshing the cache if today's entry is missing. Codes with no resolvable
// rate are absent from the result; USD always resolves to 1. A refresh
// failure returns an empty map, never an error.
func (c *Cache) GetRates(ctx context.Context, codes []string) map[string]decimal.Decimal {
	today := c.today()

	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()

	if cur == nil || cur.date != today {
		refreshed, err := c.refresh(ctx, today)
		if err != nil {
			c.logger.Warn("rate refresh failed, conversions will fail closed",
				"provider", c.provider.Name(), "error", err)
			return map[string]decimal.Decimal{}
		}
		cur = refreshed
	}

	out := make(map[string]decimal.Decimal, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(code)
		if code == USD {
			out[code] = decimal.NewFromInt(1)
			continue
		}
		if rate, ok := cur.rates[code]; ok {
			out[code] = rate
		}
	}
	return out
}

// Snapshot returns the full rate table for today, refreshing if needed.
// Used where the set of needed currencies is not known up front.
func (c *Cache) Snapshot(ctx context.Context) map[string]decimal.Decimal {
	today := c.today()

	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()

	if cur == nil || cur.date != today {
		refreshed, err := c.refresh(ctx, today)
		if err != nil {
			return map[string]decimal.Decimal{}
		}
		cur = refreshed
	}

	out := make(map[string]decimal.Decimal, len(cur.rates)+1)
	for code, rate := range cur.rates {
		out[code] = rate
	}
	out[USD] = decimal.NewFromInt(1)
	return out
}

// refresh collapses concurrent misses for the same date into one upstream
// fetch. singleflight clears the in-flight handle once the call settles, so
// a failed refresh is retried on the next miss rather than cached.
func (c *Cache) refresh(ctx context.Context, today string) (*entry, error) {
	v, err, shared := c.inflight.Do(today, func() (any, error) {
		// A concurrent caller may have completed the refresh while we
		// waited on the flight group.
		c.mu.RLock()
		cur := c.current
		c.mu.RUnlock()
		if cur != nil && cur.date == today {
			return cur, nil
		}

		snap, err := c.provider.FetchCurrentRates(ctx)
		if err != nil {
			return nil, err
		}

		fresh := &entry{date: today, rates: normalize(snap.Rates)}
		c.mu.Lock()
		c.current = fresh
		c.mu.Unlock()

		c.logger.Info("exchange rates refreshed",
			"provider", c.provider.Name(),
			"date", snap.Date,
			"currencies", len(fresh.rates))
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("rate refresh shared with concurrent caller", "date", today)
	}
	return v.(*entry), nil
}

func (c *Cache) today() string {
	return c.now().UTC().Format(domain.DateLayout)
}

// normalize upper-cases codes and drops non-positive rates. USD is the
// implicit pivot and is never stored.
func normalize(rates map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		code = strings.ToUpper(code)
		if code == USD || !rate.IsPositive() {
			continue
		}
		out[code] = rate
	}
	return out
}
