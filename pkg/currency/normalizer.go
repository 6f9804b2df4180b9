// Package currency converts amounts between currencies by pivoting through
// USD, and collapses mixed-currency collections into a single target
// currency.
//
// A missing rate is a hard failure (ErrRateUnavailable), never a silent 1:1
// conversion. Rounding to 2 decimal places happens only at presentation
// boundaries, not inside intermediate sums.
package currency

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/ratecache"
)

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	Converted decimal.Decimal
	// Rate is the factor applied to the original amount:
	// Converted == amount * Rate.
	Rate decimal.Decimal
}

// Convert converts amount from one currency to another using a USD-pivot
// rate table (1 USD == rates[code] units of code). Same-currency conversion
// short-circuits with rate 1. Returns ErrRateUnavailable if either leg's
// rate is absent.
func Convert(amount decimal.Decimal, from, to string, rates map[string]decimal.Decimal) (*Conversion, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return &Conversion{Converted: amount, Rate: decimal.NewFromInt(1)}, nil
	}

	one := decimal.NewFromInt(1)

	fromRate := one
	if from != ratecache.USD {
		r, ok := rates[from]
		if !ok || !r.IsPositive() {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, from)
		}
		fromRate = r
	}

	toRate := one
	if to != ratecache.USD {
		r, ok := rates[to]
		if !ok || !r.IsPositive() {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, to)
		}
		toRate = r
	}

	// amount -> USD -> target.
	rate := toRate.Div(fromRate)
	return &Conversion{
		Converted: amount.Div(fromRate).Mul(toRate),
		Rate:      rate,
	}, nil
}

// Sum converts every entry to the target currency using the given rate table
// and returns the exact (unrounded) total. Any unresolvable entry fails the
// whole sum.
func Sum(entries []domain.MoneyEntry, target string, rates map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range entries {
		conv, err := Convert(e.Amount, e.Currency, target, rates)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(conv.Converted)
	}
	return total, nil
}

// Normalizer converts mixed-currency collections using the daily rate cache.
type Normalizer struct {
	rates  *ratecache.Cache
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer backed by the given rate cache.
func NewNormalizer(rates *ratecache.Cache, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{rates: rates, logger: logger}
}

// SumAll resolves the union of currencies present in entries plus the target
// once, converts every entry, and returns the total in the target currency.
func (n *Normalizer) SumAll(ctx context.Context, entries []domain.MoneyEntry, target string) (decimal.Decimal, error) {
	codes := Codes(entries)
	codes = append(codes, target)
	rates := n.rates.GetRates(ctx, codes)
	return Sum(entries, target, rates)
}

// Codes returns the distinct currency codes present in entries, upper-cased.
func Codes(entries []domain.MoneyEntry) []string {
	seen := make(map[string]struct{}, 4)
	codes := make([]string, 0, 4)
	for _, e := range entries {
		code := strings.ToUpper(e.Currency)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
