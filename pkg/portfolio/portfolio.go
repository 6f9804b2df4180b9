// Package portfolio values a scope's asset list in one target currency and
// resolves the growth rate the runway simulation compounds with.
package portfolio

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/currency"
	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/provider"
	"github.com/telephant/firewise/pkg/ratecache"
)

// HistoricalGrowthYears is the lookback used when a growth rate has to be
// fetched from market data.
const HistoricalGrowthYears = 5

// Type-based annual growth defaults, applied when an asset carries no custom
// rate.
var defaultGrowthRates = map[domain.AssetType]float64{
	domain.AssetStock:      0.07,
	domain.AssetBond:       0.03,
	domain.AssetRealEstate: 0.035,
	domain.AssetCash:       0,
}

// AssetValue is one asset's resolved value and growth rate.
type AssetValue struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       domain.AssetType `json:"type"`
	Value      decimal.Decimal  `json:"value"`
	GrowthRate float64          `json:"growth_rate"`
}

// Valuation is the portfolio rolled up in the target currency.
type Valuation struct {
	Currency string          `json:"currency"`
	NetWorth decimal.Decimal `json:"net_worth"`
	// WeightedGrowthRate is the asset-value-weighted average of each
	// asset's resolved growth rate.
	WeightedGrowthRate float64      `json:"weighted_growth_rate"`
	Assets             []AssetValue `json:"assets"`
}

// Valuer prices assets via the market-data collaborator and the daily rate
// cache.
type Valuer struct {
	market provider.MarketDataProvider
	rates  *ratecache.Cache
	logger *slog.Logger
}

// NewValuer creates a Valuer.
func NewValuer(market provider.MarketDataProvider, rates *ratecache.Cache, logger *slog.Logger) *Valuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Valuer{market: market, rates: rates, logger: logger}
}

// Value prices every asset in the target currency. Ticker-bearing assets
// with a share count are quoted live; a quote failure falls back to the
// recorded balance rather than failing the valuation. Assets whose currency
// cannot be resolved are omitted.
func (v *Valuer) Value(ctx context.Context, assets []domain.Asset, target string) *Valuation {
	target = strings.ToUpper(target)
	if target == "" {
		target = ratecache.USD
	}

	entries := make([]domain.MoneyEntry, len(assets))
	for i, a := range assets {
		entries[i] = v.price(ctx, a)
	}

	codes := currency.Codes(entries)
	codes = append(codes, target)
	rates := v.rates.GetRates(ctx, codes)

	out := &Valuation{Currency: target, NetWorth: decimal.Zero}
	total := decimal.Zero
	weighted := decimal.Zero

	for i, a := range assets {
		conv, err := currency.Convert(entries[i].Amount, entries[i].Currency, target, rates)
		if err != nil {
			v.logger.Warn("omitting asset with unresolvable currency",
				"asset", a.Name, "currency", entries[i].Currency)
			continue
		}

		rate := v.growthRate(ctx, a)
		value := conv.Converted

		total = total.Add(value)
		weighted = weighted.Add(value.Mul(decimal.NewFromFloat(rate)))
		out.Assets = append(out.Assets, AssetValue{
			ID:         a.ID.String(),
			Name:       a.Name,
			Type:       a.Type,
			Value:      value.Round(2),
			GrowthRate: rate,
		})
	}

	out.NetWorth = total.Round(2)
	if total.IsPositive() {
		out.WeightedGrowthRate, _ = weighted.Div(total).Float64()
	}
	return out
}

// price resolves an asset's market value in its native currency.
func (v *Valuer) price(ctx context.Context, a domain.Asset) domain.MoneyEntry {
	if a.Ticker != "" && a.Shares.IsPositive() {
		quote, err := v.market.FetchSecurityPrice(ctx, a.Ticker)
		if err == nil {
			return domain.MoneyEntry{
				Amount:   quote.Price.Mul(a.Shares),
				Currency: quote.Currency,
			}
		}
		v.logger.Warn("quote unavailable, falling back to recorded balance",
			"ticker", a.Ticker, "error", err)
	}
	return domain.MoneyEntry{Amount: a.Balance, Currency: a.Currency}
}

// growthRate resolves an asset's annual growth rate:
// custom rate, then type default, then fetched historical rate.
func (v *Valuer) growthRate(ctx context.Context, a domain.Asset) float64 {
	if a.CustomGrowthRate != nil {
		return *a.CustomGrowthRate
	}
	if rate, ok := defaultGrowthRates[a.Type]; ok {
		return rate
	}
	if a.Ticker != "" {
		rate, err := v.market.FetchHistoricalGrowth(ctx, a.Ticker, HistoricalGrowthYears)
		if err == nil {
			return rate
		}
		v.logger.Warn("historical growth unavailable, assuming flat",
			"ticker", a.Ticker, "error", err)
	}
	return 0
}
