// Package provider defines the collaborator interfaces the projection engine
// consumes: exchange-rate and market-data sources, persistence stores, and
// user preferences. Implementations live under infra; retry and fallback
// policy belongs to them, not to the engine.
package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/domain"
)

// RateSnapshot is one day's worth of USD-relative exchange rates:
// 1 USD == Rates[code] units of code. USD itself is implicit and never
// present in the map.
type RateSnapshot struct {
	Date  string // "YYYY-MM-DD", UTC
	Rates map[string]decimal.Decimal
}

// RateProvider fetches the current exchange-rate table.
type RateProvider interface {
	FetchCurrentRates(ctx context.Context) (*RateSnapshot, error)
	Name() string
}

// SecurityPrice is a quote for one unit of a security.
type SecurityPrice struct {
	Price    decimal.Decimal
	Currency string
}

// MarketDataProvider fetches security prices and historical growth rates.
type MarketDataProvider interface {
	// FetchSecurityPrice returns the latest price for a ticker.
	FetchSecurityPrice(ctx context.Context, ticker string) (*SecurityPrice, error)

	// FetchHistoricalGrowth returns the annualized growth rate of a ticker
	// over the given number of years, as a decimal fraction.
	FetchHistoricalGrowth(ctx context.Context, ticker string, years int) (float64, error)
}

// EventStore loads raw money-movement events for a scope.
type EventStore interface {
	LoadEvents(ctx context.Context, scope domain.Scope, from, to time.Time) ([]domain.MoneyEvent, error)
}

// DebtStore loads the debts of a scope.
type DebtStore interface {
	LoadDebts(ctx context.Context, scope domain.Scope) ([]domain.Debt, error)
}

// AssetStore loads the assets of a scope.
type AssetStore interface {
	LoadAssets(ctx context.Context, scope domain.Scope) ([]domain.Asset, error)
}

// ExpenseStore loads externally-linked expense records for a scope.
type ExpenseStore interface {
	LoadLinkedExpenses(ctx context.Context, scope domain.Scope, from, to time.Time) ([]domain.LinkedExpense, error)
}

// Preferences are the user settings the engine needs.
type Preferences struct {
	PreferredCurrency string
}

// PreferenceStore loads the preferences attached to a scope.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, scope domain.Scope) (*Preferences, error)
}

// Store bundles every persistence collaborator the planning service uses.
type Store interface {
	EventStore
	DebtStore
	AssetStore
	ExpenseStore
	PreferenceStore
}
