// Package domain holds the core types of the projection engine: raw
// money-movement records supplied by the persistence collaborator and the
// transient computation units derived from them.
//
// Invariants:
//   - The engine never mutates these records; it is a pure read/compute layer.
//   - Monetary amounts are decimals in major units (e.g. 12.34 USD).
//   - Months are "YYYY-MM", dates "YYYY-MM-DD", both UTC.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthLayout is the calendar-month format used throughout the engine.
const MonthLayout = "2006-01"

// DateLayout is the calendar-date format used for rate snapshots.
const DateLayout = "2006-01-02"

// MoneyEntry is an amount in a specific currency. It has no identity and is
// used only as a transient computation unit.
type MoneyEntry struct {
	Amount   decimal.Decimal
	Currency string
}

// MonthlyDataPoint is one aggregated, already currency-normalized figure for
// a calendar month.
type MonthlyDataPoint struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// EventKind distinguishes money flowing in from money flowing out.
type EventKind string

const (
	EventIncome  EventKind = "income"
	EventExpense EventKind = "expense"
)

// Income categories that are always treated as passive, regardless of
// whether the event is linked to a source asset.
const (
	CategoryDividend = "dividend"
	CategoryRental   = "rental"
	CategoryInterest = "interest"
)

// CategoryAdjustment marks bookkeeping corrections. Adjustments never enter
// statistics.
const CategoryAdjustment = "adjustment"

// MoneyEvent is a raw money-movement record supplied by the persistence
// collaborator.
type MoneyEvent struct {
	ID            uuid.UUID
	Kind          EventKind
	Category      string
	Amount        decimal.Decimal
	Currency      string
	OccurredAt    time.Time
	SourceAssetID *uuid.UUID
	Reviewed      bool
}

// IsPassiveIncome reports whether the event belongs in the passive-income
// bucket: it references a source asset, or its category is one of the fixed
// passive categories.
func (e MoneyEvent) IsPassiveIncome() bool {
	if e.Kind != EventIncome {
		return false
	}
	if e.SourceAssetID != nil {
		return true
	}
	switch e.Category {
	case CategoryDividend, CategoryRental, CategoryInterest:
		return true
	}
	return false
}

// Month returns the event's calendar month in UTC.
func (e MoneyEvent) Month() string {
	return e.OccurredAt.UTC().Format(MonthLayout)
}

// LinkedExpense is an expense record synced from an external source and
// merged into the expense series by month.
type LinkedExpense struct {
	Month    string
	Amount   decimal.Decimal
	Currency string
}

// Debt is an interest-bearing liability. The engine only computes schedules
// for it; balance changes are persisted elsewhere.
type Debt struct {
	ID             uuid.UUID
	Name           string
	Principal      decimal.Decimal
	InterestRate   float64 // annual, as a decimal fraction (0.06 == 6%)
	MonthlyPayment decimal.Decimal
	CurrentBalance decimal.Decimal
	Currency       string
}

// AssetType categorizes an asset for growth-rate defaults.
type AssetType string

const (
	AssetStock      AssetType = "stock"
	AssetBond       AssetType = "bond"
	AssetRealEstate AssetType = "real_estate"
	AssetCash       AssetType = "cash"
	AssetOther      AssetType = "other"
)

// Asset is a holding contributing to net worth. Ticker-bearing assets are
// priced via the market-data collaborator; the rest are taken at their
// recorded balance.
type Asset struct {
	ID               uuid.UUID
	Name             string
	Type             AssetType
	Balance          decimal.Decimal
	Currency         string
	Ticker           string
	Shares           decimal.Decimal
	CustomGrowthRate *float64
}

// ScopeKind partitions data between an individual and a family ledger.
type ScopeKind string

const (
	ScopePersonal ScopeKind = "personal"
	ScopeFamily   ScopeKind = "family"
)

// Scope identifies one ownership partition. Which records belong to a scope
// is an access-control concern decided upstream.
type Scope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

// Key returns the cache key for the scope.
func (s Scope) Key() string {
	return string(s.Kind) + ":" + s.ID.String()
}
