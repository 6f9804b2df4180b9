package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MoneyEvent represents a persisted money-movement record.
type MoneyEvent struct {
	gorm.Model
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ScopeKind     string          `gorm:"type:varchar(16);not null;index:idx_events_scope"`
	ScopeID       uuid.UUID       `gorm:"type:uuid;index:idx_events_scope"`
	Kind          string          `gorm:"type:varchar(16);not null"`
	Category      string          `gorm:"type:varchar(64)"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,8)"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	OccurredAt    time.Time       `gorm:"index"`
	SourceAssetID *uuid.UUID      `gorm:"type:uuid"`
	Reviewed      bool            `gorm:"not null;default:false"`
}

// Debt represents a persisted liability record.
type Debt struct {
	gorm.Model
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	ScopeKind      string          `gorm:"type:varchar(16);not null;index:idx_debts_scope"`
	ScopeID        uuid.UUID       `gorm:"type:uuid;index:idx_debts_scope"`
	Name           string          `gorm:"size:255;not null"`
	Principal      decimal.Decimal `gorm:"type:decimal(20,8)"`
	InterestRate   float64         `gorm:"type:decimal(10,6)"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(20,8)"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(20,8)"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'USD'"`
}

// Asset represents a persisted holding record.
type Asset struct {
	gorm.Model
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	ScopeKind        string          `gorm:"type:varchar(16);not null;index:idx_assets_scope"`
	ScopeID          uuid.UUID       `gorm:"type:uuid;index:idx_assets_scope"`
	Name             string          `gorm:"size:255;not null"`
	Type             string          `gorm:"type:varchar(32);not null;default:'other'"`
	Balance          decimal.Decimal `gorm:"type:decimal(20,8)"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Ticker           string          `gorm:"type:varchar(16)"`
	Shares           decimal.Decimal `gorm:"type:decimal(20,8)"`
	CustomGrowthRate *float64        `gorm:"type:decimal(10,6)"`
}

// LinkedExpense represents an expense figure synced from an external ledger,
// already aggregated per calendar month.
type LinkedExpense struct {
	gorm.Model
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ScopeKind string          `gorm:"type:varchar(16);not null;index:idx_linked_scope"`
	ScopeID   uuid.UUID       `gorm:"type:uuid;index:idx_linked_scope"`
	Month     string          `gorm:"type:varchar(7);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8)"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'USD'"`
}

// UserPreference holds per-scope settings.
type UserPreference struct {
	gorm.Model
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	ScopeKind         string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_prefs_scope"`
	ScopeID           uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_prefs_scope"`
	PreferredCurrency string    `gorm:"type:varchar(3);not null;default:'USD'"`
}
