// Package repository implements the engine's persistence collaborators on
// top of GORM. All loaders are read-only; writes happen in other services.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/provider"
)

// DefaultCurrency is assumed when a scope has no stored preferences.
const DefaultCurrency = "USD"

type store struct {
	db *gorm.DB
}

// NewStore returns a provider.Store backed by the given database.
func NewStore(db *gorm.DB) provider.Store {
	return &store{db: db}
}

// Migrate creates or updates the schema for every model the store reads.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&MoneyEvent{},
		&Debt{},
		&Asset{},
		&LinkedExpense{},
		&UserPreference{},
	)
}

func (s *store) LoadEvents(
	ctx context.Context, scope domain.Scope, from, to time.Time,
) ([]domain.MoneyEvent, error) {
	var rows []MoneyEvent
	result := s.db.WithContext(ctx).
		Where("scope_kind = ? AND scope_id = ? AND occurred_at >= ? AND occurred_at < ?",
			string(scope.Kind), scope.ID, from, to).
		Order("occurred_at").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	events := make([]domain.MoneyEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, domain.MoneyEvent{
			ID:            row.ID,
			Kind:          domain.EventKind(row.Kind),
			Category:      row.Category,
			Amount:        row.Amount,
			Currency:      row.Currency,
			OccurredAt:    row.OccurredAt,
			SourceAssetID: row.SourceAssetID,
			Reviewed:      row.Reviewed,
		})
	}
	return events, nil
}

func (s *store) LoadDebts(ctx context.Context, scope domain.Scope) ([]domain.Debt, error) {
	var rows []Debt
	result := s.db.WithContext(ctx).
		Where("scope_kind = ? AND scope_id = ?", string(scope.Kind), scope.ID).
		Order("name").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	debts := make([]domain.Debt, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, domain.Debt{
			ID:             row.ID,
			Name:           row.Name,
			Principal:      row.Principal,
			InterestRate:   row.InterestRate,
			MonthlyPayment: row.MonthlyPayment,
			CurrentBalance: row.CurrentBalance,
			Currency:       row.Currency,
		})
	}
	return debts, nil
}

func (s *store) LoadAssets(ctx context.Context, scope domain.Scope) ([]domain.Asset, error) {
	var rows []Asset
	result := s.db.WithContext(ctx).
		Where("scope_kind = ? AND scope_id = ?", string(scope.Kind), scope.ID).
		Order("name").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	assets := make([]domain.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, domain.Asset{
			ID:               row.ID,
			Name:             row.Name,
			Type:             domain.AssetType(row.Type),
			Balance:          row.Balance,
			Currency:         row.Currency,
			Ticker:           row.Ticker,
			Shares:           row.Shares,
			CustomGrowthRate: row.CustomGrowthRate,
		})
	}
	return assets, nil
}

func (s *store) LoadLinkedExpenses(
	ctx context.Context, scope domain.Scope, from, to time.Time,
) ([]domain.LinkedExpense, error) {
	var rows []LinkedExpense
	result := s.db.WithContext(ctx).
		Where("scope_kind = ? AND scope_id = ? AND month >= ? AND month <= ?",
			string(scope.Kind), scope.ID,
			from.UTC().Format(domain.MonthLayout), to.UTC().Format(domain.MonthLayout)).
		Order("month").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	expenses := make([]domain.LinkedExpense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, domain.LinkedExpense{
			Month:    row.Month,
			Amount:   row.Amount,
			Currency: row.Currency,
		})
	}
	return expenses, nil
}

func (s *store) GetPreferences(
	ctx context.Context, scope domain.Scope,
) (*provider.Preferences, error) {
	var row UserPreference
	result := s.db.WithContext(ctx).
		Where("scope_kind = ? AND scope_id = ?", string(scope.Kind), scope.ID).
		First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &provider.Preferences{PreferredCurrency: DefaultCurrency}, nil
		}
		return nil, result.Error
	}
	return &provider.Preferences{PreferredCurrency: row.PreferredCurrency}, nil
}
