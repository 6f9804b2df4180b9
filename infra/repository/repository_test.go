package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/telephant/firewise/pkg/domain"
)

func newMockStore(t *testing.T) (*store, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return &store{db: db}, mock
}

func TestStore_LoadDebts(t *testing.T) {
	s, mock := newMockStore(t)
	scope := domain.Scope{Kind: domain.ScopePersonal, ID: uuid.New()}
	debtID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "debts"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "principal", "interest_rate",
			"monthly_payment", "current_balance", "currency",
		}).AddRow(debtID, "mortgage", "280000", 0.06, "1800", "231500.50", "USD"))

	debts, err := s.LoadDebts(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, debts, 1)

	assert.Equal(t, debtID, debts[0].ID)
	assert.Equal(t, "mortgage", debts[0].Name)
	assert.InDelta(t, 0.06, debts[0].InterestRate, 1e-9)
	assert.Equal(t, "231500.5", debts[0].CurrentBalance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadEvents(t *testing.T) {
	s, mock := newMockStore(t)
	scope := domain.Scope{Kind: domain.ScopeFamily, ID: uuid.New()}
	eventID := uuid.New()
	occurred := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM "money_events"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kind", "category", "amount", "currency",
			"occurred_at", "source_asset_id", "reviewed",
		}).AddRow(eventID, "income", "dividend", "120.50", "EUR", occurred, nil, true))

	events, err := s.LoadEvents(context.Background(), scope,
		occurred.AddDate(-1, 0, 0), occurred.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, domain.EventIncome, events[0].Kind)
	assert.True(t, events[0].IsPassiveIncome())
	assert.Nil(t, events[0].SourceAssetID)
	assert.Equal(t, "2025-05", events[0].Month())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadEvents_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM "money_events"`).
		WillReturnError(errors.New("connection reset"))

	_, err := s.LoadEvents(context.Background(),
		domain.Scope{Kind: domain.ScopePersonal, ID: uuid.New()},
		time.Now().AddDate(-1, 0, 0), time.Now())
	assert.Error(t, err)
}

func TestStore_GetPreferences(t *testing.T) {
	s, mock := newMockStore(t)
	scope := domain.Scope{Kind: domain.ScopePersonal, ID: uuid.New()}

	mock.ExpectQuery(`SELECT (.+) FROM "user_preferences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "preferred_currency"}).
			AddRow(uuid.New(), "EUR"))

	prefs, err := s.GetPreferences(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, "EUR", prefs.PreferredCurrency)
}

func TestStore_GetPreferences_DefaultsWhenMissing(t *testing.T) {
	s, mock := newMockStore(t)
	scope := domain.Scope{Kind: domain.ScopePersonal, ID: uuid.New()}

	mock.ExpectQuery(`SELECT (.+) FROM "user_preferences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "preferred_currency"}))

	prefs, err := s.GetPreferences(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, prefs.PreferredCurrency)
}
