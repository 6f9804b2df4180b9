// Package planning is the facade the controller layer consumes: it loads a
// scope's records through the persistence collaborators, runs the projection
// engine, and caches the resulting snapshots per scope.
package planning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/amortize"
	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/portfolio"
	"github.com/telephant/firewise/pkg/provider"
	"github.com/telephant/firewise/pkg/runway"
	"github.com/telephant/firewise/pkg/stats"
)

// historyMonths bounds how far back events are loaded. One month of slack
// past the estimation window keeps partial boundary months out of it.
const historyMonths = 13

// Service exposes the projection engine to the HTTP layer.
type Service struct {
	store  provider.Store
	agg    *stats.Aggregator
	valuer *portfolio.Valuer
	cache  *stats.Cache
	logger *slog.Logger

	now func() time.Time
}

// New wires the planning service.
func New(
	store provider.Store,
	agg *stats.Aggregator,
	valuer *portfolio.Valuer,
	cache *stats.Cache,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		agg:    agg,
		valuer: valuer,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// GetFinancialStats returns the scope's snapshot, from cache unless it is
// stale or forceRefresh is set.
func (s *Service) GetFinancialStats(ctx context.Context, scope domain.Scope, forceRefresh bool) (*stats.FinancialStats, error) {
	if !forceRefresh {
		if cached, ok := s.cache.Get(scope.Key()); ok {
			s.logger.Debug("stats served from cache", "scope", scope.Key())
			return cached, nil
		}
	}

	snapshot, _, err := s.compute(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.cache.Set(scope.Key(), snapshot)
	return snapshot, nil
}

// GetRunway simulates the scope's year-by-year net-worth path.
func (s *Service) GetRunway(ctx context.Context, scope domain.Scope) (*runway.Projection, error) {
	snapshot, valuation, err := s.compute(ctx, scope)
	if err != nil {
		return nil, err
	}

	debts, err := s.store.LoadDebts(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading debts: %w", err)
	}

	projection := runway.Simulate(runway.Input{
		NetWorth:       valuation.NetWorth,
		AnnualExpenses: snapshot.Expenses.Annualized,
		AnnualIncome:   snapshot.PassiveIncome.Annualized,
		GrowthRate:     valuation.WeightedGrowthRate,
		Debts:          s.debtService(debts, snapshot),
	})
	return &projection, nil
}

// GetFlowFreedom reports the scope's percentage-to-freedom metrics.
func (s *Service) GetFlowFreedom(ctx context.Context, scope domain.Scope) (*runway.FlowFreedom, error) {
	snapshot, _, err := s.compute(ctx, scope)
	if err != nil {
		return nil, err
	}

	freedom := runway.ComputeFlowFreedom(
		snapshot.PassiveIncome.Annualized,
		snapshot.Expenses.Annualized,
		snapshot.Debts.AnnualizedPayments,
		snapshot.PassiveHistory,
		s.now(),
	)
	return &freedom, nil
}

// GetDebtSchedule computes the amortization schedule for one debt.
func (s *Service) GetDebtSchedule(_ context.Context, debt domain.Debt) (*amortize.Schedule, error) {
	return amortize.Build(debt.CurrentBalance, debt.InterestRate, debt.MonthlyPayment, s.now())
}

// GetDebtScheduleByID looks the debt up in the scope and computes its
// amortization schedule.
func (s *Service) GetDebtScheduleByID(ctx context.Context, scope domain.Scope, debtID uuid.UUID) (*amortize.Schedule, error) {
	debts, err := s.store.LoadDebts(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading debts: %w", err)
	}
	for _, d := range debts {
		if d.ID == debtID {
			return s.GetDebtSchedule(ctx, d)
		}
	}
	return nil, domain.ErrDebtNotFound
}

// InvalidateStatsCache drops the scope's cached snapshot. Must be called
// after any mutation to the scope's underlying events.
func (s *Service) InvalidateStatsCache(scope domain.Scope) {
	s.cache.Invalidate(scope.Key())
	s.logger.Debug("stats cache invalidated", "scope", scope.Key())
}

// compute loads the scope's records, runs the aggregator, and merges the
// portfolio valuation into the snapshot's net worth.
func (s *Service) compute(ctx context.Context, scope domain.Scope) (*stats.FinancialStats, *portfolio.Valuation, error) {
	prefs, err := s.store.GetPreferences(ctx, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("loading preferences: %w", err)
	}

	to := s.now().UTC()
	from := to.AddDate(0, -historyMonths, 0)

	events, err := s.store.LoadEvents(ctx, scope, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("loading events: %w", err)
	}
	debts, err := s.store.LoadDebts(ctx, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("loading debts: %w", err)
	}
	linked, err := s.store.LoadLinkedExpenses(ctx, scope, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("loading linked expenses: %w", err)
	}
	assets, err := s.store.LoadAssets(ctx, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("loading assets: %w", err)
	}

	snapshot := s.agg.Compute(ctx, stats.ComputeInput{
		Events:            events,
		Debts:             debts,
		LinkedExpenses:    linked,
		PreferredCurrency: prefs.PreferredCurrency,
	})

	valuation := s.valuer.Value(ctx, assets, prefs.PreferredCurrency)
	snapshot.NetWorth = valuation.NetWorth

	return snapshot, valuation, nil
}

// debtService maps debts to their simulation inputs, using the snapshot's
// currency-normalized per-debt payments so the simulation stays in one
// currency. A debt whose schedule cannot be computed is carried with its
// payment forever rather than failing the projection; one omitted from the
// snapshot (unresolvable currency) is omitted here too.
func (s *Service) debtService(debts []domain.Debt, snapshot *stats.FinancialStats) []runway.DebtService {
	normalized := make(map[string]decimal.Decimal, len(snapshot.Debts.Breakdown))
	for _, row := range snapshot.Debts.Breakdown {
		normalized[row.ID] = row.MonthlyPayment
	}

	out := make([]runway.DebtService, 0, len(debts))
	now := s.now()
	for _, d := range debts {
		payment, ok := normalized[d.ID.String()]
		if !ok {
			continue
		}
		months, err := amortize.MonthsToPayoff(d, now)
		if err != nil {
			s.logger.Warn("debt schedule unavailable, carrying payment through the projection",
				"debt", d.Name, "error", err)
			months = 0
		}
		out = append(out, runway.DebtService{
			AnnualPayment:   payment.Mul(decimal.NewFromInt(12)),
			MonthsRemaining: months,
		})
	}
	return out
}
