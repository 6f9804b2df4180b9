package runway

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telephant/firewise/pkg/domain"
)

func series(totals ...float64) []domain.MonthlyDataPoint {
	points := make([]domain.MonthlyDataPoint, len(totals))
	for i, total := range totals {
		points[i] = domain.MonthlyDataPoint{
			Month: fmt.Sprintf("2025-%02d", i+1),
			Total: decimal.NewFromFloat(total),
		}
	}
	return points
}

func TestComputeFlowFreedom_Ratios(t *testing.T) {
	got := ComputeFlowFreedom(
		decimal.NewFromInt(26_900), // passive
		decimal.NewFromInt(48_000), // living expenses
		decimal.NewFromInt(8_400),  // debt service
		nil,
		time.Now(),
	)

	// 26900 / 56400, rounded to 3 decimals.
	assert.InDelta(t, 0.477, got.Today, 1e-9)
	// 26900 / 48000
	assert.InDelta(t, 0.560, got.DebtFree, 1e-9)
}

func TestComputeFlowFreedom_RisingTrendHasETA(t *testing.T) {
	// Passive income rising 100/month; target 56400/yr => 4700/month.
	history := series(1000, 1100, 1200, 1300, 1400, 1500)

	got := ComputeFlowFreedom(
		decimal.NewFromInt(15_000),
		decimal.NewFromInt(48_000),
		decimal.NewFromInt(8_400),
		history,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	)

	require.NotNil(t, got.MonthsToFreedom, "a rising trend must yield a finite ETA")
	// From 1500/month at +100/month to 4700/month: 32 months.
	assert.Equal(t, 32, *got.MonthsToFreedom)
	require.NotNil(t, got.FreedomDate)
	assert.Equal(t, time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), *got.FreedomDate)
}

func TestComputeFlowFreedom_FlatOrNegativeTrendHasNoETA(t *testing.T) {
	flat := ComputeFlowFreedom(
		decimal.NewFromInt(12_000), decimal.NewFromInt(50_000), decimal.Zero,
		series(1000, 1000, 1000, 1000), time.Now(),
	)
	assert.Nil(t, flat.MonthsToFreedom, "flat trend: no arbitrary date")

	falling := ComputeFlowFreedom(
		decimal.NewFromInt(12_000), decimal.NewFromInt(50_000), decimal.Zero,
		series(2000, 1800, 1600, 1400), time.Now(),
	)
	assert.Nil(t, falling.MonthsToFreedom, "negative trend: no arbitrary date")
}

func TestComputeFlowFreedom_AlreadyFree(t *testing.T) {
	got := ComputeFlowFreedom(
		decimal.NewFromInt(60_000), decimal.NewFromInt(50_000), decimal.Zero,
		series(4800, 4900, 5000), time.Now(),
	)
	require.NotNil(t, got.MonthsToFreedom)
	assert.Equal(t, 0, *got.MonthsToFreedom)
	assert.InDelta(t, 1.2, got.Today, 1e-9)
}

func TestSimulate_ZeroNetWorthCoveredExpensesTerminatesAtYearZero(t *testing.T) {
	got := Simulate(Input{
		NetWorth:       decimal.Zero,
		AnnualExpenses: decimal.NewFromInt(40_000),
		AnnualIncome:   decimal.NewFromInt(50_000),
	})

	require.Len(t, got.Years, 1)
	point := got.Years[0]
	assert.Equal(t, 0, point.Year)
	assert.True(t, point.NetWorth.IsZero(), "no debit applied when income covers expenses")
	assert.True(t, point.Gap.IsZero())
	require.NotNil(t, got.DepletedAtYear)
	assert.Equal(t, 0, *got.DepletedAtYear)
}

func TestSimulate_DrawdownDepletes(t *testing.T) {
	// 100k drawing 60k/yr against 10k income and no growth: gone fast.
	got := Simulate(Input{
		NetWorth:       decimal.NewFromInt(100_000),
		AnnualExpenses: decimal.NewFromInt(60_000),
		AnnualIncome:   decimal.NewFromInt(10_000),
	})

	require.NotNil(t, got.DepletedAtYear)
	assert.False(t, got.ExceedsHorizon)

	last := got.Years[len(got.Years)-1]
	assert.True(t, last.NetWorth.IsZero(), "final point clamps net worth to 0")
	assert.Equal(t, *got.DepletedAtYear, last.Year)

	for i := 1; i < len(got.Years); i++ {
		assert.True(t, got.Years[i].NetWorth.LessThanOrEqual(got.Years[i-1].NetWorth))
	}
}

func TestSimulate_SurplusExceedsHorizon(t *testing.T) {
	got := Simulate(Input{
		NetWorth:       decimal.NewFromInt(1_000_000),
		AnnualExpenses: decimal.NewFromInt(30_000),
		AnnualIncome:   decimal.NewFromInt(40_000),
		GrowthRate:     0.05,
	})

	assert.True(t, got.ExceedsHorizon, "surviving portfolios report exceeding the horizon, not a literal year")
	assert.Nil(t, got.DepletedAtYear)
	assert.Len(t, got.Years, HorizonYears)
}

func TestSimulate_DebtRetirementDropsPayments(t *testing.T) {
	got := Simulate(Input{
		NetWorth:       decimal.NewFromInt(500_000),
		AnnualExpenses: decimal.NewFromInt(30_000),
		AnnualIncome:   decimal.NewFromInt(20_000),
		Debts: []DebtService{
			{AnnualPayment: decimal.NewFromInt(12_000), MonthsRemaining: 24},
		},
	})

	require.Greater(t, len(got.Years), 3)
	assert.Equal(t, "42000", got.Years[0].Expenses.String(), "debt service included while active")
	assert.Equal(t, "42000", got.Years[1].Expenses.String())
	assert.Equal(t, "30000", got.Years[2].Expenses.String(), "payment drops the year after payoff")
}

func TestSimulate_IncomeShrinksWithAssetBase(t *testing.T) {
	// 4% yield on 1M, spending 90k: principal sales must shrink income.
	got := Simulate(Input{
		NetWorth:       decimal.NewFromInt(1_000_000),
		AnnualExpenses: decimal.NewFromInt(90_000),
		AnnualIncome:   decimal.NewFromInt(40_000),
	})

	require.Greater(t, len(got.Years), 2)
	first := got.Years[0]
	second := got.Years[1]
	assert.True(t, second.Income.LessThan(first.Income))
	assert.True(t, second.Gap.GreaterThan(first.Gap), "shrinking income widens the gap")
}

func TestSimulate_NonRetiringDebtCarriesPayment(t *testing.T) {
	got := Simulate(Input{
		NetWorth:       decimal.NewFromInt(200_000),
		AnnualExpenses: decimal.NewFromInt(10_000),
		AnnualIncome:   decimal.NewFromInt(30_000),
		Debts: []DebtService{
			{AnnualPayment: decimal.NewFromInt(6_000), MonthsRemaining: 0},
		},
	})

	for _, p := range got.Years {
		assert.Equal(t, "16000", p.Expenses.String())
	}
}
