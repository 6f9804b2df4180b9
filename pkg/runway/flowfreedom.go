// Package runway turns a financial snapshot into the two user-facing FIRE
// metrics: Flow Freedom (passive income over required expenses) and Runway
// (years until net worth depletes under a drawdown/growth simulation).
package runway

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/domain"
)

// FlowFreedom reports how much of the required annual expenses passive
// income already covers, at two independent snapshots: today (debt service
// included) and fully debt-free. There is no blended timeline between them.
type FlowFreedom struct {
	// Today and DebtFree are ratios rounded to 3 decimal places.
	Today    float64 `json:"flow_freedom"`
	DebtFree float64 `json:"flow_freedom_debt_free"`
	// MonthsToFreedom extrapolates the historical passive-income trend to
	// the point where annualized income meets today's target expenses.
	// Nil when the trend is flat or negative: no finite ETA exists.
	MonthsToFreedom *int       `json:"months_to_freedom,omitempty"`
	FreedomDate     *time.Time `json:"freedom_date,omitempty"`
}

// trendHorizonMonths caps the ETA extrapolation; a crossing further out than
// a century is reported as no finite ETA.
const trendHorizonMonths = 1200

// ComputeFlowFreedom derives both freedom ratios and the trend-based ETA.
// history is the chronological monthly passive-income series inside the
// estimation window.
func ComputeFlowFreedom(
	passiveAnnual, livingExpensesAnnual, debtPaymentsAnnual decimal.Decimal,
	history []domain.MonthlyDataPoint,
	now time.Time,
) FlowFreedom {
	targetToday := livingExpensesAnnual.Add(debtPaymentsAnnual)

	out := FlowFreedom{
		Today:    ratio(passiveAnnual, targetToday),
		DebtFree: ratio(passiveAnnual, livingExpensesAnnual),
	}

	if months, ok := monthsToTarget(history, targetToday); ok {
		out.MonthsToFreedom = &months
		date := now.UTC().AddDate(0, months, 0)
		out.FreedomDate = &date
	}
	return out
}

func ratio(income, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		// Nothing required: already free.
		return 1
	}
	r, _ := income.Div(target).Float64()
	return math.Round(r*1000) / 1000
}

// monthsToTarget fits a least-squares line through the monthly series and
// returns how many months out its annualized value meets the target.
func monthsToTarget(history []domain.MonthlyDataPoint, targetAnnual decimal.Decimal) (int, bool) {
	if !targetAnnual.IsPositive() {
		return 0, true
	}
	n := len(history)
	if n < 2 {
		return 0, false
	}

	needMonthly, _ := targetAnnual.Div(decimal.NewFromInt(12)).Float64()

	slope, intercept := linearFit(history)
	latest := intercept + slope*float64(n-1)
	if latest >= needMonthly {
		return 0, true
	}
	if slope <= 0 {
		return 0, false
	}

	crossing := (needMonthly - intercept) / slope
	months := int(math.Ceil(crossing)) - (n - 1)
	if months > trendHorizonMonths {
		return 0, false
	}
	if months < 0 {
		months = 0
	}
	return months, true
}

// linearFit returns the least-squares slope and intercept of the series over
// its chronological index.
func linearFit(history []domain.MonthlyDataPoint) (slope, intercept float64) {
	n := float64(len(history))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range history {
		x := float64(i)
		y, _ := p.Total.Float64()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
