package runway

import (
	"github.com/shopspring/decimal"
)

// HorizonYears is the hard cap on the year-by-year simulation. It bounds the
// loop explicitly; oscillating growth/gap interactions must never be able to
// iterate forever.
const HorizonYears = 100

// DebtService is one debt's contribution to annual expenses and the month
// its schedule retires it.
type DebtService struct {
	AnnualPayment decimal.Decimal
	// MonthsRemaining comes from the amortization schedule. Zero or
	// negative means the debt never retires within the simulation
	// (non-amortizing or unknown); its payment is carried throughout.
	MonthsRemaining int
}

// Input seeds the simulation.
type Input struct {
	NetWorth decimal.Decimal
	// AnnualExpenses are living expenses excluding debt service.
	AnnualExpenses decimal.Decimal
	// AnnualIncome is the realized passive income at year zero.
	AnnualIncome decimal.Decimal
	// GrowthRate is the asset-value-weighted annual growth fraction.
	GrowthRate float64
	Debts      []DebtService
}

// YearPoint records one simulated year. Expenses and Income are the values
// in effect during that year; Gap is the shortfall covered from principal.
type YearPoint struct {
	Year     int             `json:"year"`
	NetWorth decimal.Decimal `json:"net_worth"`
	Expenses decimal.Decimal `json:"expenses"`
	Income   decimal.Decimal `json:"income"`
	Gap      decimal.Decimal `json:"gap"`
}

// Projection is the ordered year-by-year net-worth path.
type Projection struct {
	Years []YearPoint `json:"years"`
	// DepletedAtYear is set when net worth reached zero; the final point
	// is clamped to 0.
	DepletedAtYear *int `json:"depleted_at_year,omitempty"`
	// ExceedsHorizon reports that the portfolio outlived the 100-year
	// simulation cap.
	ExceedsHorizon bool `json:"exceeds_horizon"`
}

// Simulate runs the drawdown/growth loop until depletion or the horizon.
//
// Each year: the shortfall gap = max(0, expenses-income) is drawn from
// principal, the remainder compounds at the weighted growth rate, debts
// whose schedules have run out drop their payments from the following
// years' expenses, and income shrinks proportionally with the asset base
// (selling principal reduces future passive income).
func Simulate(in Input) Projection {
	netWorth := in.NetWorth
	income := in.AnnualIncome
	growth := decimal.NewFromFloat(1 + in.GrowthRate)

	expenses := in.AnnualExpenses
	retired := make([]bool, len(in.Debts))
	for i, d := range in.Debts {
		expenses = expenses.Add(d.AnnualPayment)
		retired[i] = false
	}

	// Selling principal to cover gaps reduces future passive income
	// proportionally: income tracks the asset base at its initial yield.
	var yield decimal.Decimal
	proportional := in.NetWorth.IsPositive() && in.AnnualIncome.IsPositive()
	if proportional {
		yield = in.AnnualIncome.Div(in.NetWorth)
	}

	out := Projection{}
	for year := 0; year < HorizonYears; year++ {
		yearExpenses := expenses

		gap := yearExpenses.Sub(income)
		if gap.IsNegative() {
			gap = decimal.Zero
		}
		netWorth = netWorth.Sub(gap)

		if netWorth.IsPositive() {
			netWorth = netWorth.Mul(growth)
		}

		// Debts paid off by the end of this year stop costing money
		// from next year onward.
		elapsedMonths := (year + 1) * 12
		for i, d := range in.Debts {
			if retired[i] || d.MonthsRemaining <= 0 {
				continue
			}
			if d.MonthsRemaining <= elapsedMonths {
				retired[i] = true
				expenses = expenses.Sub(d.AnnualPayment)
			}
		}

		if proportional {
			if netWorth.IsPositive() {
				income = netWorth.Mul(yield)
			} else {
				income = decimal.Zero
			}
		}

		point := YearPoint{
			Year:     year,
			NetWorth: netWorth.Round(2),
			Expenses: yearExpenses.Round(2),
			Income:   income.Round(2),
			Gap:      gap.Round(2),
		}

		if !netWorth.IsPositive() {
			point.NetWorth = decimal.Zero
			out.Years = append(out.Years, point)
			y := year
			out.DepletedAtYear = &y
			return out
		}
		out.Years = append(out.Years, point)
	}

	out.ExceedsHorizon = true
	return out
}
