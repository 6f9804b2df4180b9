// Package amortize computes closed-form monthly payoff schedules for
// interest-bearing debts.
package amortize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/domain"
)

// Payment is one month of an amortization schedule.
type Payment struct {
	Month     int             `json:"month"` // 1-based
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// Schedule is the full payoff plan for a debt.
type Schedule struct {
	MonthsRemaining int       `json:"months_remaining"`
	PayoffDate      time.Time `json:"payoff_date"`
	Payments        []Payment `json:"schedule"`
}

var twelve = decimal.NewFromInt(12)

// Build computes the monthly schedule for a debt balance at the given annual
// rate and fixed monthly payment, starting from the given date.
//
// Each period accrues interest = balance * rate/12 (rounded to the cent),
// applies min(payment-interest, balance) to principal, and stops when the
// balance reaches zero. If the payment does not cover the first period's
// interest the debt never amortizes: Build returns ErrNonAmortizing instead
// of looping unbounded.
func Build(balance decimal.Decimal, annualRate float64, payment decimal.Decimal, from time.Time) (*Schedule, error) {
	if !balance.IsPositive() {
		return &Schedule{PayoffDate: from}, nil
	}

	monthlyRate := decimal.NewFromFloat(annualRate).Div(twelve)

	var payments []Payment
	for month := 1; balance.IsPositive(); month++ {
		interest := balance.Mul(monthlyRate).Round(2)
		if payment.LessThanOrEqual(interest) {
			return nil, fmt.Errorf("%w: payment %s <= interest %s",
				domain.ErrNonAmortizing, payment, interest)
		}

		principal := payment.Sub(interest)
		if principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)

		payments = append(payments, Payment{
			Month:     month,
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		})
	}

	return &Schedule{
		MonthsRemaining: len(payments),
		PayoffDate:      from.AddDate(0, len(payments), 0),
		Payments:        payments,
	}, nil
}

// MonthsToPayoff returns only the number of months until the debt is
// retired, without materializing the schedule rows.
func MonthsToPayoff(d domain.Debt, from time.Time) (int, error) {
	s, err := Build(d.CurrentBalance, d.InterestRate, d.MonthlyPayment, from)
	if err != nil {
		return 0, err
	}
	return s.MonthsRemaining, nil
}
