// Package datawindow turns a sparse set of monthly observations into an
// annualized estimate with an explicit confidence label.
//
// Short histories are an expected steady state for new users, so thin data
// is never an error: the estimate is produced regardless and the confidence
// and warning tell the caller how much to trust it.
package datawindow

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/domain"
)

// WindowMonths caps the rolling estimation window. Older history is
// discarded, not averaged in, so seasonal drift does not stale the estimate.
const WindowMonths = 12

// Confidence is a coarse categorical trust signal derived solely from the
// number of months of available data.
type Confidence string

const (
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceGood    Confidence = "good"
	ConfidenceHigh    Confidence = "high"
)

// Result is a derived annualized estimate. It is never persisted.
type Result struct {
	MonthlyAverage decimal.Decimal `json:"monthly_average"`
	Annualized     decimal.Decimal `json:"annualized"`
	Total          decimal.Decimal `json:"total"`
	MonthsOfData   int             `json:"months_of_data"`
	Confidence     Confidence      `json:"confidence"`
	Warning        string          `json:"warning,omitempty"`
	// OldestMonth and NewestMonth bound the window actually used,
	// post-truncation, not the full input range.
	OldestMonth string `json:"oldest_month,omitempty"`
	NewestMonth string `json:"newest_month,omitempty"`
}

// Estimate derives an annualized figure from monthly data points, using at
// most the WindowMonths most recent months. Empty input yields the all-zero,
// very-low-confidence result.
func Estimate(points []domain.MonthlyDataPoint) Result {
	if len(points) == 0 {
		return Result{
			MonthlyAverage: decimal.Zero,
			Annualized:     decimal.Zero,
			Total:          decimal.Zero,
			Confidence:     ConfidenceVeryLow,
			Warning:        warningFor(0),
		}
	}

	window := make([]domain.MonthlyDataPoint, len(points))
	copy(window, points)
	// "YYYY-MM" sorts chronologically as a string.
	sort.Slice(window, func(i, j int) bool { return window[i].Month > window[j].Month })
	if len(window) > WindowMonths {
		window = window[:WindowMonths]
	}

	months := len(window)
	total := decimal.Zero
	for _, p := range window {
		total = total.Add(p.Total)
	}
	monthly := total.Div(decimal.NewFromInt(int64(months)))

	return Result{
		MonthlyAverage: monthly,
		Annualized:     monthly.Mul(decimal.NewFromInt(WindowMonths)),
		Total:          total,
		MonthsOfData:   months,
		Confidence:     ConfidenceFor(months),
		Warning:        warningFor(months),
		OldestMonth:    window[months-1].Month,
		NewestMonth:    window[0].Month,
	}
}

// ConfidenceFor maps a month count to its confidence level. The thresholds
// are a deliberately coarse policy constant, not derived.
func ConfidenceFor(months int) Confidence {
	switch {
	case months < 2:
		return ConfidenceVeryLow
	case months < 3:
		return ConfidenceLow
	case months < 6:
		return ConfidenceMedium
	case months < WindowMonths:
		return ConfidenceGood
	default:
		return ConfidenceHigh
	}
}

// warningFor surfaces low-confidence projections to the end user instead of
// hiding them behind a number.
func warningFor(months int) string {
	switch {
	case months == 0:
		return "no data available"
	case months == 1:
		return "projection based on a single month of data"
	case months == 2:
		return "projection based on only 2 months of data"
	case months < 6:
		return fmt.Sprintf("projection based on only %d months of data", months)
	case months < WindowMonths:
		return fmt.Sprintf("projection based on %d months of data, less than a full year", months)
	default:
		return ""
	}
}
