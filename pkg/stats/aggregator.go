// Package stats classifies raw money-movement events into passive income,
// living expenses and debt service, and produces one internally consistent
// FinancialStats snapshot.
//
// All entries within one Compute call are converted with the same daily rate
// snapshot, fetched once, so no figure silently mixes yesterday's rate with
// today's. Conversion failures degrade the affected figure instead of
// aborting the whole snapshot.
package stats

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/currency"
	"github.com/telephant/firewise/pkg/datawindow"
	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/ratecache"
)

// PassiveIncome is the annualized passive-income estimate with its
// per-category breakdown. Figures are rounded to 2 decimal places at this
// presentation boundary.
type PassiveIncome struct {
	Dividends      decimal.Decimal       `json:"dividends"`
	Rental         decimal.Decimal       `json:"rental"`
	Interest       decimal.Decimal       `json:"interest"`
	Other          decimal.Decimal       `json:"other"`
	MonthlyAverage decimal.Decimal       `json:"monthly_average"`
	Annualized     decimal.Decimal       `json:"annualized"`
	MonthsOfData   int                   `json:"months_of_data"`
	Confidence     datawindow.Confidence `json:"confidence"`
	Warning        string                `json:"warning,omitempty"`
}

// Expenses is the living-expense run-rate estimate. It carries its own
// confidence, never blended with the income confidence.
type Expenses struct {
	MonthlyAverage decimal.Decimal       `json:"monthly_average"`
	Annualized     decimal.Decimal       `json:"annualized"`
	MonthsOfData   int                   `json:"months_of_data"`
	Confidence     datawindow.Confidence `json:"confidence"`
	Warning        string                `json:"warning,omitempty"`
}

// DebtSummary is the per-debt row of the snapshot, normalized to the
// preferred currency.
type DebtSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	InterestRate   float64         `json:"interest_rate"`
}

// Debts aggregates the debt rows of a scope.
type Debts struct {
	TotalBalance       decimal.Decimal `json:"total_balance"`
	AnnualizedPayments decimal.Decimal `json:"annualized_payments"`
	Breakdown          []DebtSummary   `json:"breakdown"`
}

// MonthTotals is one month of combined history for charting.
type MonthTotals struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// FinancialStats is the computed snapshot of a scope's finances. NetWorth is
// zero until the caller merges a portfolio valuation; the aggregator stays
// free of any dependency on live market pricing.
type FinancialStats struct {
	Currency       string             `json:"currency"`
	PassiveIncome  PassiveIncome      `json:"passive_income"`
	Expenses       Expenses           `json:"expenses"`
	Debts          Debts              `json:"debts"`
	NetWorth       decimal.Decimal    `json:"net_worth"`
	MonthlyHistory []MonthTotals      `json:"monthly_history"`
	// PassiveHistory is the currency-normalized monthly passive-income
	// series inside the estimation window, used for trend projection.
	PassiveHistory []domain.MonthlyDataPoint `json:"-"`
	// UnresolvedCurrencies lists codes whose entries were omitted because
	// no rate could be resolved.
	UnresolvedCurrencies []string  `json:"unresolved_currencies,omitempty"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// ComputeInput is the collaborator-supplied raw data for one snapshot.
type ComputeInput struct {
	Events            []domain.MoneyEvent
	Debts             []domain.Debt
	LinkedExpenses    []domain.LinkedExpense
	PreferredCurrency string
}

// Aggregator computes FinancialStats snapshots.
type Aggregator struct {
	rates  *ratecache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// New creates an Aggregator backed by the given rate cache.
func New(rates *ratecache.Cache, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{rates: rates, logger: logger, now: time.Now}
}

// Compute builds the snapshot for the given input. It never fails outright:
// figures whose currencies cannot be resolved are omitted and reported via
// UnresolvedCurrencies.
func (a *Aggregator) Compute(ctx context.Context, in ComputeInput) *FinancialStats {
	target := strings.ToUpper(in.PreferredCurrency)
	if target == "" {
		target = ratecache.USD
	}

	// One rate snapshot for the entire call.
	rates := a.rates.GetRates(ctx, a.neededCodes(in, target))
	conv := &converter{target: target, rates: rates, logger: a.logger}

	passive, passiveByCat, passiveSeries := a.passiveIncome(in.Events, conv)
	expenses, expenseSeries := a.expenses(in.Events, in.LinkedExpenses, conv)
	debts := a.debts(in.Debts, conv)

	return &FinancialStats{
		Currency:             target,
		PassiveIncome:        buildPassive(passive, passiveByCat),
		Expenses:             buildExpenses(expenses),
		Debts:                debts,
		NetWorth:             decimal.Zero, // merged by the caller from the portfolio valuation
		MonthlyHistory:       a.history(passiveSeries, expenseSeries),
		PassiveHistory:       passiveSeries,
		UnresolvedCurrencies: conv.unresolvedList(),
		GeneratedAt:          a.now().UTC(),
	}
}

// neededCodes returns the union of every currency present in the input plus
// the target, so rates are resolved exactly once.
func (a *Aggregator) neededCodes(in ComputeInput, target string) []string {
	seen := map[string]struct{}{target: {}}
	codes := []string{target}
	add := func(code string) {
		code = strings.ToUpper(code)
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	for _, e := range in.Events {
		add(e.Currency)
	}
	for _, e := range in.LinkedExpenses {
		add(e.Currency)
	}
	for _, d := range in.Debts {
		add(d.Currency)
	}
	return codes
}

// countsForStats filters out provisional data: adjustments and entries not
// yet reviewed must not leak into confidence-bearing aggregates.
func countsForStats(e domain.MoneyEvent) bool {
	return e.Reviewed && e.Category != domain.CategoryAdjustment
}

func (a *Aggregator) passiveIncome(
	events []domain.MoneyEvent,
	conv *converter,
) (datawindow.Result, map[string]datawindow.Result, []domain.MonthlyDataPoint) {
	byMonth := map[string]decimal.Decimal{}
	byCatMonth := map[string]map[string]decimal.Decimal{}

	for _, e := range events {
		if !countsForStats(e) || !e.IsPassiveIncome() {
			continue
		}
		amount, ok := conv.convert(e.Amount, e.Currency)
		if !ok {
			continue
		}
		month := e.Month()
		byMonth[month] = byMonth[month].Add(amount)

		cat := passiveCategory(e)
		if byCatMonth[cat] == nil {
			byCatMonth[cat] = map[string]decimal.Decimal{}
		}
		byCatMonth[cat][month] = byCatMonth[cat][month].Add(amount)
	}

	series := toSeries(byMonth)
	byCat := make(map[string]datawindow.Result, len(byCatMonth))
	for cat, months := range byCatMonth {
		byCat[cat] = datawindow.Estimate(toSeries(months))
	}
	return datawindow.Estimate(series), byCat, series
}

func passiveCategory(e domain.MoneyEvent) string {
	switch e.Category {
	case domain.CategoryDividend, domain.CategoryRental, domain.CategoryInterest:
		return e.Category
	default:
		// Asset-linked income with a free-form category.
		return "other"
	}
}

func (a *Aggregator) expenses(
	events []domain.MoneyEvent,
	linked []domain.LinkedExpense,
	conv *converter,
) (datawindow.Result, []domain.MonthlyDataPoint) {
	byMonth := map[string]decimal.Decimal{}

	for _, e := range events {
		if !countsForStats(e) || e.Kind != domain.EventExpense {
			continue
		}
		amount, ok := conv.convert(e.Amount, e.Currency)
		if !ok {
			continue
		}
		byMonth[e.Month()] = byMonth[e.Month()].Add(amount)
	}

	// Second data source, merged by month.
	for _, e := range linked {
		amount, ok := conv.convert(e.Amount, e.Currency)
		if !ok {
			continue
		}
		byMonth[e.Month] = byMonth[e.Month].Add(amount)
	}

	series := toSeries(byMonth)
	return datawindow.Estimate(series), series
}

func (a *Aggregator) debts(debts []domain.Debt, conv *converter) Debts {
	out := Debts{
		TotalBalance:       decimal.Zero,
		AnnualizedPayments: decimal.Zero,
		Breakdown:          make([]DebtSummary, 0, len(debts)),
	}
	for _, d := range debts {
		balance, ok := conv.convert(d.CurrentBalance, d.Currency)
		if !ok {
			continue
		}
		payment, _ := conv.convert(d.MonthlyPayment, d.Currency)

		out.TotalBalance = out.TotalBalance.Add(balance)
		out.AnnualizedPayments = out.AnnualizedPayments.Add(payment.Mul(decimal.NewFromInt(12)))
		out.Breakdown = append(out.Breakdown, DebtSummary{
			ID:             d.ID.String(),
			Name:           d.Name,
			Balance:        balance.Round(2),
			MonthlyPayment: payment.Round(2),
			InterestRate:   d.InterestRate,
		})
	}
	out.TotalBalance = out.TotalBalance.Round(2)
	out.AnnualizedPayments = out.AnnualizedPayments.Round(2)
	return out
}

// history zero-fills the last 12 calendar months of combined income and
// expense totals.
func (a *Aggregator) history(
	income, expenses []domain.MonthlyDataPoint,
) []MonthTotals {
	incomeByMonth := map[string]decimal.Decimal{}
	for _, p := range income {
		incomeByMonth[p.Month] = p.Total
	}
	expenseByMonth := map[string]decimal.Decimal{}
	for _, p := range expenses {
		expenseByMonth[p.Month] = p.Total
	}

	now := a.now().UTC()
	out := make([]MonthTotals, 0, datawindow.WindowMonths)
	for i := datawindow.WindowMonths - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format(domain.MonthLayout)
		out = append(out, MonthTotals{
			Month:    month,
			Income:   incomeByMonth[month].Round(2),
			Expenses: expenseByMonth[month].Round(2),
		})
	}
	return out
}

func buildPassive(overall datawindow.Result, byCat map[string]datawindow.Result) PassiveIncome {
	annualizedFor := func(cat string) decimal.Decimal {
		return byCat[cat].Annualized.Round(2)
	}
	return PassiveIncome{
		Dividends:      annualizedFor(domain.CategoryDividend),
		Rental:         annualizedFor(domain.CategoryRental),
		Interest:       annualizedFor(domain.CategoryInterest),
		Other:          annualizedFor("other"),
		MonthlyAverage: overall.MonthlyAverage.Round(2),
		Annualized:     overall.Annualized.Round(2),
		MonthsOfData:   overall.MonthsOfData,
		Confidence:     overall.Confidence,
		Warning:        overall.Warning,
	}
}

func buildExpenses(overall datawindow.Result) Expenses {
	return Expenses{
		MonthlyAverage: overall.MonthlyAverage.Round(2),
		Annualized:     overall.Annualized.Round(2),
		MonthsOfData:   overall.MonthsOfData,
		Confidence:     overall.Confidence,
		Warning:        overall.Warning,
	}
}

func toSeries(byMonth map[string]decimal.Decimal) []domain.MonthlyDataPoint {
	series := make([]domain.MonthlyDataPoint, 0, len(byMonth))
	for month, total := range byMonth {
		series = append(series, domain.MonthlyDataPoint{Month: month, Total: total})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })
	return series
}

// converter applies one rate snapshot to many entries, collecting the
// currencies that could not be resolved.
type converter struct {
	target     string
	rates      map[string]decimal.Decimal
	logger     *slog.Logger
	unresolved map[string]struct{}
}

func (c *converter) convert(amount decimal.Decimal, code string) (decimal.Decimal, bool) {
	res, err := currency.Convert(amount, code, c.target, c.rates)
	if err != nil {
		if c.unresolved == nil {
			c.unresolved = map[string]struct{}{}
		}
		code = strings.ToUpper(code)
		if _, seen := c.unresolved[code]; !seen {
			c.unresolved[code] = struct{}{}
			c.logger.Warn("omitting entries with unresolvable currency",
				"currency", code, "target", c.target)
		}
		return decimal.Zero, false
	}
	return res.Converted, true
}

func (c *converter) unresolvedList() []string {
	if len(c.unresolved) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.unresolved))
	for code := range c.unresolved {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
