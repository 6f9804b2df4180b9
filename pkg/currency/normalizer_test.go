package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telephant/firewise/pkg/domain"
)

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.92),
		"JPY": decimal.NewFromFloat(149.50),
		"GBP": decimal.NewFromFloat(0.79),
	}
}

func TestConvert(t *testing.T) {
	rates := testRates()

	tests := []struct {
		name     string
		amount   float64
		from, to string
		expected float64
	}{
		{"same currency short-circuits", 123.45, "EUR", "EUR", 123.45},
		{"usd to foreign", 100, "USD", "EUR", 92},
		{"foreign to usd", 92, "EUR", "USD", 100},
		{"cross pivots through usd", 100, "EUR", "JPY", 16250},
		{"lower-case codes accepted", 100, "usd", "eur", 92},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := Convert(decimal.NewFromFloat(tt.amount), tt.from, tt.to, rates)
			require.NoError(t, err)
			got, _ := conv.Converted.Float64()
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestConvert_RateIsAppliedFactor(t *testing.T) {
	rates := testRates()
	amount := decimal.NewFromFloat(250)

	conv, err := Convert(amount, "EUR", "GBP", rates)
	require.NoError(t, err)
	assert.True(t, amount.Mul(conv.Rate).Sub(conv.Converted).Abs().LessThan(decimal.NewFromFloat(0.0001)),
		"converted == amount * rate")
}

func TestConvert_MissingRateFailsClosed(t *testing.T) {
	rates := testRates()

	_, err := Convert(decimal.NewFromFloat(10), "XXX", "USD", rates)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)

	_, err = Convert(decimal.NewFromFloat(10), "USD", "XXX", rates)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestConvert_RoundTrip(t *testing.T) {
	rates := testRates()
	tolerance := decimal.NewFromFloat(0.000001)

	for _, pair := range [][2]string{{"USD", "EUR"}, {"EUR", "JPY"}, {"GBP", "USD"}, {"JPY", "GBP"}} {
		amount := decimal.NewFromFloat(1234.56)

		there, err := Convert(amount, pair[0], pair[1], rates)
		require.NoError(t, err)
		back, err := Convert(there.Converted, pair[1], pair[0], rates)
		require.NoError(t, err)

		assert.True(t, back.Converted.Sub(amount).Abs().LessThan(tolerance),
			"%s->%s->%s round-trip drifted: %s", pair[0], pair[1], pair[0], back.Converted)
	}
}

func TestSum(t *testing.T) {
	rates := testRates()
	entries := []domain.MoneyEntry{
		{Amount: decimal.NewFromFloat(100), Currency: "USD"},
		{Amount: decimal.NewFromFloat(92), Currency: "EUR"},
		{Amount: decimal.NewFromFloat(14950), Currency: "JPY"},
	}

	total, err := Sum(entries, "USD", rates)
	require.NoError(t, err)
	got, _ := total.Float64()
	assert.InDelta(t, 300, got, 0.0001)
}

func TestSum_FailsOnUnresolvableEntry(t *testing.T) {
	entries := []domain.MoneyEntry{
		{Amount: decimal.NewFromFloat(100), Currency: "USD"},
		{Amount: decimal.NewFromFloat(100), Currency: "XXX"},
	}

	_, err := Sum(entries, "USD", testRates())
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestCodes(t *testing.T) {
	entries := []domain.MoneyEntry{
		{Currency: "usd"},
		{Currency: "EUR"},
		{Currency: "USD"},
	}
	assert.ElementsMatch(t, []string{"USD", "EUR"}, Codes(entries))
}
