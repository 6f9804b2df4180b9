package domain

import "errors"

var (
	// ErrRateUnavailable indicates a required currency has no resolvable
	// exchange rate. Conversions fail closed; a 1:1 rate is never assumed.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrNonAmortizing indicates a debt whose payment does not cover the
	// first period's interest. The schedule is not computed.
	ErrNonAmortizing = errors.New("payment does not cover interest, debt never amortizes")

	// ErrUpstreamUnavailable indicates a rate or market-data source could
	// not be reached and no cached value exists.
	ErrUpstreamUnavailable = errors.New("upstream data source unavailable")

	// ErrDebtNotFound indicates the requested debt does not exist in the
	// scope.
	ErrDebtNotFound = errors.New("debt not found")
)
