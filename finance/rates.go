package finance

import "github.com/shopspring/decimal"

// =============================================================================
// FX SNAPSHOT - Static conversion rates for the projection
// =============================================================================

// RateTable maps a currency to its value in USD. The projection is a
// forward-looking estimator over user-declared assumptions, so a static
// snapshot is sufficient; it is injectable for callers that want fresher
// rates.
type RateTable map[Currency]decimal.Decimal

// DefaultRates is the built-in snapshot used by the default engine.
func DefaultRates() RateTable {
	return RateTable{
		CurrencyUSD: decimal.NewFromFloat(1.00),
		CurrencyEUR: decimal.NewFromFloat(1.09),
		CurrencyGBP: decimal.NewFromFloat(1.27),
		CurrencyCHF: decimal.NewFromFloat(1.11),
		CurrencyCAD: decimal.NewFromFloat(0.73),
		CurrencyAUD: decimal.NewFromFloat(0.65),
		CurrencyJPY: decimal.NewFromFloat(0.0067),
	}
}

// Convert converts an amount between two currencies over the snapshot.
// Converting a currency the table doesn't know returns ErrUnknownCurrency
// (wrapped with the offending code).
func (rt RateTable) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := rt[from]
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Currency: from, Where: "conversion source"}
	}
	toRate, ok := rt[to]
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Currency: to, Where: "conversion target"}
	}
	return amount.Mul(fromRate).Div(toRate), nil
}
