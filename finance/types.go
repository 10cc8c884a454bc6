/*
Package finance provides the core financial projection engine.

PURPOSE:
  This package contains the domain types and algorithms for turning a user's
  income sources (salaries) and recurring cost/income categories into a
  year-by-year balance projection. It covers four stages:
  - Normalization: raw form data -> canonical persisted shapes
  - Gating: is there enough data to project at all?
  - Orchestration: joining independently-arriving inputs into one run
  - Projection: the year loop itself

KEY CONCEPTS IN THIS FILE (types.go):
  - Currency/CategoryType/InflationType/FrequencyType/TaxType: closed enums,
    validated at the input boundary
  - User: per-account defaults (inflation, currency, investment assumptions)
  - Category/Record: a recurring bucket and its line items
  - Salary/VariancePeriod: an income source and its time-bound overrides
  - Trajectory: the year-indexed projection output

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Plain persisted shapes: no UI selection wrappers survive normalization
  3. Type Safety: closed typed-string enums instead of duck-typed values
  4. Determinism: same inputs always produce the same trajectory

SEE ALSO:
  - raw.go: the form-level input shapes (selection-wrapped fields)
  - normalize.go: raw -> canonical conversion
  - engine.go: the projection loop
*/
package finance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMS - Closed sets, validated at the input boundary
// =============================================================================

// Currency is an ISO-4217 code supported by the FX snapshot in rates.go.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCHF Currency = "CHF"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyJPY Currency = "JPY"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCHF, CurrencyCAD, CurrencyAUD, CurrencyJPY:
		return true
	}
	return false
}

// Country is an ISO-3166 alpha-2 code. Open set: it carries no numeric
// meaning in the projection, so it is not validated against a closed list.
type Country string

// CategoryType determines the sign of a flow in the projection.
type CategoryType string

const (
	TypeIncome  CategoryType = "income"
	TypeExpense CategoryType = "expense"
)

func (t CategoryType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// InflationType controls whether record-level inflation applies at all.
type InflationType string

const (
	InflationNone    InflationType = "none"    // flows never inflate
	InflationFixed   InflationType = "fixed"   // per-record rates apply as given
	InflationIndexed InflationType = "indexed" // per-record rates apply (defaulted from user)
)

func (t InflationType) Valid() bool {
	return t == InflationNone || t == InflationFixed || t == InflationIndexed
}

// FrequencyType is the unit of a category's recurrence interval.
// A category with FreqType=months and Frequency=3 recurs quarterly.
type FrequencyType string

const (
	FreqDays   FrequencyType = "days"
	FreqWeeks  FrequencyType = "weeks"
	FreqMonths FrequencyType = "months"
	FreqYears  FrequencyType = "years"
)

func (t FrequencyType) Valid() bool {
	switch t {
	case FreqDays, FreqWeeks, FreqMonths, FreqYears:
		return true
	}
	return false
}

// TaxType states whether a salary amount is pre- or post-tax.
type TaxType string

const (
	TaxGross TaxType = "gross"
	TaxNet   TaxType = "net"
)

func (t TaxType) Valid() bool {
	return t == TaxGross || t == TaxNet
}

// =============================================================================
// SYSTEM DEFAULTS
// =============================================================================

const (
	// DefaultFrequency is the system fallback recurrence count, used when
	// neither the record nor the category nor the user defines one.
	DefaultFrequency = 1

	// DefaultFreqType pairs with DefaultFrequency: once per month.
	DefaultFreqType = FreqMonths

	// DefaultSalaryTitle is applied to salaries submitted without a title.
	DefaultSalaryTitle = "Job"

	// DefaultIcon is applied to categories submitted without an icon.
	DefaultIcon = "wallet"

	// Recurrence-to-annual conversion constants.
	DaysPerYear   = 365
	WeeksPerYear  = 52
	MonthsPerYear = 12
)

// =============================================================================
// USER - Per-account settings, read-only input to the engine
// =============================================================================

type User struct {
	ID            string
	InflationRate decimal.Decimal // default inflation for records/categories
	Currency      Currency        // default currency, also the projection base
	InvestPerc    decimal.Decimal // fraction of surplus invested, in [0,1]
	IndexReturn   decimal.Decimal // expected annual index return, may be negative
}

// =============================================================================
// CATEGORY + RECORD - A recurring bucket and its line items
// =============================================================================

// Category is the persistable shape of a recurring income or expense bucket.
// Invariant: after normalization every enum field holds a plain value and
// InflVal/Frequency are always set.
type Category struct {
	ID        string
	UserID    string
	Type      CategoryType
	Icon      string
	Currency  Currency
	Country   Country
	InflType  InflationType
	InflVal   decimal.Decimal
	FreqType  FrequencyType
	Frequency int
}

// Record is a single line item under a category. A record with an empty ID
// has not been persisted yet.
type Record struct {
	ID        string // optional: empty means "to be created"
	Title     string
	Amount    decimal.Decimal
	Frequency int
	Country   Country      // optional in the persisted shape
	Type      CategoryType // optional: empty means "inherit category type"
	Inflation decimal.Decimal
	Currency  Currency
}

// NormalizedCategory pairs a persistable category with its fully resolved
// records. Records is nil when the input carried no records collection.
type NormalizedCategory struct {
	Category Category
	Records  []Record
}

// =============================================================================
// SALARY + VARIANCE - An income source and its overrides
// =============================================================================

// Salary is the persistable shape of an income source. Amount is annual,
// pre- or post-tax according to TaxType.
type Salary struct {
	ID       string
	UserID   string
	Title    string
	Currency Currency
	TaxType  TaxType
	Amount   decimal.Decimal
}

// VariancePeriod overrides a salary's effective amount from the given
// horizon year onward. Period is a zero-based year index.
type VariancePeriod struct {
	Period int
	Amount decimal.Decimal
}

// NormalizedSalary pairs a persistable salary with its separated variance
// periods. Variance is transported independently of the salary row.
type NormalizedSalary struct {
	Salary   Salary
	Variance []VariancePeriod
}

// =============================================================================
// TRAJECTORY - Year-indexed projection output
// =============================================================================

// YearBalance describes the net position at the end of one projected year.
type YearBalance struct {
	Year     int             // zero-based horizon index
	Income   decimal.Decimal // all inflows, base currency
	Expenses decimal.Decimal // all outflows, base currency (positive number)
	Surplus  decimal.Decimal // Income - Expenses for this year
	Invested decimal.Decimal // cumulative invested pool after growth
	Cash     decimal.Decimal // cumulative uninvested surplus
	Balance  decimal.Decimal // Cash + Invested
}

// Trajectory is the ordered projection result: exactly one entry per year.
type Trajectory []YearBalance

// Final returns the last year's balance, or zero for an empty trajectory.
func (t Trajectory) Final() decimal.Decimal {
	if len(t) == 0 {
		return decimal.Zero
	}
	return t[len(t)-1].Balance
}
