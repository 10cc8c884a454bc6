/*
engine.go - Year-by-year balance projection

PURPOSE:
  Consumes the fully normalized collections and produces the year-indexed
  balance trajectory. The numeric policy lives behind the Engine interface
  so it can be swapped without touching normalization or orchestration.

CONTRACT (any implementation):
  - exactly Years entries, ordered, year-indexed
  - deterministic: same inputs -> same output, no hidden global state
  - distinct errors for bad inputs instead of a zeroed/NaN trajectory

DEFAULT STRATEGY (DefaultEngine), per projected year:
  1. Each record is annualized by its recurrence (amount * occurrences/year,
     where the category's FreqType gives the unit and the record's Frequency
     the interval), converted to the base currency, and compounded by its
     own inflation rate. A category with InflType=none pins its records'
     inflation to zero.
  2. Each salary contributes its effective amount for the year: the base
     amount, or the latest variance period whose Period has been reached.
     Gross salaries are netted by the engine's flat tax rate.
  3. The year's surplus (income - expenses) is split by InvestPerc: the
     invested share joins a pool that compounds at IndexReturn, the rest
     accumulates as cash. Balance = cash + invested.

EXAMPLE:
  engine := finance.NewDefaultEngine()
  traj, err := engine.Project(ctx, finance.Input{
      Categories:   cats,
      Salaries:     sals,
      Years:        30,
      InvestPerc:   decimal.NewFromFloat(0.6),
      IndexReturn:  decimal.NewFromFloat(0.05),
      BaseCurrency: finance.CurrencyUSD,
  })

SEE ALSO:
  - gate.go: prevents degenerate inputs from reaching Project
  - orchestrator.go: assembles Input and manages the run lifecycle
*/
package finance

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE INTERFACE - Pluggable projection strategy
// =============================================================================

// Input is the ephemeral simulation input assembled by the orchestrator.
// It is never persisted.
type Input struct {
	Categories   []NormalizedCategory
	Salaries     []NormalizedSalary
	Years        int
	InvestPerc   decimal.Decimal
	IndexReturn  decimal.Decimal
	BaseCurrency Currency
}

// Engine is the projection strategy. Implementations must be deterministic
// and side-effect free.
type Engine interface {
	Project(ctx context.Context, in Input) (Trajectory, error)
}

// =============================================================================
// DEFAULT ENGINE
// =============================================================================

// DefaultEngine is the built-in numeric strategy.
type DefaultEngine struct {
	// TaxRate is the flat effective rate applied to gross salaries.
	TaxRate decimal.Decimal

	// Rates is the FX snapshot used for currency conversion.
	Rates RateTable
}

// NewDefaultEngine returns an engine with the built-in FX snapshot and a
// 30% flat tax rate for gross salaries.
func NewDefaultEngine() *DefaultEngine {
	return &DefaultEngine{
		TaxRate: decimal.NewFromFloat(0.30),
		Rates:   DefaultRates(),
	}
}

var one = decimal.NewFromInt(1)

// Project runs the year loop. See the file header for the numeric policy.
func (e *DefaultEngine) Project(ctx context.Context, in Input) (Trajectory, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Pre-resolve every flow once: annualized base amount in the base
	// currency plus its inflation rate. The year loop then only compounds.
	flows, err := e.resolveFlows(in)
	if err != nil {
		return nil, err
	}

	salaries, err := e.resolveSalaries(in)
	if err != nil {
		return nil, err
	}

	growth := one.Add(in.IndexReturn)
	keepPerc := one.Sub(in.InvestPerc)

	trajectory := make(Trajectory, in.Years)
	invested := decimal.Zero
	cash := decimal.Zero

	for year := 0; year < in.Years; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		income := decimal.Zero
		expenses := decimal.Zero

		for _, f := range flows {
			amount := f.annual.Mul(one.Add(f.inflation).Pow(decimal.NewFromInt(int64(year))))
			if f.income {
				income = income.Add(amount)
			} else {
				expenses = expenses.Add(amount)
			}
		}

		for _, s := range salaries {
			income = income.Add(s.amountFor(year))
		}

		surplus := income.Sub(expenses)
		invest := surplus.Mul(in.InvestPerc)
		cash = cash.Add(surplus.Mul(keepPerc))
		invested = invested.Add(invest).Mul(growth)

		trajectory[year] = YearBalance{
			Year:     year,
			Income:   income,
			Expenses: expenses,
			Surplus:  surplus,
			Invested: invested,
			Cash:     cash,
			Balance:  cash.Add(invested),
		}
	}

	return trajectory, nil
}

// validateInput rejects inputs the run gate should have stopped, plus
// out-of-range assumptions. Each failure mode has a distinct error.
func validateInput(in Input) error {
	if in.Years <= 0 {
		return ErrInvalidHorizon
	}
	if len(in.Categories) == 0 {
		return ErrNoCategories
	}
	if len(in.Salaries) == 0 {
		return ErrNoSalaries
	}
	if in.InvestPerc.IsNegative() || in.InvestPerc.GreaterThan(one) {
		return ErrInvalidInvestPerc
	}
	if !in.BaseCurrency.Valid() {
		return &UnknownCurrencyError{Currency: in.BaseCurrency, Where: "base currency"}
	}
	return nil
}

// =============================================================================
// FLOW RESOLUTION - Records -> annualized base-currency flows
// =============================================================================

type flow struct {
	annual    decimal.Decimal // base-currency amount per year, uninflated
	inflation decimal.Decimal
	income    bool
}

func (e *DefaultEngine) resolveFlows(in Input) ([]flow, error) {
	var flows []flow
	for _, nc := range in.Categories {
		cat := nc.Category
		if !cat.Type.Valid() {
			return nil, &InvalidEnumError{Field: "category type", Value: string(cat.Type)}
		}
		if !cat.FreqType.Valid() {
			return nil, &InvalidEnumError{Field: "frequency type", Value: string(cat.FreqType)}
		}
		if !cat.InflType.Valid() {
			return nil, &InvalidEnumError{Field: "inflation type", Value: string(cat.InflType)}
		}

		for _, rec := range nc.Records {
			annual, err := e.annualize(rec, cat)
			if err != nil {
				return nil, err
			}

			inflation := rec.Inflation
			if cat.InflType == InflationNone {
				inflation = decimal.Zero
			}

			converted, err := e.Rates.Convert(annual, rec.Currency, in.BaseCurrency)
			if err != nil {
				return nil, &UnknownCurrencyError{Currency: rec.Currency, Where: "record " + rec.Title}
			}

			kind := rec.Type
			if kind == "" {
				kind = cat.Type
			}

			flows = append(flows, flow{
				annual:    converted,
				inflation: inflation,
				income:    kind == TypeIncome,
			})
		}
	}
	return flows, nil
}

// annualize converts a per-occurrence amount into a yearly one. The
// category's FreqType gives the unit; the record's Frequency the interval
// ("every N units").
func (e *DefaultEngine) annualize(rec Record, cat Category) (decimal.Decimal, error) {
	freq := rec.Frequency
	if freq <= 0 {
		freq = DefaultFrequency
	}

	var perYear int
	switch cat.FreqType {
	case FreqDays:
		perYear = DaysPerYear
	case FreqWeeks:
		perYear = WeeksPerYear
	case FreqMonths:
		perYear = MonthsPerYear
	case FreqYears:
		perYear = 1
	default:
		return decimal.Zero, &InvalidEnumError{Field: "frequency type", Value: string(cat.FreqType)}
	}

	occurrences := decimal.NewFromInt(int64(perYear)).Div(decimal.NewFromInt(int64(freq)))
	return rec.Amount.Mul(occurrences), nil
}

// =============================================================================
// SALARY RESOLUTION - Salaries -> per-year effective amounts
// =============================================================================

type salaryFlow struct {
	base     decimal.Decimal  // net, base currency
	variance []VariancePeriod // net, base currency, ascending by period
}

// amountFor returns the effective net amount for a horizon year: the base
// amount, overridden by the latest variance period already reached.
func (s salaryFlow) amountFor(year int) decimal.Decimal {
	amount := s.base
	for _, v := range s.variance {
		if v.Period > year {
			break
		}
		amount = v.Amount
	}
	return amount
}

func (e *DefaultEngine) resolveSalaries(in Input) ([]salaryFlow, error) {
	flows := make([]salaryFlow, 0, len(in.Salaries))
	for _, ns := range in.Salaries {
		sal := ns.Salary
		if !sal.TaxType.Valid() {
			return nil, &InvalidEnumError{Field: "tax type", Value: string(sal.TaxType)}
		}

		base, err := e.netConvert(sal.Amount, sal, in.BaseCurrency)
		if err != nil {
			return nil, err
		}

		variance := make([]VariancePeriod, 0, len(ns.Variance))
		for _, v := range ns.Variance {
			amount, err := e.netConvert(v.Amount, sal, in.BaseCurrency)
			if err != nil {
				return nil, err
			}
			variance = append(variance, VariancePeriod{Period: v.Period, Amount: amount})
		}
		sort.SliceStable(variance, func(i, j int) bool { return variance[i].Period < variance[j].Period })

		flows = append(flows, salaryFlow{base: base, variance: variance})
	}
	return flows, nil
}

// netConvert applies tax treatment and currency conversion to a salary
// amount. Variance overrides share the salary's currency and tax type.
func (e *DefaultEngine) netConvert(amount decimal.Decimal, sal Salary, base Currency) (decimal.Decimal, error) {
	if sal.TaxType == TaxGross {
		amount = amount.Mul(one.Sub(e.TaxRate))
	}
	converted, err := e.Rates.Convert(amount, sal.Currency, base)
	if err != nil {
		return decimal.Zero, &UnknownCurrencyError{Currency: sal.Currency, Where: "salary " + sal.Title}
	}
	return converted, nil
}
