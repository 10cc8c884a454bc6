/*
normalize.go - Raw form data -> canonical persisted shapes

PURPOSE:
  Turns the selection-wrapped, partially-filled shapes from raw.go into the
  plain persisted shapes from types.go. Two mechanisms do all the work:

  1. Enum resolution: Selection.Resolve() extracts the primitive value.
     Never called on an absent selection - defaulting happens first.
  2. Default fallback: child.f ?? parent.f ?? user.f, stopping at the first
     defined value. Only frequency has a fixed system default
     (DefaultFrequency); everything else bottoms out at the user.

RESOLUTION RULES:
  Category: InflVal <- user.InflationRate, Icon <- DefaultIcon,
            Frequency <- DefaultFrequency. Records and RemoveIDs are
            stripped from the output category row.
  Record:   Title <- "", Frequency <- DefaultFrequency,
            Inflation <- user.InflationRate, Currency <- user.Currency.
            Record defaults come from the USER, not the category:
            category-level inflation/currency are not inherited by records.
  Salary:   Title <- DefaultSalaryTitle. Variance and RemoveIDs are
            separated out of the persisted salary shape.

PURITY:
  No I/O, deterministic, identical output for identical input. Malformed
  input (e.g. an empty required selection) propagates as a zero value;
  boundary validation is the caller's job.

SEE ALSO:
  - gate.go: consumes the normalized collections
  - api/handlers.go: validates enums and persists the outputs
*/
package finance

import "github.com/shopspring/decimal"

// =============================================================================
// DEFAULT RESOLVER HELPERS
// =============================================================================

// orString resolves an optional string against a chain of fallbacks,
// stopping at the first defined value.
func orString(v *string, fallbacks ...string) string {
	if v != nil {
		return *v
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

// orInt resolves an optional int, falling back to the first positive value.
func orInt(v *int, fallbacks ...int) int {
	if v != nil {
		return *v
	}
	for _, f := range fallbacks {
		if f > 0 {
			return f
		}
	}
	return 0
}

// orDecimal resolves an optional decimal against a single fallback.
func orDecimal(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return fallback
}

// orSelection resolves an optional selection, falling back to a plain value
// when the selection is absent. The selection is only resolved when present.
func orSelection(s *Selection, fallback string) string {
	if s != nil {
		return s.Resolve()
	}
	return fallback
}

// =============================================================================
// CATEGORY NORMALIZER
// =============================================================================

// NormalizeCategory resolves a raw category-with-records form into a
// persistable category plus a list of persistable records.
//
// Guarantees on the output:
//   - the category carries no selection wrappers and no UI-only collections
//   - InflVal and Frequency are always set (defaulted from the user)
//   - Records is nil when the input had no records collection, otherwise
//     order-preserving, each record fully resolved
//   - a record keeps its id when it had one and omits it otherwise
//
// The input's RemoveIDs list is consumed here (stripped from the output);
// acting on it is the persistence layer's job.
func NormalizeCategory(raw RawCategory, user User) NormalizedCategory {
	cat := Category{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Type:      CategoryType(raw.Type.Resolve()),
		Icon:      orString(raw.Icon, DefaultIcon),
		Currency:  Currency(raw.Currency.Resolve()),
		Country:   Country(raw.Country.Resolve()),
		InflType:  InflationType(raw.InflType.Resolve()),
		InflVal:   orDecimal(raw.InflVal, user.InflationRate),
		FreqType:  FrequencyType(raw.FreqType.Resolve()),
		Frequency: orInt(raw.Frequency, DefaultFrequency),
	}

	var records []Record
	if raw.Records != nil {
		records = make([]Record, len(raw.Records))
		for i, rr := range raw.Records {
			records[i] = normalizeRecord(rr, user)
		}
	}

	return NormalizedCategory{Category: cat, Records: records}
}

// normalizeRecord resolves a single record. Inflation and currency fall
// back to the user's values when absent on the record.
func normalizeRecord(raw RawRecord, user User) Record {
	return Record{
		ID:        orString(raw.ID),
		Title:     orString(raw.Title),
		Amount:    raw.Amount,
		Frequency: orInt(raw.Frequency, DefaultFrequency),
		Country:   Country(orSelection(raw.Country, "")),
		Type:      CategoryType(orSelection(raw.Type, "")),
		Inflation: orDecimal(raw.Inflation, user.InflationRate),
		Currency:  Currency(orSelection(raw.Currency, string(user.Currency))),
	}
}

// =============================================================================
// SALARY NORMALIZER
// =============================================================================

// NormalizeSalary resolves a raw salary-with-variance form into a
// persistable salary plus its separated variance periods. The salary id is
// required on input; the variance collection and RemoveIDs never appear in
// the persisted salary shape.
func NormalizeSalary(raw RawSalary) NormalizedSalary {
	sal := Salary{
		ID:       raw.ID,
		UserID:   raw.UserID,
		Title:    orString(raw.Title, DefaultSalaryTitle),
		Currency: Currency(raw.Currency.Resolve()),
		TaxType:  TaxType(raw.TaxType.Resolve()),
		Amount:   raw.Amount,
	}

	var variance []VariancePeriod
	if raw.Variance != nil {
		variance = make([]VariancePeriod, len(raw.Variance))
		for i, rv := range raw.Variance {
			variance[i] = VariancePeriod{Period: rv.Period, Amount: rv.Amount}
		}
	}

	return NormalizedSalary{Salary: sal, Variance: variance}
}
