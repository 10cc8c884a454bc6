/*
raw.go - Form-level input shapes

PURPOSE:
  These are the shapes the fetch/UI layer hands to the normalizers: enum
  fields arrive as selection objects ({value, label}), optional fields as
  pointers, and UI-only collections (records, variance, ids-to-remove)
  still attached. Nothing in this file is ever persisted as-is.

CONTRACT:
  A present selection always carries a value (see Selection.Resolve).
  A missing selection where the persisted shape requires one is a
  programming error at the boundary, not a recoverable condition: the
  normalizers default before resolving and never inspect shape beyond that.

SEE ALSO:
  - normalize.go: consumes these shapes
  - api/dto.go: JSON bindings that decode into them
*/
package finance

import "github.com/shopspring/decimal"

// =============================================================================
// SELECTION - UI dropdown wrapper around a primitive value
// =============================================================================

// Selection is how the input layer represents a dropdown choice: the
// primitive value plus display metadata. Resolve extracts the value and is
// total; callers default absent selections before resolving.
type Selection struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Resolve returns the wrapped primitive value.
func (s Selection) Resolve() string { return s.Value }

// =============================================================================
// RAW SHAPES - What the fetch layer delivers
// =============================================================================

// RawRecord is a single line item as edited in the UI. All overridable
// fields are optional; absent ones are defaulted during normalization.
type RawRecord struct {
	ID        *string
	Title     *string
	Amount    decimal.Decimal
	Frequency *int
	Country   *Selection
	Type      *Selection
	Inflation *decimal.Decimal
	Currency  *Selection
}

// RawCategory is a category-with-records form. Records is nil when the form
// carried no records collection at all (distinct from an empty one).
// RemoveIDs lists persisted record ids the user deleted in the UI; the list
// is consumed during submission and never persisted.
type RawCategory struct {
	ID        string
	UserID    string
	Type      Selection
	Icon      *string
	Currency  Selection
	Country   Selection
	InflType  Selection
	InflVal   *decimal.Decimal
	FreqType  Selection
	Frequency *int
	Records   []RawRecord
	RemoveIDs []string
}

// RawVariance is a point-in-time salary override as edited in the UI.
type RawVariance struct {
	ID     *string
	Period int
	Amount decimal.Decimal
}

// RawSalary is a salary-with-variance form. Unlike records, a salary is
// expected to carry an identity before normalization.
type RawSalary struct {
	ID        string
	UserID    string
	Title     *string
	Amount    decimal.Decimal
	Currency  Selection
	TaxType   Selection
	Variance  []RawVariance
	RemoveIDs []string
}
