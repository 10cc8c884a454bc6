/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers wrap these with additional context.

ERROR CATEGORIES:
  1. Engine errors - invalid projection inputs reaching the engine
  2. Lookup errors - missing users/categories/salaries
  3. Run errors - a dispatched projection failed

USAGE:
  if errors.Is(err, finance.ErrUnknownCurrency) { ... }

SEE ALSO:
  - engine.go: returns these from input validation
  - api/handlers.go: maps them to HTTP status codes
*/
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidHorizon is returned when the projection horizon is not a
	// positive number of years.
	ErrInvalidHorizon = errors.New("invalid horizon: years must be positive")

	// ErrNoCategories is returned when an empty category collection reaches
	// the engine despite the run gate.
	ErrNoCategories = errors.New("no categories to project")

	// ErrNoSalaries is returned when an empty salary collection reaches the
	// engine despite the run gate.
	ErrNoSalaries = errors.New("no salaries to project")

	// ErrInvalidInvestPerc is returned when the investment fraction is
	// outside [0, 1].
	ErrInvalidInvestPerc = errors.New("investment percentage outside [0,1]")

	// ErrUnknownCurrency is returned when a currency has no FX rate.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrInvalidEnum is returned when an enum value is outside its set.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrCategoryNotFound is returned when a referenced category doesn't exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSalaryNotFound is returned when a referenced salary doesn't exist.
	ErrSalaryNotFound = errors.New("salary not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownCurrencyError reports which currency was missing from the FX
// snapshot and where it appeared.
type UnknownCurrencyError struct {
	Currency Currency
	Where    string // e.g. "record \"Rent\"", "salary \"Job\""
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q in %s", e.Currency, e.Where)
}

func (e *UnknownCurrencyError) Unwrap() error { return ErrUnknownCurrency }

// InvalidEnumError reports an enum value outside its closed set.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func (e *InvalidEnumError) Unwrap() error { return ErrInvalidEnum }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidHorizon) ||
		errors.Is(err, ErrInvalidInvestPerc) ||
		errors.Is(err, ErrUnknownCurrency) ||
		errors.Is(err, ErrInvalidEnum)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrSalaryNotFound)
}
