package finance

// =============================================================================
// RUN GATE - Single authority for "may the projection run?"
// =============================================================================

// ShouldRun reports whether the projection may execute over the given
// collections. A projection over zero categories or zero salaries is
// meaningless (and would produce degenerate arithmetic), so the gate
// requires both to be non-empty. A nil ("not yet loaded") collection and a
// loaded-but-empty one both fail.
//
// The gate is pure and must be re-evaluated on every change to either
// input; it is the only check consulted before a dispatch.
func ShouldRun(categories []NormalizedCategory, salaries []NormalizedSalary) bool {
	return len(categories) > 0 && len(salaries) > 0
}
