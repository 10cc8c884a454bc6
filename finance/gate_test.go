package finance_test

import (
	"testing"

	"github.com/meridian/forecast-engine/finance"
)

// =============================================================================
// RUN GATE TRUTH TABLE
// =============================================================================

func TestShouldRun_TruthTable(t *testing.T) {
	cat := finance.NormalizedCategory{Category: finance.Category{ID: "cat-1"}}
	sal := finance.NormalizedSalary{Salary: finance.Salary{ID: "sal-1"}}

	cases := []struct {
		name       string
		categories []finance.NormalizedCategory
		salaries   []finance.NormalizedSalary
		want       bool
	}{
		{"both absent", nil, nil, false},
		{"categories absent", nil, []finance.NormalizedSalary{sal}, false},
		{"salaries absent", []finance.NormalizedCategory{cat}, nil, false},
		{"categories loaded empty", []finance.NormalizedCategory{}, []finance.NormalizedSalary{sal}, false},
		{"salaries loaded empty", []finance.NormalizedCategory{cat}, []finance.NormalizedSalary{}, false},
		{"both loaded empty", []finance.NormalizedCategory{}, []finance.NormalizedSalary{}, false},
		{"both non-empty", []finance.NormalizedCategory{cat}, []finance.NormalizedSalary{sal}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := finance.ShouldRun(tc.categories, tc.salaries); got != tc.want {
				t.Errorf("ShouldRun(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}
