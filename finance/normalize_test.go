package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/forecast-engine/finance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testUser() finance.User {
	return finance.User{
		ID:            "user-1",
		InflationRate: decimal.NewFromFloat(0.03),
		Currency:      finance.CurrencyUSD,
		InvestPerc:    decimal.NewFromFloat(0.5),
		IndexReturn:   decimal.NewFromFloat(0.05),
	}
}

func sel(value, label string) finance.Selection {
	return finance.Selection{Value: value, Label: label}
}

func selPtr(value, label string) *finance.Selection {
	s := sel(value, label)
	return &s
}

func strPtr(s string) *string { return &s }

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// rawExpenseCategory is a fully selection-wrapped category form with no
// optional overrides set.
func rawExpenseCategory(records []finance.RawRecord) finance.RawCategory {
	return finance.RawCategory{
		ID:       "cat-1",
		UserID:   "user-1",
		Type:     sel("expense", "Expense"),
		Currency: sel("USD", "US Dollar"),
		Country:  sel("US", "United States"),
		InflType: sel("fixed", "Fixed"),
		FreqType: sel("months", "Monthly"),
		Records:  records,
	}
}

// =============================================================================
// CATEGORY NORMALIZATION
// =============================================================================

func TestNormalizeCategory_EnumRoundTrip(t *testing.T) {
	raw := rawExpenseCategory(nil)
	raw.Currency = sel("USD", "US Dollar")

	out := finance.NormalizeCategory(raw, testUser())

	assert.Equal(t, finance.CurrencyUSD, out.Category.Currency)
	assert.Equal(t, finance.TypeExpense, out.Category.Type)
	assert.Equal(t, finance.Country("US"), out.Category.Country)
	assert.Equal(t, finance.InflationFixed, out.Category.InflType)
	assert.Equal(t, finance.FreqMonths, out.Category.FreqType)
}

func TestNormalizeCategory_DefaultChain(t *testing.T) {
	user := testUser()
	raw := rawExpenseCategory(nil)
	raw.InflVal = nil
	raw.Frequency = nil
	raw.Icon = nil

	out := finance.NormalizeCategory(raw, user)

	// No category override: inflation comes from the user.
	assert.True(t, out.Category.InflVal.Equal(user.InflationRate),
		"expected user inflation %s, got %s", user.InflationRate, out.Category.InflVal)
	assert.Equal(t, finance.DefaultFrequency, out.Category.Frequency)
	assert.Equal(t, finance.DefaultIcon, out.Category.Icon)
}

func TestNormalizeCategory_ExplicitOverridesKept(t *testing.T) {
	raw := rawExpenseCategory(nil)
	raw.InflVal = decPtr(0.07)
	freq := 3
	raw.Frequency = &freq
	raw.Icon = strPtr("house")

	out := finance.NormalizeCategory(raw, testUser())

	assert.True(t, out.Category.InflVal.Equal(decimal.NewFromFloat(0.07)))
	assert.Equal(t, 3, out.Category.Frequency)
	assert.Equal(t, "house", out.Category.Icon)
}

func TestNormalizeCategory_NilRecordsStaysNil(t *testing.T) {
	out := finance.NormalizeCategory(rawExpenseCategory(nil), testUser())
	assert.Nil(t, out.Records)
}

func TestNormalizeCategory_EmptyRecordsStaysEmpty(t *testing.T) {
	out := finance.NormalizeCategory(rawExpenseCategory([]finance.RawRecord{}), testUser())
	require.NotNil(t, out.Records)
	assert.Len(t, out.Records, 0)
}

func TestNormalizeCategory_RemovalListStripped(t *testing.T) {
	raw := rawExpenseCategory(nil)
	raw.RemoveIDs = []string{"rec-9", "rec-10"}

	out := finance.NormalizeCategory(raw, testUser())

	// The output category is the plain persisted shape: no UI-only fields
	// exist on it at all, so the removal list cannot survive normalization.
	assert.Equal(t, "cat-1", out.Category.ID)
	assert.Nil(t, out.Records)
}

func TestNormalizeRecord_TitleDefault(t *testing.T) {
	raw := rawExpenseCategory([]finance.RawRecord{
		{Title: nil, Amount: decimal.NewFromInt(100)},
		{Title: strPtr("Rent"), Amount: decimal.NewFromInt(900)},
	})

	out := finance.NormalizeCategory(raw, testUser())

	require.Len(t, out.Records, 2)
	assert.Equal(t, "", out.Records[0].Title)
	assert.Equal(t, "Rent", out.Records[1].Title)
}

func TestNormalizeRecord_FallsBackToUserNotCategory(t *testing.T) {
	// The category carries its own inflation override and currency; records
	// must still default from the USER.
	user := testUser()
	raw := rawExpenseCategory([]finance.RawRecord{
		{Amount: decimal.NewFromInt(50)},
	})
	raw.InflVal = decPtr(0.10)
	raw.Currency = sel("EUR", "Euro")

	out := finance.NormalizeCategory(raw, user)

	require.Len(t, out.Records, 1)
	rec := out.Records[0]
	assert.True(t, rec.Inflation.Equal(user.InflationRate),
		"record inflation should come from the user, got %s", rec.Inflation)
	assert.Equal(t, finance.CurrencyUSD, rec.Currency)
}

func TestNormalizeRecord_IdentityPreservedOrOmitted(t *testing.T) {
	raw := rawExpenseCategory([]finance.RawRecord{
		{ID: strPtr("rec-1"), Amount: decimal.NewFromInt(10)},
		{Amount: decimal.NewFromInt(20)},
	})

	out := finance.NormalizeCategory(raw, testUser())

	require.Len(t, out.Records, 2)
	assert.Equal(t, "rec-1", out.Records[0].ID)
	assert.Equal(t, "", out.Records[1].ID, "unpersisted record keeps an empty id")
}

func TestNormalizeRecord_EndToEnd(t *testing.T) {
	// User inflation 0.03, currency USD; one expense record with every
	// optional field absent.
	user := testUser()
	raw := rawExpenseCategory([]finance.RawRecord{
		{Amount: decimal.NewFromInt(1200)},
	})

	out := finance.NormalizeCategory(raw, user)

	require.Len(t, out.Records, 1)
	rec := out.Records[0]
	assert.Equal(t, "", rec.Title)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, finance.CurrencyUSD, rec.Currency)
	assert.True(t, rec.Inflation.Equal(decimal.NewFromFloat(0.03)))
	assert.Equal(t, finance.DefaultFrequency, rec.Frequency)
}

func TestNormalizeCategory_Deterministic(t *testing.T) {
	raw := rawExpenseCategory([]finance.RawRecord{
		{Title: strPtr("Groceries"), Amount: decimal.NewFromInt(400), Currency: selPtr("EUR", "Euro")},
	})

	first := finance.NormalizeCategory(raw, testUser())
	second := finance.NormalizeCategory(raw, testUser())

	assert.Equal(t, first, second)
}

// =============================================================================
// SALARY NORMALIZATION
// =============================================================================

func rawSalary() finance.RawSalary {
	return finance.RawSalary{
		ID:       "sal-1",
		UserID:   "user-1",
		Amount:   decimal.NewFromInt(60000),
		Currency: sel("USD", "US Dollar"),
		TaxType:  sel("gross", "Gross"),
	}
}

func TestNormalizeSalary_TitleDefault(t *testing.T) {
	out := finance.NormalizeSalary(rawSalary())
	assert.Equal(t, finance.DefaultSalaryTitle, out.Salary.Title)

	raw := rawSalary()
	raw.Title = strPtr("Consulting")
	out = finance.NormalizeSalary(raw)
	assert.Equal(t, "Consulting", out.Salary.Title)
}

func TestNormalizeSalary_EnumsResolved(t *testing.T) {
	out := finance.NormalizeSalary(rawSalary())
	assert.Equal(t, finance.CurrencyUSD, out.Salary.Currency)
	assert.Equal(t, finance.TaxGross, out.Salary.TaxType)
	assert.Equal(t, "sal-1", out.Salary.ID, "salary identity is required in the output")
}

func TestNormalizeSalary_VarianceSeparated(t *testing.T) {
	raw := rawSalary()
	raw.Variance = []finance.RawVariance{
		{Period: 5, Amount: decimal.NewFromInt(70000)},
		{Period: 10, Amount: decimal.NewFromInt(80000)},
	}
	raw.RemoveIDs = []string{"var-3"}

	out := finance.NormalizeSalary(raw)

	require.Len(t, out.Variance, 2)
	assert.Equal(t, 5, out.Variance[0].Period)
	assert.Equal(t, 10, out.Variance[1].Period)
	// The persisted salary shape has no variance or removal fields; only
	// the separated slice carries periods.
	assert.True(t, out.Salary.Amount.Equal(decimal.NewFromInt(60000)))
}

func TestNormalizeSalary_NilVarianceStaysNil(t *testing.T) {
	out := finance.NormalizeSalary(rawSalary())
	assert.Nil(t, out.Variance)
}
