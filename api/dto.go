/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the form-level input shapes from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Form: Request body types from clients (selection-wrapped enums,
    optional overrides, remove lists)

ENUM ENCODING:
  Enum fields arrive as {"value": "...", "label": "..."} objects straight
  from the UI's dropdowns. The label is display-only and discarded; the
  value is validated against the closed enum sets before normalization.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - finance/raw.go: The form shapes these decode into
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/meridian/forecast-engine/finance"
)

// =============================================================================
// SELECTION ENCODING
// =============================================================================

// SelectionDTO mirrors the UI's dropdown payload.
type SelectionDTO struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

func (s SelectionDTO) toSelection() finance.Selection {
	return finance.Selection{Value: s.Value, Label: s.Label}
}

func selPtr(s *SelectionDTO) *finance.Selection {
	if s == nil {
		return nil
	}
	v := s.toSelection()
	return &v
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO represents a user's projection settings.
type SettingsDTO struct {
	ID            string          `json:"id"`
	InflationRate decimal.Decimal `json:"inflation_rate"`
	Currency      string          `json:"currency"`
	InvestPerc    decimal.Decimal `json:"invest_perc"`
	IndexReturn   decimal.Decimal `json:"index_return"`
}

// SettingsForm is the request to update a user's settings.
type SettingsForm struct {
	InflationRate decimal.Decimal `json:"inflation_rate"`
	Currency      SelectionDTO    `json:"currency"`
	InvestPerc    decimal.Decimal `json:"invest_perc"`
	IndexReturn   decimal.Decimal `json:"index_return"`
}

// =============================================================================
// CATEGORIES
// =============================================================================

// RecordForm is a single line item as edited in the UI.
type RecordForm struct {
	ID        *string          `json:"id,omitempty"`
	Title     *string          `json:"title,omitempty"`
	Amount    decimal.Decimal  `json:"amount"`
	Frequency *int             `json:"frequency,omitempty"`
	Country   *SelectionDTO    `json:"country,omitempty"`
	Type      *SelectionDTO    `json:"type,omitempty"`
	Inflation *decimal.Decimal `json:"inflation,omitempty"`
	Currency  *SelectionDTO    `json:"currency,omitempty"`
}

// CategoryForm is a category-with-records submission. RemoveIDs lists
// persisted record ids deleted in the UI; they are removed from storage
// before the rest of the form is normalized and saved.
type CategoryForm struct {
	ID        string           `json:"id,omitempty"`
	Type      SelectionDTO     `json:"type"`
	Icon      *string          `json:"icon,omitempty"`
	Currency  SelectionDTO     `json:"currency"`
	Country   SelectionDTO     `json:"country"`
	InflType  SelectionDTO     `json:"infl_type"`
	InflVal   *decimal.Decimal `json:"infl_val,omitempty"`
	FreqType  SelectionDTO     `json:"freq_type"`
	Frequency *int             `json:"frequency,omitempty"`
	Records   []RecordForm     `json:"records,omitempty"`
	RemoveIDs []string         `json:"remove_ids,omitempty"`
}

// RecordDTO represents a persisted record in API responses.
type RecordDTO struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency int             `json:"frequency"`
	Country   string          `json:"country"`
	Type      string          `json:"type"`
	Inflation decimal.Decimal `json:"inflation"`
	Currency  string          `json:"currency"`
}

// CategoryDTO represents a persisted category in API responses.
type CategoryDTO struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Icon      string          `json:"icon"`
	Currency  string          `json:"currency"`
	Country   string          `json:"country"`
	InflType  string          `json:"infl_type"`
	InflVal   decimal.Decimal `json:"infl_val"`
	FreqType  string          `json:"freq_type"`
	Frequency int             `json:"frequency"`
	Records   []RecordDTO     `json:"records"`
}

// =============================================================================
// SALARIES
// =============================================================================

// VarianceForm is a point-in-time salary override as edited in the UI.
type VarianceForm struct {
	ID     *string         `json:"id,omitempty"`
	Period int             `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

// SalaryForm is a salary-with-variance submission.
type SalaryForm struct {
	ID        string          `json:"id,omitempty"`
	Title     *string         `json:"title,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  SelectionDTO    `json:"currency"`
	TaxType   SelectionDTO    `json:"tax_type"`
	Variance  []VarianceForm  `json:"variance,omitempty"`
	RemoveIDs []string        `json:"remove_ids,omitempty"`
}

// VarianceDTO represents a variance period in API responses.
type VarianceDTO struct {
	Period int             `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

// SalaryDTO represents a persisted salary in API responses.
type SalaryDTO struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Title    string          `json:"title"`
	Currency string          `json:"currency"`
	TaxType  string          `json:"tax_type"`
	Amount   decimal.Decimal `json:"amount"`
	Variance []VarianceDTO   `json:"variance"`
}

// =============================================================================
// PROJECTION
// =============================================================================

// YearBalanceDTO is one year of the projected trajectory.
type YearBalanceDTO struct {
	Year     int             `json:"year"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Surplus  decimal.Decimal `json:"surplus"`
	Invested decimal.Decimal `json:"invested"`
	Cash     decimal.Decimal `json:"cash"`
	Balance  decimal.Decimal `json:"balance"`
}

// ProjectionDTO is the full projection response.
type ProjectionDTO struct {
	UserID     string           `json:"user_id"`
	Years      int              `json:"years"`
	Currency   string           `json:"currency"`
	Trajectory []YearBalanceDTO `json:"trajectory"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func (f CategoryForm) toRaw(userID string) finance.RawCategory {
	raw := finance.RawCategory{
		ID:        f.ID,
		UserID:    userID,
		Type:      f.Type.toSelection(),
		Icon:      f.Icon,
		Currency:  f.Currency.toSelection(),
		Country:   f.Country.toSelection(),
		InflType:  f.InflType.toSelection(),
		InflVal:   f.InflVal,
		FreqType:  f.FreqType.toSelection(),
		Frequency: f.Frequency,
		RemoveIDs: f.RemoveIDs,
	}
	if f.Records != nil {
		raw.Records = make([]finance.RawRecord, len(f.Records))
		for i, r := range f.Records {
			raw.Records[i] = finance.RawRecord{
				ID:        r.ID,
				Title:     r.Title,
				Amount:    r.Amount,
				Frequency: r.Frequency,
				Country:   selPtr(r.Country),
				Type:      selPtr(r.Type),
				Inflation: r.Inflation,
				Currency:  selPtr(r.Currency),
			}
		}
	}
	return raw
}

func (f SalaryForm) toRaw(userID string) finance.RawSalary {
	raw := finance.RawSalary{
		ID:        f.ID,
		UserID:    userID,
		Title:     f.Title,
		Amount:    f.Amount,
		Currency:  f.Currency.toSelection(),
		TaxType:   f.TaxType.toSelection(),
		RemoveIDs: f.RemoveIDs,
	}
	if f.Variance != nil {
		raw.Variance = make([]finance.RawVariance, len(f.Variance))
		for i, v := range f.Variance {
			raw.Variance[i] = finance.RawVariance{ID: v.ID, Period: v.Period, Amount: v.Amount}
		}
	}
	return raw
}

func toCategoryDTO(nc finance.NormalizedCategory) CategoryDTO {
	cat := nc.Category
	dto := CategoryDTO{
		ID:        cat.ID,
		UserID:    cat.UserID,
		Type:      string(cat.Type),
		Icon:      cat.Icon,
		Currency:  string(cat.Currency),
		Country:   string(cat.Country),
		InflType:  string(cat.InflType),
		InflVal:   cat.InflVal,
		FreqType:  string(cat.FreqType),
		Frequency: cat.Frequency,
		Records:   make([]RecordDTO, 0, len(nc.Records)),
	}
	for _, rec := range nc.Records {
		dto.Records = append(dto.Records, RecordDTO{
			ID:        rec.ID,
			Title:     rec.Title,
			Amount:    rec.Amount,
			Frequency: rec.Frequency,
			Country:   string(rec.Country),
			Type:      string(rec.Type),
			Inflation: rec.Inflation,
			Currency:  string(rec.Currency),
		})
	}
	return dto
}

func toSalaryDTO(ns finance.NormalizedSalary) SalaryDTO {
	sal := ns.Salary
	dto := SalaryDTO{
		ID:       sal.ID,
		UserID:   sal.UserID,
		Title:    sal.Title,
		Currency: string(sal.Currency),
		TaxType:  string(sal.TaxType),
		Amount:   sal.Amount,
		Variance: make([]VarianceDTO, 0, len(ns.Variance)),
	}
	for _, v := range ns.Variance {
		dto.Variance = append(dto.Variance, VarianceDTO{Period: v.Period, Amount: v.Amount})
	}
	return dto
}

func toSettingsDTO(u finance.User) SettingsDTO {
	return SettingsDTO{
		ID:            u.ID,
		InflationRate: u.InflationRate,
		Currency:      string(u.Currency),
		InvestPerc:    u.InvestPerc,
		IndexReturn:   u.IndexReturn,
	}
}
