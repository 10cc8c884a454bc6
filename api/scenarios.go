/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a user, categories
	with records, and salaries that demonstrate specific engine features.

AVAILABLE SCENARIOS:

	single-earner:  One salary, basic living expenses
	career-growth:  Salary variance steps, invested surplus
	expat:          Multi-currency records converted into the base currency

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save user settings
 3. Save categories with their records
 4. Save salaries with variance periods

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "career-growth"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - server.go: Scenario routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/meridian/forecast-engine/finance"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-earner",
		Name:        "Single Earner",
		Description: "One net salary, rent and groceries, half of surplus invested",
	},
	{
		ID:          "career-growth",
		Name:        "Career Growth",
		Description: "Gross salary with raises at years 3 and 7, inflating expenses",
	},
	{
		ID:          "expat",
		Name:        "Expat",
		Description: "EUR salary and mixed-currency expenses projected in USD",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "single-earner":
		err = h.loadSingleEarnerScenario(ctx)
	case "career-growth":
		err = h.loadCareerGrowthScenario(ctx)
	case "expat":
		err = h.loadExpatScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"user_id":  demoUserID,
	})
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:   h.currentScenario,
		Name: h.currentScenario,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

const demoUserID = "demo"

func demoUser(currency finance.Currency) finance.User {
	return finance.User{
		ID:            demoUserID,
		InflationRate: decimal.NewFromFloat(0.02),
		Currency:      currency,
		InvestPerc:    decimal.NewFromFloat(0.5),
		IndexReturn:   decimal.NewFromFloat(0.05),
	}
}

func monthlyCategory(id string, user finance.User, records ...finance.Record) finance.NormalizedCategory {
	return finance.NormalizedCategory{
		Category: finance.Category{
			ID:        id,
			UserID:    user.ID,
			Type:      finance.TypeExpense,
			Icon:      finance.DefaultIcon,
			Currency:  user.Currency,
			Country:   finance.Country("US"),
			InflType:  finance.InflationFixed,
			InflVal:   user.InflationRate,
			FreqType:  finance.FreqMonths,
			Frequency: 1,
		},
		Records: records,
	}
}

func expenseRecord(id, title string, amount int64, user finance.User) finance.Record {
	return finance.Record{
		ID:        id,
		Title:     title,
		Amount:    decimal.NewFromInt(amount),
		Frequency: finance.DefaultFrequency,
		Type:      finance.TypeExpense,
		Inflation: user.InflationRate,
		Currency:  user.Currency,
	}
}

func (h *Handler) loadSingleEarnerScenario(ctx context.Context) error {
	user := demoUser(finance.CurrencyUSD)
	if err := h.Store.SaveUser(ctx, user); err != nil {
		return err
	}

	living := monthlyCategory("cat-living", user,
		expenseRecord("rec-rent", "Rent", 1600, user),
		expenseRecord("rec-groceries", "Groceries", 450, user),
		expenseRecord("rec-utilities", "Utilities", 150, user),
	)
	if err := h.Store.SaveCategory(ctx, living); err != nil {
		return err
	}

	return h.Store.SaveSalary(ctx, finance.NormalizedSalary{
		Salary: finance.Salary{
			ID:       "sal-main",
			UserID:   user.ID,
			Title:    "Software Engineer",
			Currency: finance.CurrencyUSD,
			TaxType:  finance.TaxNet,
			Amount:   decimal.NewFromInt(68000),
		},
	})
}

func (h *Handler) loadCareerGrowthScenario(ctx context.Context) error {
	user := demoUser(finance.CurrencyUSD)
	if err := h.Store.SaveUser(ctx, user); err != nil {
		return err
	}

	living := monthlyCategory("cat-living", user,
		expenseRecord("rec-rent", "Rent", 1800, user),
		expenseRecord("rec-groceries", "Groceries", 500, user),
	)
	if err := h.Store.SaveCategory(ctx, living); err != nil {
		return err
	}

	leisure := monthlyCategory("cat-leisure", user,
		expenseRecord("rec-travel", "Travel", 300, user),
		expenseRecord("rec-dining", "Dining", 250, user),
	)
	if err := h.Store.SaveCategory(ctx, leisure); err != nil {
		return err
	}

	return h.Store.SaveSalary(ctx, finance.NormalizedSalary{
		Salary: finance.Salary{
			ID:       "sal-main",
			UserID:   user.ID,
			Title:    "Product Manager",
			Currency: finance.CurrencyUSD,
			TaxType:  finance.TaxGross,
			Amount:   decimal.NewFromInt(95000),
		},
		Variance: []finance.VariancePeriod{
			{Period: 3, Amount: decimal.NewFromInt(115000)},
			{Period: 7, Amount: decimal.NewFromInt(140000)},
		},
	})
}

func (h *Handler) loadExpatScenario(ctx context.Context) error {
	user := demoUser(finance.CurrencyUSD)
	if err := h.Store.SaveUser(ctx, user); err != nil {
		return err
	}

	abroad := monthlyCategory("cat-abroad", user,
		finance.Record{
			ID: "rec-rent-berlin", Title: "Rent (Berlin)",
			Amount: decimal.NewFromInt(1400), Frequency: finance.DefaultFrequency,
			Country: finance.Country("DE"), Type: finance.TypeExpense,
			Inflation: user.InflationRate, Currency: finance.CurrencyEUR,
		},
		finance.Record{
			ID: "rec-insurance-ch", Title: "Insurance (CH)",
			Amount: decimal.NewFromInt(250), Frequency: finance.DefaultFrequency,
			Country: finance.Country("CH"), Type: finance.TypeExpense,
			Inflation: user.InflationRate, Currency: finance.CurrencyCHF,
		},
	)
	if err := h.Store.SaveCategory(ctx, abroad); err != nil {
		return err
	}

	return h.Store.SaveSalary(ctx, finance.NormalizedSalary{
		Salary: finance.Salary{
			ID:       "sal-eur",
			UserID:   user.ID,
			Title:    "Consultant",
			Currency: finance.CurrencyEUR,
			TaxType:  finance.TaxNet,
			Amount:   decimal.NewFromInt(60000),
		},
	})
}
