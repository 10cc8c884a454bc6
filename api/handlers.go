/*
handlers.go - HTTP API handlers for the projection service

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Settings:
    GET    /api/users/{id}/settings      Get user settings
    PUT    /api/users/{id}/settings      Update user settings

  Categories:
    GET    /api/users/{id}/categories    List categories with records
    PUT    /api/users/{id}/categories    Submit a category form
    DELETE /api/categories/{id}          Delete a category

  Salaries:
    GET    /api/users/{id}/salaries      List salaries with variance
    PUT    /api/users/{id}/salaries      Submit a salary form
    DELETE /api/salaries/{id}            Delete a salary

  Projection:
    GET    /api/users/{id}/projection    Run a projection (?years=N)

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario
    POST   /api/scenarios/reset          Clear the database

REQUEST FLOW (category/salary submission):
  1. Parse HTTP request into the form DTO
  2. Validate enum selections against the closed sets
  3. Delete rows named in the form's remove list
  4. Normalize (defaults resolve here, not in the handler)
  5. Assign ids to unpersisted rows, save, serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid enum values, bad horizon
  - 404: User/category/salary not found
  - 409: Projection gated (not enough data to run)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meridian/forecast-engine/finance"
	"github.com/meridian/forecast-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine finance.Engine
	Log    *logrus.Logger

	// DefaultYears is the projection horizon used when the request does
	// not carry a years parameter.
	DefaultYears int

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store *sqlite.Store, engine finance.Engine, log *logrus.Logger, defaultYears int) *Handler {
	return &Handler{
		Store:        store,
		Engine:       engine,
		Log:          log,
		DefaultYears: defaultYears,
	}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns a user's settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, "Failed to get settings", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingsDTO(*user))
}

// UpdateSettings creates or replaces a user's settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var form SettingsForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	currency := finance.Currency(form.Currency.toSelection().Resolve())
	if !currency.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid settings",
			&finance.InvalidEnumError{Field: "currency", Value: form.Currency.Value})
		return
	}

	user := finance.User{
		ID:            userID,
		InflationRate: form.InflationRate,
		Currency:      currency,
		InvestPerc:    form.InvestPerc,
		IndexReturn:   form.IndexReturn,
	}

	if err := h.Store.SaveUser(r.Context(), user); err != nil {
		h.respondError(w, "Failed to save settings", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingsDTO(user))
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListCategories returns all of a user's categories with their records.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	cats, err := h.Store.ListCategories(r.Context(), userID)
	if err != nil {
		h.respondError(w, "Failed to list categories", err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(cats))
	for _, nc := range cats {
		dtos = append(dtos, toCategoryDTO(nc))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveCategory accepts a category form, applies the removal list, and
// persists the normalized result.
func (h *Handler) SaveCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "id")

	var form CategoryForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := validateCategoryForm(form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category", err)
		return
	}

	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		h.respondError(w, "Failed to load user", err)
		return
	}

	raw := form.toRaw(userID)

	// The removal list is consumed here: deleted rows are gone before the
	// rest of the form is normalized and saved.
	if err := h.Store.DeleteRecords(ctx, raw.RemoveIDs); err != nil {
		h.respondError(w, "Failed to remove records", err)
		return
	}

	if raw.ID == "" {
		raw.ID = uuid.NewString()
	}

	normalized := finance.NormalizeCategory(raw, *user)
	for i := range normalized.Records {
		if normalized.Records[i].ID == "" {
			normalized.Records[i].ID = uuid.NewString()
		}
	}

	if err := h.Store.SaveCategory(ctx, normalized); err != nil {
		h.respondError(w, "Failed to save category", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"user_id":     userID,
		"category_id": normalized.Category.ID,
		"records":     len(normalized.Records),
		"removed":     len(raw.RemoveIDs),
	}).Info("category saved")

	writeJSON(w, http.StatusOK, toCategoryDTO(normalized))
}

// DeleteCategory removes a category and its records.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteCategory(r.Context(), id); err != nil {
		h.respondError(w, "Failed to delete category", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// ListSalaries returns all of a user's salaries with variance periods.
func (h *Handler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	sals, err := h.Store.ListSalaries(r.Context(), userID)
	if err != nil {
		h.respondError(w, "Failed to list salaries", err)
		return
	}

	dtos := make([]SalaryDTO, 0, len(sals))
	for _, ns := range sals {
		dtos = append(dtos, toSalaryDTO(ns))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveSalary accepts a salary form and persists the normalized result.
func (h *Handler) SaveSalary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "id")

	var form SalaryForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := validateSalaryForm(form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid salary", err)
		return
	}

	if _, err := h.Store.GetUser(ctx, userID); err != nil {
		h.respondError(w, "Failed to load user", err)
		return
	}

	raw := form.toRaw(userID)
	if raw.ID == "" {
		raw.ID = uuid.NewString()
	}

	normalized := finance.NormalizeSalary(raw)

	if err := h.Store.SaveSalary(ctx, normalized); err != nil {
		h.respondError(w, "Failed to save salary", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"salary_id": normalized.Salary.ID,
		"variance":  len(normalized.Variance),
	}).Info("salary saved")

	writeJSON(w, http.StatusOK, toSalaryDTO(normalized))
}

// DeleteSalary removes a salary and its variance periods.
func (h *Handler) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteSalary(r.Context(), id); err != nil {
		h.respondError(w, "Failed to delete salary", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PROJECTION HANDLER
// =============================================================================

// GetProjection runs a projection for a user. Categories and salaries are
// fetched concurrently and joined through the orchestrator, so the engine
// dispatch preserves the same ordering guarantees as the interactive path.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "id")

	years := h.DefaultYears
	if y := r.URL.Query().Get("years"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid years parameter", finance.ErrInvalidHorizon)
			return
		}
		years = parsed
	}

	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		h.respondError(w, "Failed to load user", err)
		return
	}

	orch := finance.NewOrchestrator(h.Engine)
	orch.Async = true

	var wg sync.WaitGroup
	fetchErrs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cats, err := h.Store.ListCategories(ctx, userID)
		if err != nil {
			fetchErrs <- err
			return
		}
		orch.SetCategories(ctx, cats)
	}()
	go func() {
		defer wg.Done()
		sals, err := h.Store.ListSalaries(ctx, userID)
		if err != nil {
			fetchErrs <- err
			return
		}
		orch.SetSalaries(ctx, sals)
	}()

	orch.SetSettings(ctx, finance.Settings{User: *user, Years: years})

	wg.Wait()
	close(fetchErrs)
	if err := <-fetchErrs; err != nil {
		h.respondError(w, "Failed to load projection inputs", err)
		return
	}

	orch.Wait()

	switch orch.State() {
	case finance.StateGated:
		writeError(w, http.StatusConflict, "Not enough data to project: add at least one category and one salary", nil)
	case finance.StateFailed:
		h.respondError(w, "Projection failed", orch.Err())
	case finance.StateComplete:
		traj := orch.Result()
		dto := ProjectionDTO{
			UserID:     userID,
			Years:      years,
			Currency:   string(user.Currency),
			Trajectory: make([]YearBalanceDTO, 0, len(traj)),
		}
		for _, yb := range traj {
			dto.Trajectory = append(dto.Trajectory, YearBalanceDTO{
				Year:     yb.Year,
				Income:   yb.Income,
				Expenses: yb.Expenses,
				Surplus:  yb.Surplus,
				Invested: yb.Invested,
				Cash:     yb.Cash,
				Balance:  yb.Balance,
			})
		}
		writeJSON(w, http.StatusOK, dto)
	default:
		// Inputs never fully arrived, which the fetch error path should
		// have caught already.
		writeError(w, http.StatusInternalServerError, "Projection did not complete", nil)
	}
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateCategoryForm(f CategoryForm) error {
	if t := finance.CategoryType(f.Type.Value); !t.Valid() {
		return &finance.InvalidEnumError{Field: "type", Value: f.Type.Value}
	}
	if c := finance.Currency(f.Currency.Value); !c.Valid() {
		return &finance.InvalidEnumError{Field: "currency", Value: f.Currency.Value}
	}
	if it := finance.InflationType(f.InflType.Value); !it.Valid() {
		return &finance.InvalidEnumError{Field: "infl_type", Value: f.InflType.Value}
	}
	if ft := finance.FrequencyType(f.FreqType.Value); !ft.Valid() {
		return &finance.InvalidEnumError{Field: "freq_type", Value: f.FreqType.Value}
	}
	for _, rec := range f.Records {
		if rec.Type != nil {
			if t := finance.CategoryType(rec.Type.Value); !t.Valid() {
				return &finance.InvalidEnumError{Field: "records.type", Value: rec.Type.Value}
			}
		}
		if rec.Currency != nil {
			if c := finance.Currency(rec.Currency.Value); !c.Valid() {
				return &finance.InvalidEnumError{Field: "records.currency", Value: rec.Currency.Value}
			}
		}
	}
	return nil
}

func validateSalaryForm(f SalaryForm) error {
	if c := finance.Currency(f.Currency.Value); !c.Valid() {
		return &finance.InvalidEnumError{Field: "currency", Value: f.Currency.Value}
	}
	if t := finance.TaxType(f.TaxType.Value); !t.Valid() {
		return &finance.InvalidEnumError{Field: "tax_type", Value: f.TaxType.Value}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// respondError maps domain errors onto HTTP statuses.
func (h *Handler) respondError(w http.ResponseWriter, message string, err error) {
	switch {
	case finance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case finance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
