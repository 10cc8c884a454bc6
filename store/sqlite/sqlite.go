/*
Package sqlite provides SQLite-backed persistence for the projection domain.

PURPOSE:
  Stores users, categories (with their records), and salaries (with their
  variance periods) in the plain normalized shapes from the finance package.
  Selection wrappers and UI-only collections never reach this layer.

KEY TABLES:
  users:      per-account defaults (inflation, currency, invest assumptions)
  categories: recurring income/expense buckets
  records:    line items, ordered under their category
  salaries:   income sources
  variances:  time-bound salary overrides, replaced wholesale on save

DECIMAL STORAGE:
  Monetary values and rates are stored as TEXT and parsed with
  shopspring/decimal. No floats touch the database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/forecast.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - finance/types.go: the persisted shapes
  - api/handlers.go: the write-through path (normalize, then save)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/meridian/forecast-engine/finance"
)

// Store implements persistence for users, categories, and salaries.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		inflation_rate TEXT NOT NULL,
		currency TEXT NOT NULL,
		invest_perc TEXT NOT NULL,
		index_return TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		icon TEXT NOT NULL,
		currency TEXT NOT NULL,
		country TEXT NOT NULL,
		infl_type TEXT NOT NULL,
		infl_val TEXT NOT NULL,
		freq_type TEXT NOT NULL,
		frequency INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_user
		ON categories(user_id);

	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		amount TEXT NOT NULL,
		frequency INTEGER NOT NULL,
		country TEXT NOT NULL,
		type TEXT NOT NULL,
		inflation TEXT NOT NULL,
		currency TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_category
		ON records(category_id, position);

	CREATE TABLE IF NOT EXISTS salaries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		currency TEXT NOT NULL,
		tax_type TEXT NOT NULL,
		amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_salaries_user
		ON salaries(user_id);

	CREATE TABLE IF NOT EXISTS variances (
		salary_id TEXT NOT NULL REFERENCES salaries(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		period INTEGER NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (salary_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or updates a user's settings row.
func (s *Store) SaveUser(ctx context.Context, u finance.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, inflation_rate, currency, invest_perc, index_return)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			inflation_rate = excluded.inflation_rate,
			currency = excluded.currency,
			invest_perc = excluded.invest_perc,
			index_return = excluded.index_return`,
		u.ID, u.InflationRate.String(), string(u.Currency),
		u.InvestPerc.String(), u.IndexReturn.String())
	return err
}

// GetUser returns a user's settings, or ErrUserNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*finance.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, inflation_rate, currency, invest_perc, index_return
		FROM users WHERE id = ?`, id)

	var u finance.User
	var inflation, currency, invest, index string
	if err := row.Scan(&u.ID, &inflation, &currency, &invest, &index); err != nil {
		if err == sql.ErrNoRows {
			return nil, finance.ErrUserNotFound
		}
		return nil, err
	}

	var err error
	if u.InflationRate, err = decimal.NewFromString(inflation); err != nil {
		return nil, fmt.Errorf("corrupt inflation_rate for user %s: %w", id, err)
	}
	if u.InvestPerc, err = decimal.NewFromString(invest); err != nil {
		return nil, fmt.Errorf("corrupt invest_perc for user %s: %w", id, err)
	}
	if u.IndexReturn, err = decimal.NewFromString(index); err != nil {
		return nil, fmt.Errorf("corrupt index_return for user %s: %w", id, err)
	}
	u.Currency = finance.Currency(currency)
	return &u, nil
}

// =============================================================================
// CATEGORIES + RECORDS
// =============================================================================

// SaveCategory writes a normalized category and upserts its records in
// order. Records removed in the UI are deleted separately via
// DeleteRecords; this method never drops rows.
func (s *Store) SaveCategory(ctx context.Context, nc finance.NormalizedCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cat := nc.Category
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, type, icon, currency, country, infl_type, infl_val, freq_type, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			icon = excluded.icon,
			currency = excluded.currency,
			country = excluded.country,
			infl_type = excluded.infl_type,
			infl_val = excluded.infl_val,
			freq_type = excluded.freq_type,
			frequency = excluded.frequency`,
		cat.ID, cat.UserID, string(cat.Type), cat.Icon, string(cat.Currency),
		string(cat.Country), string(cat.InflType), cat.InflVal.String(),
		string(cat.FreqType), cat.Frequency); err != nil {
		return err
	}

	for i, rec := range nc.Records {
		if rec.ID == "" {
			return fmt.Errorf("record %d of category %s has no id; assign before saving", i, cat.ID)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, category_id, position, title, amount, frequency, country, type, inflation, currency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				position = excluded.position,
				title = excluded.title,
				amount = excluded.amount,
				frequency = excluded.frequency,
				country = excluded.country,
				type = excluded.type,
				inflation = excluded.inflation,
				currency = excluded.currency`,
			rec.ID, cat.ID, i, rec.Title, rec.Amount.String(), rec.Frequency,
			string(rec.Country), string(rec.Type), rec.Inflation.String(),
			string(rec.Currency)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteRecords removes the given record rows. This is the persistence
// side of the UI's ids-to-remove list.
func (s *Store) DeleteRecords(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetCategory returns one category with its records, or ErrCategoryNotFound.
func (s *Store) GetCategory(ctx context.Context, id string) (*finance.NormalizedCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cats, err := s.queryCategories(ctx, `
		SELECT id, user_id, type, icon, currency, country, infl_type, infl_val, freq_type, frequency
		FROM categories WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, finance.ErrCategoryNotFound
	}
	return &cats[0], nil
}

// ListCategories returns all of a user's categories with records, record
// order preserved.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]finance.NormalizedCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCategories(ctx, `
		SELECT id, user_id, type, icon, currency, country, infl_type, infl_val, freq_type, frequency
		FROM categories WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]finance.NormalizedCategory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.NormalizedCategory
	for rows.Next() {
		var cat finance.Category
		var typ, currency, country, inflType, inflVal, freqType string
		if err := rows.Scan(&cat.ID, &cat.UserID, &typ, &cat.Icon, &currency,
			&country, &inflType, &inflVal, &freqType, &cat.Frequency); err != nil {
			return nil, err
		}
		cat.Type = finance.CategoryType(typ)
		cat.Currency = finance.Currency(currency)
		cat.Country = finance.Country(country)
		cat.InflType = finance.InflationType(inflType)
		cat.FreqType = finance.FrequencyType(freqType)
		if cat.InflVal, err = decimal.NewFromString(inflVal); err != nil {
			return nil, fmt.Errorf("corrupt infl_val for category %s: %w", cat.ID, err)
		}
		result = append(result, finance.NormalizedCategory{Category: cat})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		records, err := s.queryRecords(ctx, result[i].Category.ID)
		if err != nil {
			return nil, err
		}
		result[i].Records = records
	}
	return result, nil
}

func (s *Store) queryRecords(ctx context.Context, categoryID string) ([]finance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, amount, frequency, country, type, inflation, currency
		FROM records WHERE category_id = ? ORDER BY position`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []finance.Record
	for rows.Next() {
		var rec finance.Record
		var amount, country, typ, inflation, currency string
		if err := rows.Scan(&rec.ID, &rec.Title, &amount, &rec.Frequency,
			&country, &typ, &inflation, &currency); err != nil {
			return nil, err
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for record %s: %w", rec.ID, err)
		}
		if rec.Inflation, err = decimal.NewFromString(inflation); err != nil {
			return nil, fmt.Errorf("corrupt inflation for record %s: %w", rec.ID, err)
		}
		rec.Country = finance.Country(country)
		rec.Type = finance.CategoryType(typ)
		rec.Currency = finance.Currency(currency)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteCategory removes a category; its records cascade.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.ErrCategoryNotFound
	}
	return nil
}

// =============================================================================
// SALARIES + VARIANCES
// =============================================================================

// SaveSalary writes a normalized salary and replaces its variance periods
// wholesale. Variance rows have no identity of their own: the current list
// is authoritative.
func (s *Store) SaveSalary(ctx context.Context, ns finance.NormalizedSalary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sal := ns.Salary
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO salaries (id, user_id, title, currency, tax_type, amount)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			currency = excluded.currency,
			tax_type = excluded.tax_type,
			amount = excluded.amount`,
		sal.ID, sal.UserID, sal.Title, string(sal.Currency),
		string(sal.TaxType), sal.Amount.String()); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM variances WHERE salary_id = ?`, sal.ID); err != nil {
		return err
	}
	for i, v := range ns.Variance {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO variances (salary_id, position, period, amount)
			VALUES (?, ?, ?, ?)`,
			sal.ID, i, v.Period, v.Amount.String()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSalary returns one salary with its variance, or ErrSalaryNotFound.
func (s *Store) GetSalary(ctx context.Context, id string) (*finance.NormalizedSalary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sals, err := s.querySalaries(ctx, `
		SELECT id, user_id, title, currency, tax_type, amount
		FROM salaries WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sals) == 0 {
		return nil, finance.ErrSalaryNotFound
	}
	return &sals[0], nil
}

// ListSalaries returns all of a user's salaries with variance periods.
func (s *Store) ListSalaries(ctx context.Context, userID string) ([]finance.NormalizedSalary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySalaries(ctx, `
		SELECT id, user_id, title, currency, tax_type, amount
		FROM salaries WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) querySalaries(ctx context.Context, query string, args ...any) ([]finance.NormalizedSalary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.NormalizedSalary
	for rows.Next() {
		var sal finance.Salary
		var currency, taxType, amount string
		if err := rows.Scan(&sal.ID, &sal.UserID, &sal.Title, &currency, &taxType, &amount); err != nil {
			return nil, err
		}
		sal.Currency = finance.Currency(currency)
		sal.TaxType = finance.TaxType(taxType)
		if sal.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for salary %s: %w", sal.ID, err)
		}
		result = append(result, finance.NormalizedSalary{Salary: sal})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		variance, err := s.queryVariances(ctx, result[i].Salary.ID)
		if err != nil {
			return nil, err
		}
		result[i].Variance = variance
	}
	return result, nil
}

func (s *Store) queryVariances(ctx context.Context, salaryID string) ([]finance.VariancePeriod, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT period, amount FROM variances
		WHERE salary_id = ? ORDER BY position`, salaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variance []finance.VariancePeriod
	for rows.Next() {
		var v finance.VariancePeriod
		var amount string
		if err := rows.Scan(&v.Period, &amount); err != nil {
			return nil, err
		}
		if v.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt variance amount for salary %s: %w", salaryID, err)
		}
		variance = append(variance, v)
	}
	return variance, rows.Err()
}

// DeleteSalary removes a salary; its variance periods cascade.
func (s *Store) DeleteSalary(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM salaries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.ErrSalaryNotFound
	}
	return nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears every table. Used by scenario loading and tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"variances", "salaries", "records", "categories", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
