package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Storage provides SQLite database access for the engine's records.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer; serialize access through a single
	// connection instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

const timeFormat = time.RFC3339Nano

func encodeTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation detects a UNIQUE constraint failure so callers
// can map it to ErrConflict.
func isUniqueViolation(err error) bool {
	if e, ok := err.(sqlite3.Error); ok {
		return e.Code == sqlite3.ErrConstraint &&
			(e.ExtendedCode == sqlite3.ErrConstraintUnique || e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	return false
}

// --- users ---

// SaveUser inserts or updates a user profile.
func (s *Storage) SaveUser(u *User) error {
	_, err := s.db.Exec(`
	INSERT OR REPLACE INTO users (id, name, timezone) VALUES (?, ?, ?)`,
		u.ID, u.Name, u.Timezone)
	return err
}

// GetUser retrieves a user by id.
func (s *Storage) GetUser(id string) (*User, error) {
	u := &User{}
	err := s.db.QueryRow(`SELECT id, name, timezone FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Timezone)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// --- templates ---

// CreateTemplate inserts a new template.
func (s *Storage) CreateTemplate(t *plan.Template) error {
	query := `
	INSERT INTO templates
	(id, user_id, name, kind, period, interval, first_date, end_date,
	 day_rule_kind, day_rule_day, day_rule_weekday, amount, category_id,
	 account_id, active, spend_mode, auto_match_enabled, amount_tolerance,
	 match_window_days, skip_review, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, templateArgs(t)...)
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// UpdateTemplate replaces an existing template row.
func (s *Storage) UpdateTemplate(t *plan.Template) error {
	query := `
	UPDATE templates SET
	 user_id = ?, name = ?, kind = ?, period = ?, interval = ?,
	 first_date = ?, end_date = ?, day_rule_kind = ?, day_rule_day = ?,
	 day_rule_weekday = ?, amount = ?, category_id = ?, account_id = ?,
	 active = ?, spend_mode = ?, auto_match_enabled = ?, amount_tolerance = ?,
	 match_window_days = ?, skip_review = ?, created_at = ?
	WHERE id = ?
	`
	args := templateArgs(t)
	args = append(args[1:], t.ID)
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func templateArgs(t *plan.Template) []any {
	var endDate any
	if t.EndDate != nil {
		endDate = t.EndDate.String()
	}
	var ruleKind any
	ruleDay, ruleWeekday := 0, 0
	if t.DayRule != nil {
		ruleKind = string(t.DayRule.Kind)
		ruleDay = t.DayRule.Day
		ruleWeekday = int(t.DayRule.Weekday)
	}
	var tolerance any
	if t.Policy.AmountTolerance != nil {
		tolerance = t.Policy.AmountTolerance.String()
	}
	return []any{
		t.ID, t.UserID, t.Name, string(t.Kind), string(t.Period), t.Interval,
		t.FirstDate.String(), endDate, ruleKind, ruleDay, ruleWeekday,
		t.Amount.String(), t.CategoryID, t.AccountID, t.Active,
		string(t.SpendMode), t.Policy.AutoMatchEnabled, tolerance,
		t.Policy.MatchWindowDays, t.Policy.SkipReview, encodeTime(t.CreatedAt),
	}
}

const templateColumns = `id, user_id, name, kind, period, interval, first_date,
 end_date, day_rule_kind, day_rule_day, day_rule_weekday, amount, category_id,
 account_id, active, spend_mode, auto_match_enabled, amount_tolerance,
 match_window_days, skip_review, created_at`

func scanTemplate(row interface{ Scan(...any) error }) (*plan.Template, error) {
	t := &plan.Template{}
	var kind, period, spendMode, firstDate, amount, createdAt string
	var endDate, ruleKind, tolerance sql.NullString
	var ruleDay, ruleWeekday int

	err := row.Scan(&t.ID, &t.UserID, &t.Name, &kind, &period, &t.Interval,
		&firstDate, &endDate, &ruleKind, &ruleDay, &ruleWeekday, &amount,
		&t.CategoryID, &t.AccountID, &t.Active, &spendMode,
		&t.Policy.AutoMatchEnabled, &tolerance, &t.Policy.MatchWindowDays,
		&t.Policy.SkipReview, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.Kind = plan.TemplateKind(kind)
	t.Period = plan.PeriodKind(period)
	t.SpendMode = plan.ImplicitSpendMode(spendMode)
	if t.FirstDate, err = plan.ParseDate(firstDate); err != nil {
		return nil, err
	}
	if endDate.Valid {
		d, err := plan.ParseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		t.EndDate = &d
	}
	if ruleKind.Valid {
		t.DayRule = &plan.DayRule{
			Kind:    plan.DayRuleKind(ruleKind.String),
			Day:     ruleDay,
			Weekday: time.Weekday(ruleWeekday),
		}
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("template %s: bad amount: %w", t.ID, err)
	}
	if tolerance.Valid {
		tol, err := decimal.NewFromString(tolerance.String)
		if err != nil {
			return nil, fmt.Errorf("template %s: bad tolerance: %w", t.ID, err)
		}
		t.Policy.AmountTolerance = &tol
	}
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

// GetTemplate retrieves a template by id.
func (s *Storage) GetTemplate(id string) (*plan.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	return scanTemplate(row)
}

// ListTemplates returns a user's templates, oldest first.
func (s *Storage) ListTemplates(userID string, activeOnly bool) ([]plan.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []plan.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// DeleteTemplate removes a template row.
func (s *Storage) DeleteTemplate(id string) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- overrides ---

// UpsertOverride inserts or replaces the override for the occurrence
// it pins.
func (s *Storage) UpsertOverride(o *plan.Override) error {
	var newDate, newAmount, newCategory, newName any
	if o.NewDate != nil {
		newDate = o.NewDate.String()
	}
	if o.NewAmount != nil {
		newAmount = o.NewAmount.String()
	}
	if o.NewCategoryID != nil {
		newCategory = *o.NewCategoryID
	}
	if o.NewName != nil {
		newName = *o.NewName
	}
	_, err := s.db.Exec(`
	INSERT INTO overrides
	(id, template_id, original_date, new_date, new_amount, new_category_id,
	 new_name, skipped, materialized, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (template_id, original_date) DO UPDATE SET
	 new_date = excluded.new_date, new_amount = excluded.new_amount,
	 new_category_id = excluded.new_category_id, new_name = excluded.new_name,
	 skipped = excluded.skipped, materialized = excluded.materialized`,
		o.ID, o.TemplateID, o.OriginalDate.String(), newDate, newAmount,
		newCategory, newName, o.Skipped, o.Materialized, encodeTime(o.CreatedAt))
	return err
}

const overrideColumns = `id, template_id, original_date, new_date, new_amount,
 new_category_id, new_name, skipped, materialized, created_at`

func scanOverride(row interface{ Scan(...any) error }) (*plan.Override, error) {
	o := &plan.Override{}
	var originalDate, createdAt string
	var newDate, newAmount, newCategory, newName sql.NullString

	err := row.Scan(&o.ID, &o.TemplateID, &originalDate, &newDate, &newAmount,
		&newCategory, &newName, &o.Skipped, &o.Materialized, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.OriginalDate, err = plan.ParseDate(originalDate); err != nil {
		return nil, err
	}
	if newDate.Valid {
		d, err := plan.ParseDate(newDate.String)
		if err != nil {
			return nil, err
		}
		o.NewDate = &d
	}
	if newAmount.Valid {
		a, err := decimal.NewFromString(newAmount.String)
		if err != nil {
			return nil, fmt.Errorf("override %s: bad amount: %w", o.ID, err)
		}
		o.NewAmount = &a
	}
	if newCategory.Valid {
		o.NewCategoryID = &newCategory.String
	}
	if newName.Valid {
		o.NewName = &newName.String
	}
	o.CreatedAt = parseTime(createdAt)
	return o, nil
}

// GetOverride looks up the override pinned to (template, date).
func (s *Storage) GetOverride(templateID string, originalDate plan.Date) (*plan.Override, error) {
	row := s.db.QueryRow(`SELECT `+overrideColumns+` FROM overrides
	 WHERE template_id = ? AND original_date = ?`, templateID, originalDate.String())
	return scanOverride(row)
}

// ListOverrides returns all overrides of a template.
func (s *Storage) ListOverrides(templateID string) ([]plan.Override, error) {
	rows, err := s.db.Query(`SELECT `+overrideColumns+` FROM overrides
	 WHERE template_id = ? ORDER BY original_date`, templateID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []plan.Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// DeleteOverride removes an override (revert to the template default).
func (s *Storage) DeleteOverride(id string) error {
	res, err := s.db.Exec(`DELETE FROM overrides WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- transactions ---

// SaveTransaction inserts or updates a transaction.
func (s *Storage) SaveTransaction(tx *plan.Transaction) error {
	_, err := s.db.Exec(`
	INSERT OR REPLACE INTO transactions
	(id, user_id, account_id, date, amount, description, merchant, notes,
	 category_id, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.AccountID, tx.Date.String(), tx.Amount.String(),
		tx.Description, tx.Merchant, tx.Notes, tx.CategoryID, string(tx.Status),
		encodeTime(tx.CreatedAt))
	return err
}

const transactionColumns = `id, user_id, account_id, date, amount, description,
 merchant, notes, category_id, status, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*plan.Transaction, error) {
	tx := &plan.Transaction{}
	var date, amount, status, createdAt string

	err := row.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &date, &amount,
		&tx.Description, &tx.Merchant, &tx.Notes, &tx.CategoryID, &status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if tx.Date, err = plan.ParseDate(date); err != nil {
		return nil, err
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("transaction %s: bad amount: %w", tx.ID, err)
	}
	tx.Status = plan.TransactionStatus(status)
	tx.CreatedAt = parseTime(createdAt)
	return tx, nil
}

// GetTransaction retrieves a transaction by id.
func (s *Storage) GetTransaction(id string) (*plan.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// ListTransactions returns transactions matching the filters, date
// ascending.
func (s *Storage) ListTransactions(f TransactionFilters) ([]plan.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any
	if f.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.AccountID != "" {
		query += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	query += ` ORDER BY date, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []plan.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

// --- match records ---

// CreateMatchRecord inserts a match record. The UNIQUE constraint on
// transaction_id makes this insert-if-absent: a concurrent or repeat
// attempt gets ErrConflict.
func (s *Storage) CreateMatchRecord(r *plan.MatchRecord) error {
	_, err := s.db.Exec(`
	INSERT INTO match_records
	(id, user_id, transaction_id, template_id, expected_date, confidence,
	 method, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.TransactionID, r.TemplateID, r.ExpectedDate.String(),
		r.Confidence, string(r.Method), encodeTime(r.CreatedAt))
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

const matchColumns = `id, user_id, transaction_id, template_id, expected_date,
 confidence, method, created_at`

func scanMatch(row interface{ Scan(...any) error }) (*plan.MatchRecord, error) {
	r := &plan.MatchRecord{}
	var expectedDate, method, createdAt string

	err := row.Scan(&r.ID, &r.UserID, &r.TransactionID, &r.TemplateID,
		&expectedDate, &r.Confidence, &method, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.ExpectedDate, err = plan.ParseDate(expectedDate); err != nil {
		return nil, err
	}
	r.Method = plan.MatchMethod(method)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// GetMatchByTransaction returns the active match for a transaction.
func (s *Storage) GetMatchByTransaction(transactionID string) (*plan.MatchRecord, error) {
	row := s.db.QueryRow(`SELECT `+matchColumns+` FROM match_records
	 WHERE transaction_id = ?`, transactionID)
	return scanMatch(row)
}

// ListMatchesByTemplate returns all matches against a template's
// occurrences.
func (s *Storage) ListMatchesByTemplate(templateID string) ([]plan.MatchRecord, error) {
	rows, err := s.db.Query(`SELECT `+matchColumns+` FROM match_records
	 WHERE template_id = ? ORDER BY expected_date`, templateID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []plan.MatchRecord
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// DeleteMatchByTransaction unmatches a transaction. The transaction
// row is untouched.
func (s *Storage) DeleteMatchByTransaction(transactionID string) error {
	res, err := s.db.Exec(`DELETE FROM match_records WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- rules ---

// CreateRule inserts a categorization rule.
func (s *Storage) CreateRule(r *plan.Rule) error {
	_, err := s.db.Exec(`
	INSERT INTO rules
	(id, user_id, priority, field, operator, value, case_sensitive,
	 category_id, enabled, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Priority, string(r.Field), string(r.Operator),
		r.Value, r.CaseSensitive, r.CategoryID, r.Enabled, encodeTime(r.CreatedAt))
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

const ruleColumns = `id, user_id, priority, field, operator, value,
 case_sensitive, category_id, enabled, created_at`

func scanRule(row interface{ Scan(...any) error }) (*plan.Rule, error) {
	r := &plan.Rule{}
	var field, operator, createdAt string

	err := row.Scan(&r.ID, &r.UserID, &r.Priority, &field, &operator, &r.Value,
		&r.CaseSensitive, &r.CategoryID, &r.Enabled, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.Field = plan.RuleField(field)
	r.Operator = plan.RuleOperator(operator)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// GetRule retrieves a rule by id.
func (s *Storage) GetRule(id string) (*plan.Rule, error) {
	row := s.db.QueryRow(`SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id)
	return scanRule(row)
}

// ListRules returns all of a user's rules (enabled or not).
func (s *Storage) ListRules(userID string) ([]plan.Rule, error) {
	rows, err := s.db.Query(`SELECT `+ruleColumns+` FROM rules
	 WHERE user_id = ? ORDER BY priority DESC, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []plan.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateRule replaces an existing rule row.
func (s *Storage) UpdateRule(r *plan.Rule) error {
	res, err := s.db.Exec(`
	UPDATE rules SET priority = ?, field = ?, operator = ?, value = ?,
	 case_sensitive = ?, category_id = ?, enabled = ? WHERE id = ?`,
		r.Priority, string(r.Field), string(r.Operator), r.Value,
		r.CaseSensitive, r.CategoryID, r.Enabled, r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteRule removes a rule.
func (s *Storage) DeleteRule(id string) error {
	res, err := s.db.Exec(`DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- reviews ---

// AddReview queues a transaction for review.
func (s *Storage) AddReview(item *ReviewItem) error {
	candidatesJSON, err := json.Marshal(item.Candidates)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
	INSERT INTO reviews
	(id, user_id, transaction_id, candidates_json, status, created_at, resolved_at)
	VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		item.ID, item.UserID, item.TransactionID, string(candidatesJSON),
		item.Status, encodeTime(item.CreatedAt))
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func scanReview(row interface{ Scan(...any) error }) (*ReviewItem, error) {
	item := &ReviewItem{}
	var candidatesJSON, createdAt string
	var resolvedAt sql.NullString

	err := row.Scan(&item.ID, &item.UserID, &item.TransactionID,
		&candidatesJSON, &item.Status, &createdAt, &resolvedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(candidatesJSON), &item.Candidates); err != nil {
		return nil, fmt.Errorf("review %s: bad candidates json: %w", item.ID, err)
	}
	item.CreatedAt = parseTime(createdAt)
	if resolvedAt.Valid {
		t := parseTime(resolvedAt.String)
		item.ResolvedAt = &t
	}
	return item, nil
}

// GetReview retrieves a review item by id.
func (s *Storage) GetReview(id string) (*ReviewItem, error) {
	row := s.db.QueryRow(`SELECT id, user_id, transaction_id, candidates_json,
	 status, created_at, resolved_at FROM reviews WHERE id = ?`, id)
	return scanReview(row)
}

// ListReviews returns a user's review items, oldest first. An empty
// status returns all of them.
func (s *Storage) ListReviews(userID, status string) ([]ReviewItem, error) {
	query := `SELECT id, user_id, transaction_id, candidates_json,
	 status, created_at, resolved_at FROM reviews
	 WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ReviewItem
	for rows.Next() {
		item, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// UpdateReviewStatus resolves a review item.
func (s *Storage) UpdateReviewStatus(id, status string) error {
	res, err := s.db.Exec(`UPDATE reviews SET status = ?, resolved_at = ? WHERE id = ?`,
		status, encodeTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- transfer pairs ---

// SaveTransferPair records a confirmed or dismissed pair decision.
func (s *Storage) SaveTransferPair(p *TransferPair) error {
	_, err := s.db.Exec(`
	INSERT OR REPLACE INTO transfer_pairs
	(pair_key, user_id, out_tx_id, in_tx_id, confidence, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Key, p.UserID, p.OutTxID, p.InTxID, p.Confidence, p.Status,
		encodeTime(p.CreatedAt))
	return err
}

// GetTransferPair retrieves a pair decision by canonical key.
func (s *Storage) GetTransferPair(key string) (*TransferPair, error) {
	p := &TransferPair{}
	var createdAt string
	err := s.db.QueryRow(`SELECT pair_key, user_id, out_tx_id, in_tx_id,
	 confidence, status, created_at FROM transfer_pairs WHERE pair_key = ?`, key).
		Scan(&p.Key, &p.UserID, &p.OutTxID, &p.InTxID, &p.Confidence, &p.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// ListTransferPairs returns a user's pair decisions, optionally
// filtered by status.
func (s *Storage) ListTransferPairs(userID, status string) ([]TransferPair, error) {
	query := `SELECT pair_key, user_id, out_tx_id, in_tx_id, confidence, status,
	 created_at FROM transfer_pairs WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []TransferPair
	for rows.Next() {
		p := TransferPair{}
		var createdAt string
		if err := rows.Scan(&p.Key, &p.UserID, &p.OutTxID, &p.InTxID,
			&p.Confidence, &p.Status, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// requireRow maps a zero-row write to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
