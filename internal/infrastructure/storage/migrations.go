package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_match_and_review_tables",
		Up:      migration002AddMatchAndReviewTables,
	},
	{
		Version: 3,
		Name:    "add_rules_table",
		Up:      migration003AddRulesTable,
	},
	{
		Version: 4,
		Name:    "add_transfer_pairs_table",
		Up:      migration004AddTransferPairsTable,
	},
	{
		Version: 5,
		Name:    "add_lookup_indexes",
		Up:      migration005AddLookupIndexes,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (s *Storage) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func migration001InitialSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC'
	);

	CREATE TABLE templates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		period TEXT NOT NULL,
		interval INTEGER NOT NULL,
		first_date TEXT NOT NULL,
		end_date TEXT,
		day_rule_kind TEXT,
		day_rule_day INTEGER NOT NULL DEFAULT 0,
		day_rule_weekday INTEGER NOT NULL DEFAULT 0,
		amount TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		account_id TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		spend_mode TEXT NOT NULL DEFAULT '',
		auto_match_enabled INTEGER NOT NULL DEFAULT 0,
		amount_tolerance TEXT,
		match_window_days INTEGER NOT NULL DEFAULT 0,
		skip_review INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE overrides (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL REFERENCES templates(id),
		original_date TEXT NOT NULL,
		new_date TEXT,
		new_amount TEXT,
		new_category_id TEXT,
		new_name TEXT,
		skipped INTEGER NOT NULL DEFAULT 0,
		materialized INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE (template_id, original_date)
	);

	CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		merchant TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'unmatched',
		created_at TEXT NOT NULL
	);
	`)
	return err
}

func migration002AddMatchAndReviewTables(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE match_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		template_id TEXT NOT NULL,
		expected_date TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		method TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE reviews (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		candidates_json TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		resolved_at TEXT
	);
	`)
	return err
}

func migration003AddRulesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE rules (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		field TEXT NOT NULL,
		operator TEXT NOT NULL,
		value TEXT NOT NULL,
		case_sensitive INTEGER NOT NULL DEFAULT 0,
		category_id TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	`)
	return err
}

func migration004AddTransferPairsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE transfer_pairs (
		pair_key TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		out_tx_id TEXT NOT NULL,
		in_tx_id TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`)
	return err
}

func migration005AddLookupIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX idx_templates_user ON templates(user_id);
	CREATE INDEX idx_overrides_template ON overrides(template_id);
	CREATE INDEX idx_transactions_user_date ON transactions(user_id, date);
	CREATE INDEX idx_match_records_template ON match_records(template_id);
	CREATE INDEX idx_rules_user ON rules(user_id);
	CREATE INDEX idx_reviews_user_status ON reviews(user_id, status);
	CREATE INDEX idx_transfer_pairs_user ON transfer_pairs(user_id);
	`)
	return err
}
