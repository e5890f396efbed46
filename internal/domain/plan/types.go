// Package plan defines the core records the recurrence and matching
// engine operates on: templates, occurrences, overrides, rules, match
// records and raw transactions. The engine packages (schedule,
// occurrence, rules, matcher, transfer) are pure functions over these
// types; persistence lives behind the storage interfaces.
package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind is the recurrence cadence of a template.
type PeriodKind string

const (
	Daily       PeriodKind = "DAILY"
	Weekly      PeriodKind = "WEEKLY"
	Fortnightly PeriodKind = "FORTNIGHTLY"
	Monthly     PeriodKind = "MONTHLY"
	Annually    PeriodKind = "ANNUALLY"
)

// DayRuleKind selects how the day of the month is resolved for MONTHLY
// and ANNUALLY templates. For other period kinds the day rule must be
// empty (validated at template creation).
type DayRuleKind string

const (
	DayFixed        DayRuleKind = "FIXED"
	DayLast         DayRuleKind = "LAST_DAY"
	DayFirstWeekday DayRuleKind = "FIRST_WEEKDAY"
	DayLastWeekday  DayRuleKind = "LAST_WEEKDAY"
	DayFirstOfWeek  DayRuleKind = "FIRST_OF_WEEK"
	DayLastOfWeek   DayRuleKind = "LAST_OF_WEEK"
)

// DayRule pairs a kind with its argument: the day of the month for
// FIXED, the weekday for FIRST_OF_WEEK / LAST_OF_WEEK.
type DayRule struct {
	Kind    DayRuleKind  `json:"kind"`
	Day     int          `json:"day,omitempty"`
	Weekday time.Weekday `json:"weekday,omitempty"`
}

// TemplateKind distinguishes budget templates from planned-transaction
// templates. Both expand the same way; they differ in how consumers
// read the occurrences.
type TemplateKind string

const (
	BudgetTemplate     TemplateKind = "budget"
	PlannedTransaction TemplateKind = "planned_transaction"
)

// ImplicitSpendMode is the policy for accruing budget consumption
// within an open period before it closes.
type ImplicitSpendMode string

const (
	SpendDaily       ImplicitSpendMode = "DAILY"
	SpendEndOfPeriod ImplicitSpendMode = "END_OF_PERIOD"
	SpendNone        ImplicitSpendMode = "NONE"
)

// MatchPolicy controls how occurrences of a template participate in
// automatic matching.
type MatchPolicy struct {
	AutoMatchEnabled bool             `json:"auto_match_enabled"`
	AmountTolerance  *decimal.Decimal `json:"amount_tolerance,omitempty"` // nil = ignore amount
	MatchWindowDays  int              `json:"match_window_days"`
	SkipReview       bool             `json:"skip_review"`
}

// Template is a recurrence definition for a budget or a planned
// transaction. Once occurrences exist it is only modified through the
// explicit edit-scope operations.
type Template struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Name       string            `json:"name"`
	Kind       TemplateKind      `json:"kind"`
	Period     PeriodKind        `json:"period"`
	Interval   int               `json:"interval"`
	FirstDate  Date              `json:"first_date"`
	EndDate    *Date             `json:"end_date,omitempty"`
	DayRule    *DayRule          `json:"day_rule,omitempty"`
	Amount     decimal.Decimal   `json:"amount"`
	CategoryID string            `json:"category_id,omitempty"`
	AccountID  string            `json:"account_id"`
	Active     bool              `json:"active"`
	SpendMode  ImplicitSpendMode `json:"spend_mode,omitempty"`
	Policy     MatchPolicy       `json:"policy"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Occurrence is one concrete instance of a template on a specific
// date. It has no standalone identity until overridden: it is always
// addressed as (TemplateID, ExpectedDate).
type Occurrence struct {
	TemplateID   string `json:"template_id"`
	ExpectedDate Date   `json:"expected_date"`
	// EffectiveDate differs from ExpectedDate only when an override
	// moved the occurrence.
	EffectiveDate Date            `json:"effective_date"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    string          `json:"category_id,omitempty"`
	AccountID     string          `json:"account_id"`
	Overridden    bool            `json:"overridden"`
	OverrideID    string          `json:"override_id,omitempty"`
}

// Override is a persisted customization of a single virtual
// occurrence, pinned to the date the template originally produced.
// Once an Override exists for (TemplateID, OriginalDate) the
// occurrence at that date is always resolved from it.
type Override struct {
	ID            string           `json:"id"`
	TemplateID    string           `json:"template_id"`
	OriginalDate  Date             `json:"original_date"`
	NewDate       *Date            `json:"new_date,omitempty"`
	NewAmount     *decimal.Decimal `json:"new_amount,omitempty"`
	NewCategoryID *string          `json:"new_category_id,omitempty"`
	NewName       *string          `json:"new_name,omitempty"`
	Skipped       bool             `json:"skipped"`
	// Materialized pins the occurrence because a reviewed or manual
	// match promoted it; unmatching clears the pin.
	Materialized bool      `json:"materialized"`
	CreatedAt    time.Time `json:"created_at"`
}

// MatchMethod records how a MatchRecord came to exist.
type MatchMethod string

const (
	MatchAuto         MatchMethod = "AUTO"
	MatchAutoReviewed MatchMethod = "AUTO_REVIEWED"
	MatchManual       MatchMethod = "MANUAL"
)

// MatchRecord links one real transaction to one occurrence origin.
// At most one active record exists per transaction; the store enforces
// uniqueness on TransactionID.
type MatchRecord struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	TransactionID string      `json:"transaction_id"`
	TemplateID    string      `json:"template_id"`
	ExpectedDate  Date        `json:"expected_date"`
	Confidence    int         `json:"confidence"` // 0-100
	Method        MatchMethod `json:"method"`
	CreatedAt     time.Time   `json:"created_at"`
}

// RuleField is the transaction field a categorization rule inspects.
type RuleField string

const (
	FieldDescription RuleField = "description"
	FieldMerchant    RuleField = "merchant"
	FieldNotes       RuleField = "notes"
)

// RuleOperator is the text predicate a rule applies.
type RuleOperator string

const (
	OpContains   RuleOperator = "contains"
	OpExact      RuleOperator = "exact"
	OpStartsWith RuleOperator = "startsWith"
	OpEndsWith   RuleOperator = "endsWith"
)

// Rule is one user-defined categorization rule. Rules are evaluated in
// priority order (descending, ties broken by creation order) and the
// first match wins.
type Rule struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Priority      int          `json:"priority"`
	Field         RuleField    `json:"field"`
	Operator      RuleOperator `json:"operator"`
	Value         string       `json:"value"`
	CaseSensitive bool         `json:"case_sensitive"`
	CategoryID    string       `json:"category_id"`
	Enabled       bool         `json:"enabled"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TransactionStatus is the match lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusUnmatched     TransactionStatus = "unmatched"
	StatusPendingReview TransactionStatus = "pending_review"
	StatusMatched       TransactionStatus = "matched"
)

// Transaction is a real transaction as delivered by bank sync. The
// engine never fetches these; they arrive through the store.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	AccountID   string            `json:"account_id"`
	Date        Date              `json:"date"`
	Amount      decimal.Decimal   `json:"amount"` // signed: negative = outflow
	Description string            `json:"description"`
	Merchant    string            `json:"merchant,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CategoryID  string            `json:"category_id,omitempty"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}
