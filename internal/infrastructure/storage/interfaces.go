package storage

import (
	"github.com/finwell/planmatch/internal/domain/plan"
)

// Repository defines the complete storage boundary the engine
// consumes. The engine itself is persistence-agnostic; swapping the
// SQLite implementation for anything else, or for the in-memory mock
// in tests, is invisible to the domain packages.
type Repository interface {
	UserRepository
	TemplateRepository
	OverrideRepository
	TransactionRepository
	MatchRepository
	RuleRepository
	ReviewRepository
	TransferRepository
	Close() error
}

// UserRepository exposes the user profile, which supplies the
// timezone for all date arithmetic.
type UserRepository interface {
	SaveUser(u *User) error
	GetUser(id string) (*User, error)
}

// TemplateRepository handles recurrence templates.
type TemplateRepository interface {
	CreateTemplate(t *plan.Template) error
	GetTemplate(id string) (*plan.Template, error)
	ListTemplates(userID string, activeOnly bool) ([]plan.Template, error)
	UpdateTemplate(t *plan.Template) error
	DeleteTemplate(id string) error
}

// OverrideRepository handles per-occurrence customizations, keyed by
// (template, original expected date).
type OverrideRepository interface {
	UpsertOverride(o *plan.Override) error
	GetOverride(templateID string, originalDate plan.Date) (*plan.Override, error)
	ListOverrides(templateID string) ([]plan.Override, error)
	DeleteOverride(id string) error
}

// TransactionRepository handles real transactions delivered by bank
// sync.
type TransactionRepository interface {
	SaveTransaction(tx *plan.Transaction) error
	GetTransaction(id string) (*plan.Transaction, error)
	ListTransactions(f TransactionFilters) ([]plan.Transaction, error)
}

// MatchRepository handles transaction-occurrence links.
// CreateMatchRecord has insert-if-absent semantics on TransactionID:
// a second insert for the same transaction returns ErrConflict, which
// is how concurrent batch runs are kept from double-matching.
type MatchRepository interface {
	CreateMatchRecord(r *plan.MatchRecord) error
	GetMatchByTransaction(transactionID string) (*plan.MatchRecord, error)
	ListMatchesByTemplate(templateID string) ([]plan.MatchRecord, error)
	DeleteMatchByTransaction(transactionID string) error
}

// RuleRepository handles categorization rules.
type RuleRepository interface {
	CreateRule(r *plan.Rule) error
	GetRule(id string) (*plan.Rule, error)
	ListRules(userID string) ([]plan.Rule, error)
	UpdateRule(r *plan.Rule) error
	DeleteRule(id string) error
}

// ReviewRepository handles the pending-review queue.
type ReviewRepository interface {
	AddReview(item *ReviewItem) error
	GetReview(id string) (*ReviewItem, error)
	ListReviews(userID, status string) ([]ReviewItem, error)
	UpdateReviewStatus(id, status string) error
}

// TransferRepository records confirmed and dismissed transfer pairs.
type TransferRepository interface {
	SaveTransferPair(p *TransferPair) error
	GetTransferPair(key string) (*TransferPair, error)
	ListTransferPairs(userID, status string) ([]TransferPair, error)
}
