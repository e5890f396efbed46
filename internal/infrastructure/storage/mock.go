package storage

import (
	"sort"
	"sync"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// MockRepository is an in-memory implementation of Repository for
// tests and examples. A single mutex guards everything, so the
// one-match-per-transaction invariant holds under concurrent batch
// runs just like the SQLite UNIQUE constraint does.
type MockRepository struct {
	mu sync.Mutex

	users        map[string]*User
	templates    map[string]*plan.Template
	overrides    map[string]*plan.Override // keyed templateID|date
	transactions map[string]*plan.Transaction
	matches      map[string]*plan.MatchRecord // keyed by transaction id
	rules        map[string]*plan.Rule
	reviews      map[string]*ReviewItem
	pairs        map[string]*TransferPair

	// Error injection for testing failure paths
	CreateMatchRecordErr error
	ListTransactionsErr  error
	SaveTransactionErr   error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:        make(map[string]*User),
		templates:    make(map[string]*plan.Template),
		overrides:    make(map[string]*plan.Override),
		transactions: make(map[string]*plan.Transaction),
		matches:      make(map[string]*plan.MatchRecord),
		rules:        make(map[string]*plan.Rule),
		reviews:      make(map[string]*ReviewItem),
		pairs:        make(map[string]*TransferPair),
	}
}

// Close does nothing for the mock.
func (m *MockRepository) Close() error { return nil }

func overrideKey(templateID string, d plan.Date) string {
	return templateID + "|" + d.String()
}

// SaveUser stores a user profile.
func (m *MockRepository) SaveUser(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// GetUser retrieves a user profile.
func (m *MockRepository) GetUser(id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// CreateTemplate stores a new template.
func (m *MockRepository) CreateTemplate(t *plan.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.ID]; ok {
		return ErrConflict
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

// GetTemplate retrieves a template by id.
func (m *MockRepository) GetTemplate(id string) (*plan.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// ListTemplates returns a user's templates, oldest first.
func (m *MockRepository) ListTemplates(userID string, activeOnly bool) ([]plan.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.Template
	for _, t := range m.templates {
		if t.UserID != userID {
			continue
		}
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateTemplate replaces a stored template.
func (m *MockRepository) UpdateTemplate(t *plan.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

// DeleteTemplate removes a template.
func (m *MockRepository) DeleteTemplate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// UpsertOverride stores or replaces an override.
func (m *MockRepository) UpsertOverride(o *plan.Override) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.overrides[overrideKey(o.TemplateID, o.OriginalDate)] = &cp
	return nil
}

// GetOverride retrieves the override pinned to (template, date).
func (m *MockRepository) GetOverride(templateID string, originalDate plan.Date) (*plan.Override, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.overrides[overrideKey(templateID, originalDate)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// ListOverrides returns a template's overrides ordered by date.
func (m *MockRepository) ListOverrides(templateID string) ([]plan.Override, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.Override
	for _, o := range m.overrides {
		if o.TemplateID == templateID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OriginalDate.Before(out[j].OriginalDate)
	})
	return out, nil
}

// DeleteOverride removes an override by id.
func (m *MockRepository) DeleteOverride(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, o := range m.overrides {
		if o.ID == id {
			delete(m.overrides, key)
			return nil
		}
	}
	return ErrNotFound
}

// SaveTransaction stores a transaction.
func (m *MockRepository) SaveTransaction(tx *plan.Transaction) error {
	if m.SaveTransactionErr != nil {
		return m.SaveTransactionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.transactions[tx.ID] = &cp
	return nil
}

// GetTransaction retrieves a transaction by id.
func (m *MockRepository) GetTransaction(id string) (*plan.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

// ListTransactions returns transactions matching the filters, date
// ascending.
func (m *MockRepository) ListTransactions(f TransactionFilters) ([]plan.Transaction, error) {
	if m.ListTransactionsErr != nil {
		return nil, m.ListTransactionsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.Transaction
	for _, tx := range m.transactions {
		if f.UserID != "" && tx.UserID != f.UserID {
			continue
		}
		if f.AccountID != "" && tx.AccountID != f.AccountID {
			continue
		}
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.Date.After(f.To) {
			continue
		}
		out = append(out, *tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// CreateMatchRecord stores a match record, enforcing the
// one-match-per-transaction uniqueness the SQLite schema enforces.
func (m *MockRepository) CreateMatchRecord(r *plan.MatchRecord) error {
	if m.CreateMatchRecordErr != nil {
		return m.CreateMatchRecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[r.TransactionID]; ok {
		return ErrConflict
	}
	cp := *r
	m.matches[r.TransactionID] = &cp
	return nil
}

// GetMatchByTransaction returns the active match of a transaction.
func (m *MockRepository) GetMatchByTransaction(transactionID string) (*plan.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.matches[transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListMatchesByTemplate returns all matches against a template.
func (m *MockRepository) ListMatchesByTemplate(templateID string) ([]plan.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.MatchRecord
	for _, r := range m.matches {
		if r.TemplateID == templateID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpectedDate.Before(out[j].ExpectedDate)
	})
	return out, nil
}

// DeleteMatchByTransaction unmatches a transaction.
func (m *MockRepository) DeleteMatchByTransaction(transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[transactionID]; !ok {
		return ErrNotFound
	}
	delete(m.matches, transactionID)
	return nil
}

// CreateRule stores a rule.
func (m *MockRepository) CreateRule(r *plan.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[r.ID]; ok {
		return ErrConflict
	}
	cp := *r
	m.rules[r.ID] = &cp
	return nil
}

// GetRule retrieves a rule by id.
func (m *MockRepository) GetRule(id string) (*plan.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListRules returns all of a user's rules.
func (m *MockRepository) ListRules(userID string) ([]plan.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.Rule
	for _, r := range m.rules {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateRule replaces a stored rule.
func (m *MockRepository) UpdateRule(r *plan.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.rules[r.ID] = &cp
	return nil
}

// DeleteRule removes a rule.
func (m *MockRepository) DeleteRule(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return ErrNotFound
	}
	delete(m.rules, id)
	return nil
}

// AddReview queues a review item.
func (m *MockRepository) AddReview(item *ReviewItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[item.ID]; ok {
		return ErrConflict
	}
	cp := *item
	m.reviews[item.ID] = &cp
	return nil
}

// GetReview retrieves a review item.
func (m *MockRepository) GetReview(id string) (*ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

// ListReviews returns review items, oldest first. Empty status means
// all.
func (m *MockRepository) ListReviews(userID, status string) ([]ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ReviewItem
	for _, item := range m.reviews {
		if item.UserID == userID && (status == "" || item.Status == status) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateReviewStatus resolves a review item.
func (m *MockRepository) UpdateReviewStatus(id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.reviews[id]
	if !ok {
		return ErrNotFound
	}
	item.Status = status
	return nil
}

// SaveTransferPair stores a pair decision.
func (m *MockRepository) SaveTransferPair(p *TransferPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.pairs[p.Key] = &cp
	return nil
}

// GetTransferPair retrieves a pair decision.
func (m *MockRepository) GetTransferPair(key string) (*TransferPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pairs[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ListTransferPairs returns a user's pair decisions.
func (m *MockRepository) ListTransferPairs(userID, status string) ([]TransferPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TransferPair
	for _, p := range m.pairs {
		if p.UserID != userID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
