// Package templates manages recurrence templates: validated creation,
// the three edit scopes, occurrence customization, and
// cascade-confirmed deletion.
package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/planmatch/internal/domain/occurrence"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/schedule"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// EditScope selects how far a template edit reaches.
type EditScope string

const (
	ScopeThisOnly      EditScope = "THIS_ONLY"
	ScopeThisAndFuture EditScope = "THIS_AND_FUTURE"
	ScopeAll           EditScope = "ALL"
)

// Changes carries the fields an edit may touch. Nil means unchanged.
// NewDate moves a single occurrence and is only meaningful with
// ScopeThisOnly; the recurrence itself never moves.
type Changes struct {
	Name       *string
	Amount     *decimal.Decimal
	CategoryID *string
	Policy     *plan.MatchPolicy
	Active     *bool
	NewDate    *plan.Date
}

// Service manages templates over the store.
type Service struct {
	repo   storage.Repository
	logger *slog.Logger
}

// New creates a template service.
func New(repo storage.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new template. Malformed templates
// (interval < 1, day rule incompatible with the period kind) are
// rejected here so the expander never sees them.
func (s *Service) Create(t *plan.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := plan.ValidateTemplate(t); err != nil {
		return err
	}
	return s.repo.CreateTemplate(t)
}

// Edit applies changes with the given scope. THIS_ONLY writes a
// single override at the cut date; THIS_AND_FUTURE forks the template
// at the cut date into two rows (overrides and matches before the cut
// stay with the original); ALL updates in place. The returned
// template is the forked row for THIS_AND_FUTURE, the edited one
// otherwise.
func (s *Service) Edit(templateID string, scope EditScope, cut plan.Date, changes Changes) (*plan.Template, error) {
	t, err := s.repo.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", templateID, err)
	}

	if changes.NewDate != nil && scope != ScopeThisOnly {
		return nil, &plan.ValidationError{Field: "new_date", Msg: "moving a date requires scope THIS_ONLY"}
	}

	switch scope {
	case ScopeThisOnly:
		if err := s.editThisOnly(t, cut, changes); err != nil {
			return nil, err
		}
		return t, nil
	case ScopeThisAndFuture:
		return s.editThisAndFuture(t, cut, changes)
	case ScopeAll:
		applyChanges(t, changes)
		if err := plan.ValidateTemplate(t); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateTemplate(t); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown edit scope %q", scope)
	}
}

func (s *Service) editThisOnly(t *plan.Template, cut plan.Date, changes Changes) error {
	if err := s.requireExpectedDate(t, cut); err != nil {
		return err
	}
	o := &plan.Override{
		ID:            uuid.NewString(),
		TemplateID:    t.ID,
		OriginalDate:  cut,
		NewDate:       changes.NewDate,
		NewAmount:     changes.Amount,
		NewCategoryID: changes.CategoryID,
		NewName:       changes.Name,
		CreatedAt:     time.Now().UTC(),
	}
	// An existing override at this date is replaced wholesale; the
	// upsert keys on (template, date).
	if prior, err := s.repo.GetOverride(t.ID, cut); err == nil {
		o.ID = prior.ID
	}
	return s.repo.UpsertOverride(o)
}

func (s *Service) editThisAndFuture(t *plan.Template, cut plan.Date, changes Changes) (*plan.Template, error) {
	if err := s.requireExpectedDate(t, cut); err != nil {
		return nil, err
	}
	if cut.Equal(t.FirstDate) {
		// Fork at the very first occurrence degenerates to ALL.
		applyChanges(t, changes)
		if err := plan.ValidateTemplate(t); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateTemplate(t); err != nil {
			return nil, err
		}
		return t, nil
	}

	forked := *t
	forked.ID = uuid.NewString()
	forked.FirstDate = cut
	forked.CreatedAt = time.Now().UTC()
	applyChanges(&forked, changes)
	if err := plan.ValidateTemplate(&forked); err != nil {
		return nil, err
	}

	end := cut.AddDays(-1)
	t.EndDate = &end
	if err := s.repo.UpdateTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTemplate(&forked); err != nil {
		return nil, err
	}
	s.logger.Info("template forked", "template", t.ID, "forked", forked.ID, "cut", cut.String())
	return &forked, nil
}

func applyChanges(t *plan.Template, c Changes) {
	if c.Name != nil {
		t.Name = *c.Name
	}
	if c.Amount != nil {
		t.Amount = *c.Amount
	}
	if c.CategoryID != nil {
		t.CategoryID = *c.CategoryID
	}
	if c.Policy != nil {
		t.Policy = *c.Policy
	}
	if c.Active != nil {
		t.Active = *c.Active
	}
}

// requireExpectedDate verifies the cut date is actually produced by
// the template's schedule.
func (s *Service) requireExpectedDate(t *plan.Template, d plan.Date) error {
	dates, err := schedule.Expand(t, d, d)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		return fmt.Errorf("template %s has no occurrence on %s: %w", t.ID, d, storage.ErrNotFound)
	}
	return nil
}

// SkipOccurrence marks one occurrence skipped.
func (s *Service) SkipOccurrence(templateID string, date plan.Date) error {
	t, err := s.repo.GetTemplate(templateID)
	if err != nil {
		return fmt.Errorf("load template %s: %w", templateID, err)
	}
	if err := s.requireExpectedDate(t, date); err != nil {
		return err
	}
	o := &plan.Override{
		ID:           uuid.NewString(),
		TemplateID:   templateID,
		OriginalDate: date,
		Skipped:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if prior, err := s.repo.GetOverride(templateID, date); err == nil {
		o.ID = prior.ID
	}
	return s.repo.UpsertOverride(o)
}

// RevertOccurrence deletes the override at a date, restoring the
// template default.
func (s *Service) RevertOccurrence(templateID string, date plan.Date) error {
	o, err := s.repo.GetOverride(templateID, date)
	if err != nil {
		return fmt.Errorf("no override on %s for template %s: %w", date, templateID, err)
	}
	return s.repo.DeleteOverride(o.ID)
}

// Occurrences returns the effective occurrence view for a range.
func (s *Service) Occurrences(templateID string, from, to plan.Date) ([]plan.Occurrence, error) {
	t, err := s.repo.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", templateID, err)
	}
	overrides, err := s.repo.ListOverrides(templateID)
	if err != nil {
		return nil, err
	}
	return occurrence.Effective(t, from, to, occurrence.IndexOverrides(overrides))
}

// Delete removes a template. When overrides exist on dates that are
// already matched, deletion is refused until the caller confirms the
// cascade.
func (s *Service) Delete(templateID string, cascadeConfirmed bool) error {
	overrides, err := s.repo.ListOverrides(templateID)
	if err != nil {
		return err
	}
	matches, err := s.repo.ListMatchesByTemplate(templateID)
	if err != nil {
		return err
	}

	matchedDates := make(map[string]bool, len(matches))
	for _, r := range matches {
		matchedDates[r.ExpectedDate.String()] = true
	}
	var blocked []string
	for _, o := range overrides {
		if matchedDates[o.OriginalDate.String()] {
			blocked = append(blocked, o.OriginalDate.String())
		}
	}
	if len(blocked) > 0 && !cascadeConfirmed {
		return fmt.Errorf("template %s has matched overrides on %v; cascade confirmation required: %w",
			templateID, blocked, storage.ErrConflict)
	}

	// Cascade: unmatch the template's transactions, drop its
	// overrides, then the template itself.
	for _, r := range matches {
		if err := s.repo.DeleteMatchByTransaction(r.TransactionID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if tx, err := s.repo.GetTransaction(r.TransactionID); err == nil {
			tx.Status = plan.StatusUnmatched
			if err := s.repo.SaveTransaction(tx); err != nil {
				return err
			}
		}
	}
	for _, o := range overrides {
		if err := s.repo.DeleteOverride(o.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	return s.repo.DeleteTemplate(templateID)
}
