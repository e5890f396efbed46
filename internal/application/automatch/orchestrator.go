// Package automatch runs the batch reconciliation job: unmatched
// transactions are categorized against the user's rules and scored
// against the effective occurrences of their planned-transaction
// templates. Auto matches are committed, borderline ones queued for
// review, failures isolated per item.
package automatch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finwell/planmatch/internal/domain/matcher"
	"github.com/finwell/planmatch/internal/domain/occurrence"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/rules"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// DefaultLookbackDays is the transaction window when the caller does
// not give one.
const DefaultLookbackDays = 90

// Orchestrator runs batch auto-match for one user at a time.
type Orchestrator struct {
	repo      storage.Repository
	matcher   *matcher.Matcher
	ruleCache *rules.Cache
	logger    *slog.Logger
}

// New creates a batch orchestrator.
func New(repo storage.Repository, m *matcher.Matcher, cache *rules.Cache, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		repo:      repo,
		matcher:   m,
		ruleCache: cache,
		logger:    logger,
	}
}

// Run processes the user's unmatched transactions and returns the
// batch summary. Per-transaction failures land in Summary.Errors;
// only store-level failures (listing transactions or templates)
// return a non-nil error.
func (o *Orchestrator) Run(userID string, opts Options) (*Summary, error) {
	user, err := o.repo.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	from, to := opts.From, opts.To
	if to.IsZero() {
		to = plan.DateOf(time.Now(), user.Location())
	}
	if from.IsZero() {
		from = to.AddDays(-DefaultLookbackDays)
	}

	txs, err := o.repo.ListTransactions(storage.TransactionFilters{
		UserID: userID,
		Status: plan.StatusUnmatched,
		From:   from,
		To:     to,
		Limit:  opts.MaxTransactions,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	sources, err := o.candidateSources(userID, from, to)
	if err != nil {
		return nil, err
	}

	userRules, err := o.ruleCache.Rules(userID)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	dismissed, err := o.dismissedPairings(userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	// Occurrences claimed earlier in this batch are withheld from
	// later transactions.
	claimed := make(map[string]bool)

	for i := range txs {
		tx := &txs[i]
		summary.Processed++
		if err := o.processOne(tx, sources, userRules, claimed, dismissed, opts.DryRun, summary); err != nil {
			summary.Errors = append(summary.Errors, ItemError{
				TransactionID: tx.ID,
				Message:       err.Error(),
			})
		}
	}

	o.logger.Info("auto-match batch finished",
		"user", userID,
		"processed", summary.Processed,
		"matched", summary.Matched,
		"needs_review", summary.NeedsReview,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors))
	return summary, nil
}

// candidateSources materializes the effective occurrences of every
// active planned-transaction template, minus those already matched.
func (o *Orchestrator) candidateSources(userID string, from, to plan.Date) ([]matcher.Source, error) {
	templates, err := o.repo.ListTemplates(userID, true)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	var sources []matcher.Source
	for i := range templates {
		t := &templates[i]
		if t.Kind != plan.PlannedTransaction {
			continue
		}

		window := t.Policy.MatchWindowDays
		if window <= 0 {
			window = matcher.DefaultConfig().DefaultWindowDays
		}

		overrides, err := o.repo.ListOverrides(t.ID)
		if err != nil {
			return nil, fmt.Errorf("list overrides for template %s: %w", t.ID, err)
		}
		occs, err := occurrence.Effective(t, from.AddDays(-window), to.AddDays(window),
			occurrence.IndexOverrides(overrides))
		if err != nil {
			return nil, fmt.Errorf("materialize template %s: %w", t.ID, err)
		}

		matched, err := o.repo.ListMatchesByTemplate(t.ID)
		if err != nil {
			return nil, fmt.Errorf("list matches for template %s: %w", t.ID, err)
		}
		taken := make(map[string]bool, len(matched))
		for _, r := range matched {
			taken[occKey(r.TemplateID, r.ExpectedDate)] = true
		}

		for _, occ := range occs {
			if taken[occKey(occ.TemplateID, occ.ExpectedDate)] {
				continue
			}
			sources = append(sources, matcher.Source{Occurrence: occ, Template: t})
		}
	}
	return sources, nil
}

// dismissedPairings collects the (transaction, occurrence) pairings a
// user has rejected in the review queue. A dismissal is terminal for
// those pairings, so later batches withhold them while leaving the
// transaction open to other candidates.
func (o *Orchestrator) dismissedPairings(userID string) (map[string]bool, error) {
	items, err := o.repo.ListReviews(userID, storage.ReviewDismissed)
	if err != nil {
		return nil, fmt.Errorf("list dismissed reviews: %w", err)
	}
	out := make(map[string]bool)
	for _, item := range items {
		for _, c := range item.Candidates {
			out[pairingKey(item.TransactionID, c.TemplateID, c.ExpectedDate)] = true
		}
	}
	return out, nil
}

func (o *Orchestrator) processOne(
	tx *plan.Transaction,
	sources []matcher.Source,
	userRules []plan.Rule,
	claimed map[string]bool,
	dismissed map[string]bool,
	dryRun bool,
	summary *Summary,
) error {
	// Categorization first: a rule hit narrows the candidate gate and
	// is useful on its own even when nothing matches.
	if tx.CategoryID == "" {
		if categoryID, ok := rules.Evaluate(tx, userRules); ok {
			tx.CategoryID = categoryID
			if !dryRun {
				if err := o.repo.SaveTransaction(tx); err != nil {
					return fmt.Errorf("save categorization: %w", err)
				}
			}
		}
	}

	available := make([]matcher.Source, 0, len(sources))
	for _, src := range sources {
		if claimed[occKey(src.Occurrence.TemplateID, src.Occurrence.ExpectedDate)] {
			continue
		}
		if dismissed[pairingKey(tx.ID, src.Occurrence.TemplateID, src.Occurrence.ExpectedDate)] {
			continue
		}
		available = append(available, src)
	}

	result := o.matcher.Match(tx, available)

	switch result.Status {
	case matcher.StatusAuto:
		if dryRun {
			summary.Matched++
			return nil
		}
		record := &plan.MatchRecord{
			ID:            uuid.NewString(),
			UserID:        tx.UserID,
			TransactionID: tx.ID,
			TemplateID:    result.Best.TemplateID,
			ExpectedDate:  result.Best.Occurrence.ExpectedDate,
			Confidence:    result.Confidence,
			Method:        plan.MatchAuto,
			CreatedAt:     time.Now().UTC(),
		}
		if err := o.repo.CreateMatchRecord(record); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				// Another batch got here first. Not an error.
				summary.Skipped++
				return nil
			}
			return fmt.Errorf("create match record: %w", err)
		}
		claimed[occKey(record.TemplateID, record.ExpectedDate)] = true
		tx.Status = plan.StatusMatched
		if err := o.repo.SaveTransaction(tx); err != nil {
			return fmt.Errorf("mark transaction matched: %w", err)
		}
		summary.Matched++

	case matcher.StatusNeedsReview:
		if dryRun {
			summary.NeedsReview++
			return nil
		}
		candidates := make([]storage.ReviewCandidate, 0, len(result.Candidates))
		for _, c := range result.Candidates {
			candidates = append(candidates, storage.ReviewCandidate{
				TemplateID:   c.TemplateID,
				ExpectedDate: c.Occurrence.ExpectedDate,
				Confidence:   c.Confidence,
			})
		}
		item := &storage.ReviewItem{
			ID:            uuid.NewString(),
			UserID:        tx.UserID,
			TransactionID: tx.ID,
			Candidates:    candidates,
			Status:        storage.ReviewPending,
			CreatedAt:     time.Now().UTC(),
		}
		if err := o.repo.AddReview(item); err != nil {
			return fmt.Errorf("queue review: %w", err)
		}
		tx.Status = plan.StatusPendingReview
		if err := o.repo.SaveTransaction(tx); err != nil {
			return fmt.Errorf("mark transaction pending review: %w", err)
		}
		summary.NeedsReview++

	case matcher.StatusNoMatch:
		// Nothing to record; the transaction stays unmatched.
	}
	return nil
}

func occKey(templateID string, d plan.Date) string {
	return templateID + "|" + d.String()
}

func pairingKey(transactionID, templateID string, d plan.Date) string {
	return transactionID + "|" + occKey(templateID, d)
}
