package automatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// Match lifecycle per transaction:
//
//	Unmatched -> (auto) -> Matched(AUTO)
//	Unmatched -> (review) -> PendingReview -> Matched(AUTO_REVIEWED) | back to Unmatched (dismissed)
//	Unmatched/Matched -> (manual link) -> Matched(MANUAL)
//	Matched -> (unmatch) -> Unmatched
//
// A dismissal is terminal for that candidate pairing only; the
// transaction stays eligible for future batches against other
// candidates.

// ConfirmReview accepts one candidate of a pending review item and
// commits the match as AUTO_REVIEWED.
func (o *Orchestrator) ConfirmReview(reviewID, templateID string, expectedDate plan.Date) error {
	item, err := o.repo.GetReview(reviewID)
	if err != nil {
		return fmt.Errorf("load review %s: %w", reviewID, err)
	}
	if item.Status != storage.ReviewPending {
		return fmt.Errorf("review %s is already %s", reviewID, item.Status)
	}

	var confidence int
	found := false
	for _, c := range item.Candidates {
		if c.TemplateID == templateID && c.ExpectedDate.Equal(expectedDate) {
			confidence = c.Confidence
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("review %s has no candidate (%s, %s): %w",
			reviewID, templateID, expectedDate, storage.ErrNotFound)
	}

	record := &plan.MatchRecord{
		ID:            uuid.NewString(),
		UserID:        item.UserID,
		TransactionID: item.TransactionID,
		TemplateID:    templateID,
		ExpectedDate:  expectedDate,
		Confidence:    confidence,
		Method:        plan.MatchAutoReviewed,
		CreatedAt:     time.Now().UTC(),
	}
	if err := o.repo.CreateMatchRecord(record); err != nil && !errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("create match record: %w", err)
	}
	if err := o.markMaterialized(templateID, expectedDate); err != nil {
		return err
	}
	if err := o.repo.UpdateReviewStatus(reviewID, storage.ReviewConfirmed); err != nil {
		return err
	}
	return o.setTransactionStatus(item.TransactionID, plan.StatusMatched)
}

// DismissReview rejects all candidates of a pending review item. The
// transaction returns to the unmatched pool.
func (o *Orchestrator) DismissReview(reviewID string) error {
	item, err := o.repo.GetReview(reviewID)
	if err != nil {
		return fmt.Errorf("load review %s: %w", reviewID, err)
	}
	if item.Status != storage.ReviewPending {
		return fmt.Errorf("review %s is already %s", reviewID, item.Status)
	}
	if err := o.repo.UpdateReviewStatus(reviewID, storage.ReviewDismissed); err != nil {
		return err
	}
	return o.setTransactionStatus(item.TransactionID, plan.StatusUnmatched)
}

// ManualLink links a transaction to an occurrence by hand, replacing
// any existing match.
func (o *Orchestrator) ManualLink(transactionID, templateID string, expectedDate plan.Date) error {
	tx, err := o.repo.GetTransaction(transactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", transactionID, err)
	}
	if _, err := o.repo.GetTemplate(templateID); err != nil {
		return fmt.Errorf("load template %s: %w", templateID, err)
	}

	// Replace any prior match; manual wins.
	if prior, err := o.repo.GetMatchByTransaction(transactionID); err == nil {
		if err := o.clearMaterialized(prior.TemplateID, prior.ExpectedDate); err != nil {
			return err
		}
	}
	if err := o.repo.DeleteMatchByTransaction(transactionID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	record := &plan.MatchRecord{
		ID:            uuid.NewString(),
		UserID:        tx.UserID,
		TransactionID: transactionID,
		TemplateID:    templateID,
		ExpectedDate:  expectedDate,
		Confidence:    100,
		Method:        plan.MatchManual,
		CreatedAt:     time.Now().UTC(),
	}
	if err := o.repo.CreateMatchRecord(record); err != nil {
		return fmt.Errorf("create match record: %w", err)
	}
	if err := o.markMaterialized(templateID, expectedDate); err != nil {
		return err
	}
	tx.Status = plan.StatusMatched
	return o.repo.SaveTransaction(tx)
}

// Unmatch removes a transaction's active match record and releases
// the materialized pin on its occurrence. The transaction itself is
// never deleted.
func (o *Orchestrator) Unmatch(transactionID string) error {
	record, err := o.repo.GetMatchByTransaction(transactionID)
	if err != nil {
		return fmt.Errorf("load match for %s: %w", transactionID, err)
	}
	if err := o.repo.DeleteMatchByTransaction(transactionID); err != nil {
		return fmt.Errorf("delete match for %s: %w", transactionID, err)
	}
	if err := o.clearMaterialized(record.TemplateID, record.ExpectedDate); err != nil {
		return err
	}
	return o.setTransactionStatus(transactionID, plan.StatusUnmatched)
}

// markMaterialized pins the occurrence behind a reviewed or manual
// match with an override, so template deletion has to acknowledge it.
// An existing override keeps its customizations.
func (o *Orchestrator) markMaterialized(templateID string, date plan.Date) error {
	ov, err := o.repo.GetOverride(templateID, date)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		ov = &plan.Override{
			ID:           uuid.NewString(),
			TemplateID:   templateID,
			OriginalDate: date,
			CreatedAt:    time.Now().UTC(),
		}
	}
	if ov.Materialized {
		return nil
	}
	ov.Materialized = true
	return o.repo.UpsertOverride(ov)
}

// clearMaterialized releases the pin. An override carrying nothing
// else is removed outright; user customizations survive.
func (o *Orchestrator) clearMaterialized(templateID string, date plan.Date) error {
	ov, err := o.repo.GetOverride(templateID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if !ov.Materialized {
		return nil
	}
	if ov.NewDate == nil && ov.NewAmount == nil && ov.NewCategoryID == nil &&
		ov.NewName == nil && !ov.Skipped {
		return o.repo.DeleteOverride(ov.ID)
	}
	ov.Materialized = false
	return o.repo.UpsertOverride(ov)
}

func (o *Orchestrator) setTransactionStatus(transactionID string, status plan.TransactionStatus) error {
	tx, err := o.repo.GetTransaction(transactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", transactionID, err)
	}
	tx.Status = status
	return o.repo.SaveTransaction(tx)
}
