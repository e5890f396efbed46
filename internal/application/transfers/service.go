// Package transfers wraps the transfer detector with the sticky
// pair-decision store: dismissed pairs never come back, confirmed
// pairs are recorded.
package transfers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/transfer"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// DefaultLookbackDays is the scan window when the caller gives none.
const DefaultLookbackDays = 30

// Service runs transfer detection over stored transactions.
type Service struct {
	repo     storage.Repository
	detector *transfer.Detector
	logger   *slog.Logger
}

// New creates a transfer service.
func New(repo storage.Repository, d *transfer.Detector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, detector: d, logger: logger}
}

// ScanOptions bounds a detection run.
type ScanOptions struct {
	From plan.Date
	To   plan.Date
}

// Scan detects transfer candidates among the user's transactions.
// Pairs the user has already decided on (either way) are excluded.
func (s *Service) Scan(userID string, opts ScanOptions) ([]transfer.Candidate, error) {
	user, err := s.repo.GetUser(userID)
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

	txs, err := s.repo.ListTransactions(storage.TransactionFilters{
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	decided, err := s.repo.ListTransferPairs(userID, "")
	if err != nil {
		return nil, fmt.Errorf("list pair decisions: %w", err)
	}
	excluded := make(transfer.PairSet, len(decided))
	for _, p := range decided {
		excluded[p.Key] = true
	}

	candidates := s.detector.Detect(txs, excluded)
	s.logger.Info("transfer scan finished",
		"user", userID, "transactions", len(txs), "candidates", len(candidates))
	return candidates, nil
}

// Confirm records a candidate pair as an actual transfer.
func (s *Service) Confirm(userID string, c transfer.Candidate) error {
	return s.repo.SaveTransferPair(&storage.TransferPair{
		Key:        c.Key(),
		UserID:     userID,
		OutTxID:    c.OutTx.ID,
		InTxID:     c.InTx.ID,
		Confidence: c.Confidence,
		Status:     storage.TransferConfirmed,
		CreatedAt:  time.Now().UTC(),
	})
}

// Dismiss records a pair as not-a-transfer. The dismissal is keyed on
// the canonical pair, so later scans with the same transactions will
// not re-propose it.
func (s *Service) Dismiss(userID string, outTxID, inTxID string, confidence int) error {
	return s.repo.SaveTransferPair(&storage.TransferPair{
		Key:        transfer.PairKey(outTxID, inTxID),
		UserID:     userID,
		OutTxID:    outTxID,
		InTxID:     inTxID,
		Confidence: confidence,
		Status:     storage.TransferDismissed,
		CreatedAt:  time.Now().UTC(),
	})
}
