package automatch

import (
	"github.com/finwell/planmatch/internal/domain/plan"
)

// Options holds batch auto-match configuration.
type Options struct {
	// From/To bound the transaction window. Zero values default to the
	// configured lookback ending today in the user's timezone.
	From plan.Date
	To   plan.Date
	// MaxTransactions caps the batch size (0 = no cap).
	MaxTransactions int
	// DryRun scores and reports without writing matches or reviews.
	DryRun bool
}

// ItemError reports one isolated per-transaction failure. The batch
// carries on past these; only infrastructure failures abort it.
type ItemError struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Summary is the batch result, reported verbatim by the HTTP and CLI
// layers.
type Summary struct {
	Processed   int         `json:"processed"`
	Matched     int         `json:"matched"`
	NeedsReview int         `json:"needs_review"`
	Skipped     int         `json:"skipped"`
	Errors      []ItemError `json:"errors"`
}
