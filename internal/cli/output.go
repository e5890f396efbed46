package cli

import (
	"fmt"
	"strings"

	"github.com/finwell/planmatch/internal/application/automatch"
	"github.com/finwell/planmatch/internal/domain/transfer"
)

// PrintHeader prints the command header.
func PrintHeader(userID string, dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Printf("planmatch: auto-match for %s (%s mode)\n\n", userID, mode)
}

// PrintMatchSummary prints the batch result summary.
func PrintMatchSummary(summary *automatch.Summary, dryRun bool) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Processed=%d Matched=%d NeedsReview=%d Skipped=%d Errors=%d\n",
		summary.Processed,
		summary.Matched,
		summary.NeedsReview,
		summary.Skipped,
		len(summary.Errors))

	if len(summary.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range summary.Errors {
			fmt.Printf("  - %s: %s\n", e.TransactionID, e.Message)
		}
	}

	if !dryRun && summary.Matched > 0 {
		fmt.Println("\nMatch run completed successfully.")
	}
}

// PrintTransferCandidates prints detected transfer pairs awaiting a
// confirm/dismiss decision.
func PrintTransferCandidates(candidates []transfer.Candidate) {
	fmt.Println(strings.Repeat("-", 60))
	if len(candidates) == 0 {
		fmt.Println("No transfer candidates found.")
		return
	}
	fmt.Printf("Transfer candidates: %d\n", len(candidates))
	for _, c := range candidates {
		fmt.Printf("  - %s -> %s (%s on %s, confidence %d)\n",
			c.OutTx.ID, c.InTx.ID, c.OutTx.Amount.Abs(), c.OutTx.Date, c.Confidence)
	}
}
