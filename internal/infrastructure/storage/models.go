package storage

import (
	"time"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// User is the minimal profile the engine needs: identity plus the
// timezone all of the user's date arithmetic happens in.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"` // IANA name, e.g. "America/Denver"
}

// Location resolves the user's timezone, falling back to UTC when the
// name is empty or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Review statuses.
const (
	ReviewPending   = "pending"
	ReviewConfirmed = "confirmed"
	ReviewDismissed = "dismissed"
)

// ReviewCandidate is one ranked candidate stored with a review item.
type ReviewCandidate struct {
	TemplateID   string    `json:"template_id"`
	ExpectedDate plan.Date `json:"expected_date"`
	Confidence   int       `json:"confidence"`
}

// ReviewItem is a transaction parked in the review queue with its
// ranked candidates. Dismissing it is terminal for these candidate
// pairings; the transaction itself stays eligible for future runs.
type ReviewItem struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	TransactionID string            `json:"transaction_id"`
	Candidates    []ReviewCandidate `json:"candidates"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	ResolvedAt    *time.Time        `json:"resolved_at,omitempty"`
}

// Transfer pair statuses.
const (
	TransferConfirmed = "confirmed"
	TransferDismissed = "dismissed"
)

// TransferPair records a user's decision about a proposed transfer
// pair. The key is canonical over the two transaction ids, so a
// dismissal survives any future detection run that would rediscover
// the pair.
type TransferPair struct {
	Key        string    `json:"key"`
	UserID     string    `json:"user_id"`
	OutTxID    string    `json:"out_tx_id"`
	InTxID     string    `json:"in_tx_id"`
	Confidence int       `json:"confidence"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransactionFilters narrows ListTransactions.
type TransactionFilters struct {
	UserID    string
	AccountID string
	Status    plan.TransactionStatus
	From      plan.Date
	To        plan.Date
	Limit     int
}
