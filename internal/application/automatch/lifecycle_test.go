package automatch

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

func seedPendingReview(t *testing.T, repo *storage.MockRepository, id, txID string) {
	t.Helper()
	require.NoError(t, repo.AddReview(&storage.ReviewItem{
		ID:            id,
		UserID:        "user-1",
		TransactionID: txID,
		Candidates: []storage.ReviewCandidate{
			{TemplateID: "tpl-rent", ExpectedDate: plan.MustDate("2024-03-01"), Confidence: 72},
			{TemplateID: "tpl-gym", ExpectedDate: plan.MustDate("2024-03-03"), Confidence: 61},
		},
		Status:    storage.ReviewPending,
		CreatedAt: time.Now().UTC(),
	}))
}

func TestConfirmReview(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	require.NoError(t, repo.SaveTransaction(&plan.Transaction{
		ID: "tx-1", UserID: "user-1", AccountID: "acct-1",
		Date: plan.MustDate("2024-03-01"), Status: plan.StatusPendingReview,
	}))
	seedPendingReview(t, repo, "rv-1", "tx-1")

	o := newTestOrchestrator(repo)
	require.NoError(t, o.ConfirmReview("rv-1", "tpl-rent", plan.MustDate("2024-03-01")))

	record, err := repo.GetMatchByTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.MatchAutoReviewed, record.Method)
	assert.Equal(t, "tpl-rent", record.TemplateID)
	assert.Equal(t, 72, record.Confidence)

	item, err := repo.GetReview("rv-1")
	require.NoError(t, err)
	assert.Equal(t, storage.ReviewConfirmed, item.Status)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusMatched, tx.Status)

	// The confirmed occurrence is pinned by a materialized override.
	ov, err := repo.GetOverride("tpl-rent", plan.MustDate("2024-03-01"))
	require.NoError(t, err)
	assert.True(t, ov.Materialized)
}

func TestConfirmReview_UnknownCandidate(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	seedPendingReview(t, repo, "rv-1", "tx-1")

	o := newTestOrchestrator(repo)
	err := o.ConfirmReview("rv-1", "tpl-rent", plan.MustDate("2024-04-01"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetMatchByTransaction("tx-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConfirmReview_AlreadyResolved(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	seedPendingReview(t, repo, "rv-1", "tx-1")
	require.NoError(t, repo.UpdateReviewStatus("rv-1", storage.ReviewDismissed))

	o := newTestOrchestrator(repo)
	err := o.ConfirmReview("rv-1", "tpl-rent", plan.MustDate("2024-03-01"))
	assert.Error(t, err)
}

func TestConfirmReview_MissingReview(t *testing.T) {
	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)
	err := o.ConfirmReview("rv-nope", "tpl-rent", plan.MustDate("2024-03-01"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDismissReview(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	require.NoError(t, repo.SaveTransaction(&plan.Transaction{
		ID: "tx-1", UserID: "user-1", AccountID: "acct-1",
		Date: plan.MustDate("2024-03-01"), Status: plan.StatusPendingReview,
	}))
	seedPendingReview(t, repo, "rv-1", "tx-1")

	o := newTestOrchestrator(repo)
	require.NoError(t, o.DismissReview("rv-1"))

	item, err := repo.GetReview("rv-1")
	require.NoError(t, err)
	assert.Equal(t, storage.ReviewDismissed, item.Status)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusUnmatched, tx.Status)

	// Resolving twice is rejected.
	assert.Error(t, o.DismissReview("rv-1"))
}

func TestDismissReview_PairingNotReproposed(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	tpl := seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	tpl.Policy.AutoMatchEnabled = false
	require.NoError(t, repo.UpdateTemplate(tpl))
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	opts := window("2024-03-01", "2024-03-31")

	summary, err := o.Run("user-1", opts)
	require.NoError(t, err)
	require.Equal(t, 1, summary.NeedsReview)

	pending, err := repo.ListReviews("user-1", storage.ReviewPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, o.DismissReview(pending[0].ID))

	// The rejected pairing stays rejected on the next batch.
	summary, err = o.Run("user-1", opts)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NeedsReview)
	assert.Equal(t, 0, summary.Matched)

	pending, err = repo.ListReviews("user-1", storage.ReviewPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusUnmatched, tx.Status)
}

func TestDismissReview_TransactionStaysEligibleForOtherCandidates(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	tpl := seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	tpl.Policy.AutoMatchEnabled = false
	require.NoError(t, repo.UpdateTemplate(tpl))
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	opts := window("2024-03-01", "2024-03-31")

	_, err := o.Run("user-1", opts)
	require.NoError(t, err)
	pending, err := repo.ListReviews("user-1", storage.ReviewPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, o.DismissReview(pending[0].ID))

	// A template created after the dismissal is a fresh pairing.
	seedTemplate(t, repo, "tpl-lease", "Rent Payment", "-1500.00", "2024-01-01")

	summary, err := o.Run("user-1", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)

	record, err := repo.GetMatchByTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, "tpl-lease", record.TemplateID)
}

func TestManualLink(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1480.00", "2024-03-04", "RENT")

	o := newTestOrchestrator(repo)
	require.NoError(t, o.ManualLink("tx-1", "tpl-rent", plan.MustDate("2024-03-01")))

	record, err := repo.GetMatchByTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.MatchManual, record.Method)
	assert.Equal(t, 100, record.Confidence)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusMatched, tx.Status)
}

func TestManualLink_ReplacesExistingMatch(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTemplate(t, repo, "tpl-gym", "Gym", "-45.00", "2024-01-03")
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	require.NoError(t, repo.CreateMatchRecord(&plan.MatchRecord{
		ID: "m-old", UserID: "user-1", TransactionID: "tx-1",
		TemplateID: "tpl-rent", ExpectedDate: plan.MustDate("2024-03-01"),
		Confidence: 97, Method: plan.MatchAuto, CreatedAt: time.Now().UTC(),
	}))

	o := newTestOrchestrator(repo)
	require.NoError(t, o.ManualLink("tx-1", "tpl-gym", plan.MustDate("2024-03-03")))

	record, err := repo.GetMatchByTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, "tpl-gym", record.TemplateID)
	assert.Equal(t, plan.MatchManual, record.Method)
}

func TestManualLink_UnknownTemplate(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	err := o.ManualLink("tx-1", "tpl-nope", plan.MustDate("2024-03-01"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUnmatch(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	require.NoError(t, repo.SaveTransaction(&plan.Transaction{
		ID: "tx-1", UserID: "user-1", AccountID: "acct-1",
		Date: plan.MustDate("2024-03-01"), Status: plan.StatusMatched,
	}))
	require.NoError(t, repo.CreateMatchRecord(&plan.MatchRecord{
		ID: "m-1", UserID: "user-1", TransactionID: "tx-1",
		TemplateID: "tpl-rent", ExpectedDate: plan.MustDate("2024-03-01"),
		Confidence: 100, Method: plan.MatchManual, CreatedAt: time.Now().UTC(),
	}))

	o := newTestOrchestrator(repo)
	require.NoError(t, o.Unmatch("tx-1"))

	_, err := repo.GetMatchByTransaction("tx-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusUnmatched, tx.Status)
}

func TestUnmatch_ReleasesMaterializedPin(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT")

	o := newTestOrchestrator(repo)
	require.NoError(t, o.ManualLink("tx-1", "tpl-rent", plan.MustDate("2024-03-01")))

	ov, err := repo.GetOverride("tpl-rent", plan.MustDate("2024-03-01"))
	require.NoError(t, err)
	require.True(t, ov.Materialized)

	require.NoError(t, o.Unmatch("tx-1"))

	// The bare pin is removed with the match.
	_, err = repo.GetOverride("tpl-rent", plan.MustDate("2024-03-01"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUnmatch_KeepsCustomizedOverride(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1480.00", "2024-03-01", "RENT")
	amount := decimal.RequireFromString("-1480.00")
	require.NoError(t, repo.UpsertOverride(&plan.Override{
		ID: "ov-1", TemplateID: "tpl-rent",
		OriginalDate: plan.MustDate("2024-03-01"),
		NewAmount:    &amount,
		CreatedAt:    time.Now().UTC(),
	}))

	o := newTestOrchestrator(repo)
	require.NoError(t, o.ManualLink("tx-1", "tpl-rent", plan.MustDate("2024-03-01")))
	require.NoError(t, o.Unmatch("tx-1"))

	// The user's amount customization survives; only the pin clears.
	ov, err := repo.GetOverride("tpl-rent", plan.MustDate("2024-03-01"))
	require.NoError(t, err)
	assert.False(t, ov.Materialized)
	require.NotNil(t, ov.NewAmount)
	assert.True(t, ov.NewAmount.Equal(amount))
}

func TestUnmatch_NoActiveMatch(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTransaction(t, repo, "tx-1", "-10.00", "2024-03-01", "COFFEE")

	o := newTestOrchestrator(repo)
	err := o.Unmatch("tx-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
