package automatch

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwell/planmatch/internal/domain/matcher"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/rules"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

func newTestOrchestrator(repo storage.Repository) *Orchestrator {
	cache := rules.NewCache(repo.ListRules)
	return New(repo, matcher.New(matcher.DefaultConfig()), cache, nil)
}

func seedUser(t *testing.T, repo *storage.MockRepository) {
	t.Helper()
	require.NoError(t, repo.SaveUser(&storage.User{ID: "user-1", Timezone: "UTC"}))
}

func seedTemplate(t *testing.T, repo *storage.MockRepository, id, name, amount, firstDate string) *plan.Template {
	t.Helper()
	tol := decimal.RequireFromString("1.00")
	tpl := &plan.Template{
		ID:        id,
		UserID:    "user-1",
		Name:      name,
		Kind:      plan.PlannedTransaction,
		Period:    plan.Monthly,
		Interval:  1,
		FirstDate: plan.MustDate(firstDate),
		Amount:    decimal.RequireFromString(amount),
		AccountID: "acct-1",
		Active:    true,
		Policy: plan.MatchPolicy{
			AutoMatchEnabled: true,
			AmountTolerance:  &tol,
			MatchWindowDays:  7,
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateTemplate(tpl))
	return tpl
}

func seedTransaction(t *testing.T, repo *storage.MockRepository, id, amount, date, description string) {
	t.Helper()
	require.NoError(t, repo.SaveTransaction(&plan.Transaction{
		ID:          id,
		UserID:      "user-1",
		AccountID:   "acct-1",
		Date:        plan.MustDate(date),
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Status:      plan.StatusUnmatched,
		CreatedAt:   time.Now().UTC(),
	}))
}

func window(from, to string) Options {
	return Options{From: plan.MustDate(from), To: plan.MustDate(to)}
}

func TestRun_AutoMatchesAndMarksTransaction(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Matched)
	assert.Empty(t, summary.Errors)

	record, err := repo.GetMatchByTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, "tpl-rent", record.TemplateID)
	assert.Equal(t, plan.MatchAuto, record.Method)
	assert.Equal(t, "2024-03-01", record.ExpectedDate.String())

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusMatched, tx.Status)
}

func TestRun_BorderlineGoesToReviewQueue(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	tpl := seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	tpl.Policy.AutoMatchEnabled = false
	require.NoError(t, repo.UpdateTemplate(tpl))
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NeedsReview)
	assert.Equal(t, 0, summary.Matched)

	pending, err := repo.ListReviews("user-1", storage.ReviewPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "tx-1", pending[0].TransactionID)
	require.NotEmpty(t, pending[0].Candidates)
	assert.Equal(t, "tpl-rent", pending[0].Candidates[0].TemplateID)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusPendingReview, tx.Status)
}

func TestRun_NoPlausibleCandidateLeavesTransactionAlone(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-12.50", "2024-03-15", "COFFEE SHOP")

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Matched)
	assert.Equal(t, 0, summary.NeedsReview)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusUnmatched, tx.Status)
}

func TestRun_OccurrenceClaimedOncePerBatch(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	// Two transactions competing for March's single rent occurrence.
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	seedTransaction(t, repo, "tx-2", "-1500.00", "2024-03-02", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Matched)

	_, err = repo.GetMatchByTransaction("tx-1")
	assert.NoError(t, err)
	_, err = repo.GetMatchByTransaction("tx-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRun_AlreadyMatchedOccurrenceIsWithheld(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	require.NoError(t, repo.CreateMatchRecord(&plan.MatchRecord{
		ID:            "m-prior",
		UserID:        "user-1",
		TransactionID: "tx-prior",
		TemplateID:    "tpl-rent",
		ExpectedDate:  plan.MustDate("2024-03-01"),
		Confidence:    100,
		Method:        plan.MatchManual,
		CreatedAt:     time.Now().UTC(),
	}))
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Matched)
}

func TestRun_ConflictOnCommitCountsAsSkipped(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	repo.CreateMatchRecordErr = storage.ErrConflict

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Matched)
	assert.Empty(t, summary.Errors)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")

	o := newTestOrchestrator(repo)
	opts := window("2024-03-01", "2024-03-31")
	opts.DryRun = true
	summary, err := o.Run("user-1", opts)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Matched)
	_, err = repo.GetMatchByTransaction("tx-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusUnmatched, tx.Status)
}

func TestRun_CategorizesViaRulesBeforeMatching(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	require.NoError(t, repo.CreateRule(&plan.Rule{
		ID:         "rule-1",
		UserID:     "user-1",
		Priority:   10,
		Field:      plan.FieldDescription,
		Operator:   plan.OpContains,
		Value:      "netflix",
		CategoryID: "cat-streaming",
		Enabled:    true,
		CreatedAt:  time.Now().UTC(),
	}))
	seedTransaction(t, repo, "tx-1", "-15.49", "2024-03-01", "NETFLIX.COM")

	o := newTestOrchestrator(repo)
	_, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)

	tx, err := repo.GetTransaction("tx-1")
	require.NoError(t, err)
	assert.Equal(t, "cat-streaming", tx.CategoryID)
}

func TestRun_PerItemErrorDoesNotAbortBatch(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTemplate(t, repo, "tpl-rent", "Rent", "-1500.00", "2024-01-01")
	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	seedTransaction(t, repo, "tx-2", "-1500.00", "2024-04-01", "RENT PAYMENT")
	repo.SaveTransactionErr = assert.AnError

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-04-30"))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Len(t, summary.Errors, 2)
}

func TestRun_MaxTransactionsCapsBatch(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)
	seedTransaction(t, repo, "tx-1", "-10.00", "2024-03-01", "A")
	seedTransaction(t, repo, "tx-2", "-10.00", "2024-03-02", "B")
	seedTransaction(t, repo, "tx-3", "-10.00", "2024-03-03", "C")

	o := newTestOrchestrator(repo)
	opts := window("2024-03-01", "2024-03-31")
	opts.MaxTransactions = 2
	summary, err := o.Run("user-1", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
}

func TestRun_UnknownUser(t *testing.T) {
	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)
	_, err := o.Run("nobody", Options{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRun_InactiveAndBudgetTemplatesAreNotCandidates(t *testing.T) {
	repo := storage.NewMockRepository()
	seedUser(t, repo)

	inactive := seedTemplate(t, repo, "tpl-inactive", "Rent", "-1500.00", "2024-01-01")
	inactive.Active = false
	require.NoError(t, repo.UpdateTemplate(inactive))

	budget := seedTemplate(t, repo, "tpl-budget", "Groceries", "-600.00", "2024-01-01")
	budget.Kind = plan.BudgetTemplate
	require.NoError(t, repo.UpdateTemplate(budget))

	seedTransaction(t, repo, "tx-1", "-1500.00", "2024-03-01", "RENT PAYMENT")
	seedTransaction(t, repo, "tx-2", "-600.00", "2024-03-01", "GROCERIES")

	o := newTestOrchestrator(repo)
	summary, err := o.Run("user-1", window("2024-03-01", "2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Matched)
	assert.Equal(t, 0, summary.NeedsReview)
}
