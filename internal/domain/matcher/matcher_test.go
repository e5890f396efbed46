package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwell/planmatch/internal/domain/plan"
)

func tolerance(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func makeSource(templateID, name, amount, date string, created time.Time) Source {
	amt := decimal.RequireFromString(amount)
	d := plan.MustDate(date)
	return Source{
		Occurrence: plan.Occurrence{
			TemplateID:    templateID,
			ExpectedDate:  d,
			EffectiveDate: d,
			Name:          name,
			Amount:        amt,
			AccountID:     "acct-1",
		},
		Template: &plan.Template{
			ID:        templateID,
			Name:      name,
			Amount:    amt,
			AccountID: "acct-1",
			Policy: plan.MatchPolicy{
				AutoMatchEnabled: true,
				AmountTolerance:  tolerance("1.00"),
				MatchWindowDays:  7,
			},
			CreatedAt: created,
		},
	}
}

func makeTx(id, amount, date, description string) *plan.Transaction {
	return &plan.Transaction{
		ID:          id,
		UserID:      "user-1",
		AccountID:   "acct-1",
		Date:        plan.MustDate(date),
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Status:      plan.StatusUnmatched,
	}
}

func TestMatch_ExactMatchAutoConfirms(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Netflix", "-15.49", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-15.49", "2024-03-01", "NETFLIX")

	result := m.Match(tx, []Source{src})

	assert.Equal(t, StatusAuto, result.Status)
	assert.Equal(t, 100, result.Confidence)
	require.NotNil(t, result.Best)
	assert.Equal(t, "tpl-1", result.Best.TemplateID)
}

func TestMatch_OneDayOffStillAuto(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-1500.00", "2024-03-02", "RENT")

	result := m.Match(tx, []Source{src})

	assert.Equal(t, StatusAuto, result.Status)
	// amount 100 * 0.5, date decays to 88.57 * 0.3, text 100 * 0.2
	assert.Equal(t, 97, result.Confidence)
	assert.Equal(t, 1, result.Best.DateDiff)
}

func TestMatch_OutsideWindowIsNoMatch(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-1500.00", "2024-03-10", "RENT") // 9 days out, window 7

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusNoMatch, result.Status)
}

func TestMatch_BeyondToleranceIsDisqualified(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-1502.00", "2024-03-01", "RENT") // tolerance is 1.00

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusNoMatch, result.Status)
}

func TestMatch_NilToleranceDropsAmountSignal(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Gym", "-40.00", "2024-03-01", time.Now())
	src.Template.Policy.AmountTolerance = nil
	// Amount wildly different, but date and text are perfect.
	tx := makeTx("tx-1", "-55.00", "2024-03-01", "GYM")

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusAuto, result.Status)
	assert.Equal(t, 100, result.Confidence)
}

func TestMatch_EmptyTextDropsTextSignal(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-1500.00", "2024-03-02", "")

	result := m.Match(tx, []Source{src})
	// Renormalized over amount+date: (0.5*100 + 0.3*88.57) / 0.8 = 96.
	assert.Equal(t, StatusAuto, result.Status)
	assert.Equal(t, 96, result.Confidence)
}

func TestMatch_WrongAccountIsDisqualified(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-1500.00", "2024-03-01", "RENT")
	tx.AccountID = "acct-2"

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusNoMatch, result.Status)
}

func TestMatch_IncompatibleCategoryIsDisqualified(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	src.Occurrence.CategoryID = "cat-housing"
	tx := makeTx("tx-1", "-1500.00", "2024-03-01", "RENT")
	tx.CategoryID = "cat-dining"

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusNoMatch, result.Status)
}

func TestMatch_AutoMatchDisabledGoesToReview(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	src.Template.Policy.AutoMatchEnabled = false
	tx := makeTx("tx-1", "-1500.00", "2024-03-01", "RENT")

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusNeedsReview, result.Status)
	assert.NotEmpty(t, result.Candidates)
}

func TestMatch_SkipReviewGoesToReview(t *testing.T) {
	m := New(DefaultConfig())
	src := makeSource("tpl-1", "Rent", "-1500.00", "2024-03-01", time.Now())
	src.Template.Policy.SkipReview = true
	tx := makeTx("tx-1", "-1500.00", "2024-03-01", "RENT")

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusNeedsReview, result.Status)
}

func TestMatch_TieBreakNearerDateWins(t *testing.T) {
	m := New(DefaultConfig())
	created := time.Now()
	near := makeSource("tpl-near", "Utility", "-80.00", "2024-03-02", created)
	far := makeSource("tpl-far", "Utility", "-80.00", "2024-03-05", created)
	tx := makeTx("tx-1", "-80.00", "2024-03-02", "UTILITY")

	result := m.Match(tx, []Source{far, near})
	require.NotNil(t, result.Best)
	assert.Equal(t, "tpl-near", result.Best.TemplateID)
}

func TestMatch_TieBreakEarlierTemplateWins(t *testing.T) {
	m := New(DefaultConfig())
	older := makeSource("tpl-old", "Utility", "-80.00", "2024-03-02", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := makeSource("tpl-new", "Utility", "-80.00", "2024-03-02", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tx := makeTx("tx-1", "-80.00", "2024-03-02", "UTILITY")

	result := m.Match(tx, []Source{newer, older})
	require.NotNil(t, result.Best)
	assert.Equal(t, "tpl-old", result.Best.TemplateID)
}

func TestMatch_ReviewCandidatesAreCapped(t *testing.T) {
	m := New(DefaultConfig())
	tx := makeTx("tx-1", "-80.00", "2024-03-02", "UTILITY")

	sources := make([]Source, 0, 5)
	for i := 0; i < 5; i++ {
		src := makeSource("tpl-"+string(rune('a'+i)), "Utility", "-80.00", "2024-03-02", time.Now())
		src.Template.Policy.AutoMatchEnabled = false
		sources = append(sources, src)
	}

	result := m.Match(tx, sources)
	assert.Equal(t, StatusNeedsReview, result.Status)
	assert.Len(t, result.Candidates, 3)
}

func TestMatch_ConfidenceNeverExceeds100(t *testing.T) {
	m := New(DefaultConfig())
	// Repeated tokens in the occurrence name with a perfect amount
	// and date must still cap at 100.
	src := makeSource("tpl-1", "la la land", "-12.00", "2024-03-01", time.Now())
	tx := makeTx("tx-1", "-12.00", "2024-03-01", "la land")

	result := m.Match(tx, []Source{src})
	assert.Equal(t, StatusAuto, result.Status)
	assert.Equal(t, 100, result.Confidence)
	assert.LessOrEqual(t, result.Best.Confidence, 100)
}

func TestMatch_NoSources(t *testing.T) {
	m := New(DefaultConfig())
	result := m.Match(makeTx("tx-1", "-80.00", "2024-03-02", "UTILITY"), nil)
	assert.Equal(t, StatusNoMatch, result.Status)
	assert.Nil(t, result.Best)
}
