package transfer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwell/planmatch/internal/domain/plan"
)

func makeTx(id, account, amount, date string) plan.Transaction {
	return plan.Transaction{
		ID:        id,
		UserID:    "user-1",
		AccountID: account,
		Amount:    decimal.RequireFromString(amount),
		Date:      plan.MustDate(date),
	}
}

func TestDetect_ExactPair(t *testing.T) {
	d := New(DefaultConfig())
	txs := []plan.Transaction{
		makeTx("out", "checking", "-500.00", "2024-03-01"),
		makeTx("in", "savings", "500.00", "2024-03-01"),
	}

	got := d.Detect(txs, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "out", got[0].OutTx.ID)
	assert.Equal(t, "in", got[0].InTx.ID)
	assert.Equal(t, 100, got[0].Confidence)
}

func TestDetect_LegOrderDoesNotMatter(t *testing.T) {
	d := New(DefaultConfig())
	txs := []plan.Transaction{
		makeTx("in", "savings", "500.00", "2024-03-01"),
		makeTx("out", "checking", "-500.00", "2024-03-02"),
	}

	got := d.Detect(txs, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "out", got[0].OutTx.ID)
	assert.Equal(t, "in", got[0].InTx.ID)
}

func TestDetect_RejectsSameAccount(t *testing.T) {
	d := New(DefaultConfig())
	txs := []plan.Transaction{
		makeTx("a", "checking", "-500.00", "2024-03-01"),
		makeTx("b", "checking", "500.00", "2024-03-01"),
	}
	assert.Empty(t, d.Detect(txs, nil))
}

func TestDetect_RejectsSameSign(t *testing.T) {
	d := New(DefaultConfig())
	txs := []plan.Transaction{
		makeTx("a", "checking", "-500.00", "2024-03-01"),
		makeTx("b", "savings", "-500.00", "2024-03-01"),
	}
	assert.Empty(t, d.Detect(txs, nil))
}

func TestDetect_RejectsDifferentUsers(t *testing.T) {
	d := New(DefaultConfig())
	a := makeTx("a", "checking", "-500.00", "2024-03-01")
	b := makeTx("b", "savings", "500.00", "2024-03-01")
	b.UserID = "user-2"
	assert.Empty(t, d.Detect([]plan.Transaction{a, b}, nil))
}

func TestDetect_AmountToleranceBoundary(t *testing.T) {
	cfg := DefaultConfig() // tolerance 0.01
	cfg.MinConfidence = 0
	d := New(cfg)

	within := []plan.Transaction{
		makeTx("a", "checking", "-500.00", "2024-03-01"),
		makeTx("b", "savings", "500.01", "2024-03-01"),
	}
	got := d.Detect(within, nil)
	require.Len(t, got, 1)
	// At the tolerance edge the amount signal bottoms out.
	assert.Equal(t, 40, got[0].Confidence)

	beyond := []plan.Transaction{
		makeTx("a", "checking", "-500.00", "2024-03-01"),
		makeTx("b", "savings", "500.02", "2024-03-01"),
	}
	assert.Empty(t, d.Detect(beyond, nil))
}

func TestDetect_DateWindowBoundary(t *testing.T) {
	d := New(DefaultConfig()) // max 3 days apart
	atEdge := []plan.Transaction{
		makeTx("a", "checking", "-500.00", "2024-03-01"),
		makeTx("b", "savings", "500.00", "2024-03-04"),
	}
	assert.Len(t, d.Detect(atEdge, nil), 1)

	beyond := []plan.Transaction{
		makeTx("a", "checking", "-500.00", "2024-03-01"),
		makeTx("b", "savings", "500.00", "2024-03-05"),
	}
	assert.Empty(t, d.Detect(beyond, nil))
}

func TestDetect_ExcludedPairsStayExcluded(t *testing.T) {
	d := New(DefaultConfig())
	txs := []plan.Transaction{
		makeTx("out", "checking", "-500.00", "2024-03-01"),
		makeTx("in", "savings", "500.00", "2024-03-01"),
	}

	excluded := PairSet{PairKey("in", "out"): true}
	assert.Empty(t, d.Detect(txs, excluded))
}

func TestDetect_GreedyOnePairPerTransaction(t *testing.T) {
	d := New(DefaultConfig())
	// One outflow, two plausible inflows on different days. The same-day
	// inflow scores higher and must claim the outflow.
	txs := []plan.Transaction{
		makeTx("out", "checking", "-500.00", "2024-03-01"),
		makeTx("in-near", "savings", "500.00", "2024-03-01"),
		makeTx("in-far", "brokerage", "500.00", "2024-03-03"),
	}

	got := d.Detect(txs, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "in-near", got[0].InTx.ID)
}

func TestDetect_ConfidenceDecaysWithDistance(t *testing.T) {
	d := New(DefaultConfig())
	txs := []plan.Transaction{
		makeTx("out", "checking", "-500.00", "2024-03-01"),
		makeTx("in", "savings", "500.00", "2024-03-03"),
	}

	got := d.Detect(txs, nil)
	require.Len(t, got, 1)
	// amount exact (60) + date 2/4 of the window left (0.4 * 50) = 80
	assert.Equal(t, 80, got[0].Confidence)
}

func TestPairKey_Canonical(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "a|b", PairKey("b", "a"))
}
