// Package transfer pairs opposite-sign transactions across a user's
// own accounts. It is the matching engine's sibling: same confidence
// idea, but transaction-to-transaction instead of
// transaction-to-plan.
package transfer

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Config holds the pairing tolerances.
type Config struct {
	// AmountTolerance is the largest magnitude difference two legs may
	// have and still pair (bank fees, FX rounding).
	AmountTolerance decimal.Decimal
	// MaxDaysApart is the widest date gap between the two legs.
	MaxDaysApart int
	// MinConfidence drops weak pairs before they reach the user.
	MinConfidence int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		AmountTolerance: decimal.NewFromFloat(0.01),
		MaxDaysApart:    3,
		MinConfidence:   50,
	}
}

// Candidate is one proposed transfer pair.
type Candidate struct {
	OutTx      plan.Transaction `json:"out_tx"`
	InTx       plan.Transaction `json:"in_tx"`
	Confidence int              `json:"confidence"`
}

// Key returns the canonical identity of the pair, independent of leg
// order. Dismissals are recorded against this key so a dismissed pair
// stays dismissed across detection runs.
func (c *Candidate) Key() string {
	return PairKey(c.OutTx.ID, c.InTx.ID)
}

// PairKey builds the canonical pair key for two transaction ids.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// PairSet is a set of canonical pair keys (dismissed or confirmed
// pairs the detector must not propose again).
type PairSet map[string]bool

// Detector finds transfer pairs in a batch of transactions.
type Detector struct {
	config Config
}

// New creates a detector with the given config.
func New(config Config) *Detector {
	return &Detector{config: config}
}

// Detect returns candidate transfer pairs, best confidence first.
// Pairs whose key appears in excluded are never proposed, and each
// transaction appears in at most one returned pair per run.
func (d *Detector) Detect(txs []plan.Transaction, excluded PairSet) []Candidate {
	var all []Candidate
	for i := 0; i < len(txs); i++ {
		for j := i + 1; j < len(txs); j++ {
			c, ok := d.pair(&txs[i], &txs[j])
			if !ok || excluded[c.Key()] {
				continue
			}
			all = append(all, c)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	// Greedy: the strongest pairing claims both legs.
	used := make(map[string]bool, len(all)*2)
	out := all[:0]
	for _, c := range all {
		if used[c.OutTx.ID] || used[c.InTx.ID] {
			continue
		}
		used[c.OutTx.ID] = true
		used[c.InTx.ID] = true
		out = append(out, c)
	}
	return out
}

// pair checks whether two transactions form a transfer candidate and
// scores it.
func (d *Detector) pair(a, b *plan.Transaction) (Candidate, bool) {
	if a.UserID != b.UserID || a.AccountID == b.AccountID {
		return Candidate{}, false
	}
	// One leg out, one leg in.
	if a.Amount.Sign() == b.Amount.Sign() || a.Amount.IsZero() || b.Amount.IsZero() {
		return Candidate{}, false
	}

	out, in := a, b
	if a.Amount.Sign() > 0 {
		out, in = b, a
	}

	amountDiff := out.Amount.Abs().Sub(in.Amount.Abs()).Abs()
	if amountDiff.GreaterThan(d.config.AmountTolerance) {
		return Candidate{}, false
	}

	daysApart := plan.DaysBetween(out.Date, in.Date)
	if daysApart < 0 {
		daysApart = -daysApart
	}
	if daysApart > d.config.MaxDaysApart {
		return Candidate{}, false
	}

	c := Candidate{
		OutTx:      *out,
		InTx:       *in,
		Confidence: d.confidence(amountDiff, daysApart),
	}
	if c.Confidence < d.config.MinConfidence {
		return Candidate{}, false
	}
	return c, true
}

// confidence mirrors the matching engine's spirit: amount exactness
// and date proximity, linearly decayed across the configured
// tolerances.
func (d *Detector) confidence(amountDiff decimal.Decimal, daysApart int) int {
	amount := 100.0
	if !d.config.AmountTolerance.IsZero() {
		ratio, _ := amountDiff.Div(d.config.AmountTolerance).Float64()
		amount = 100 * (1 - ratio)
	}

	date := 100.0
	if d.config.MaxDaysApart > 0 {
		date = 100 * (1 - float64(daysApart)/float64(d.config.MaxDaysApart+1))
	}

	return int(math.Round(0.6*amount + 0.4*date))
}
