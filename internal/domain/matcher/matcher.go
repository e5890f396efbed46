// Package matcher reconciles real bank transactions against expected
// plan occurrences with a confidence-scored algorithm.
//
// A candidate must share the transaction's account, fall inside the
// template's date window and survive the amount-tolerance gate. The
// survivors are scored 0-100 from three weighted signals (amount
// closeness, date closeness, text similarity) and the best one drives
// the decision: auto-confirm, propose for review, or no match.
package matcher

import (
	"math"
	"sort"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Matcher scores transactions against candidate occurrences.
type Matcher struct {
	config Config
}

// New creates a matcher with the given config.
func New(config Config) *Matcher {
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 3
	}
	return &Matcher{config: config}
}

// Match scores the transaction against the candidate sources and
// applies the decision policy. It is pure: committing the result is
// the caller's job.
func (m *Matcher) Match(tx *plan.Transaction, sources []Source) Result {
	scored := make([]Candidate, 0, len(sources))
	policies := make(map[string]*plan.Template, len(sources))

	for i := range sources {
		src := &sources[i]
		c, ok := m.score(tx, src)
		if !ok {
			continue
		}
		scored = append(scored, c)
		policies[src.Template.ID] = src.Template
	}

	if len(scored) == 0 {
		return Result{Status: StatusNoMatch}
	}

	// Rank: confidence, then nearer date, then earlier template
	// creation.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Confidence != scored[j].Confidence {
			return scored[i].Confidence > scored[j].Confidence
		}
		if scored[i].DateDiff != scored[j].DateDiff {
			return scored[i].DateDiff < scored[j].DateDiff
		}
		ti, tj := policies[scored[i].TemplateID], policies[scored[j].TemplateID]
		return ti.CreatedAt.Before(tj.CreatedAt)
	})

	best := scored[0]
	tpl := policies[best.TemplateID]

	if best.Confidence >= m.config.AutoThreshold && tpl.Policy.AutoMatchEnabled && !tpl.Policy.SkipReview {
		return Result{Status: StatusAuto, Confidence: best.Confidence, Best: &best}
	}
	if best.Confidence >= m.config.ReviewThreshold {
		top := scored
		if len(top) > m.config.MaxCandidates {
			top = top[:m.config.MaxCandidates]
		}
		return Result{Status: StatusNeedsReview, Confidence: best.Confidence, Best: &best, Candidates: top}
	}
	return Result{Status: StatusNoMatch, Confidence: best.Confidence}
}

// score gates and scores a single candidate. ok=false means the
// candidate is disqualified (wrong account, incompatible category,
// outside the date window, or beyond the amount tolerance).
func (m *Matcher) score(tx *plan.Transaction, src *Source) (Candidate, bool) {
	occ := &src.Occurrence
	policy := src.Template.Policy

	if occ.AccountID != tx.AccountID {
		return Candidate{}, false
	}
	if occ.CategoryID != "" && tx.CategoryID != "" && occ.CategoryID != tx.CategoryID {
		return Candidate{}, false
	}

	window := policy.MatchWindowDays
	if window <= 0 {
		window = m.config.DefaultWindowDays
	}
	dateDiff := plan.DaysBetween(occ.EffectiveDate, tx.Date)
	if dateDiff < 0 {
		dateDiff = -dateDiff
	}
	if dateDiff > window {
		return Candidate{}, false
	}

	amountDiff := tx.Amount.Sub(occ.Amount).Abs()

	type signal struct {
		weight float64
		value  float64
	}
	signals := make([]signal, 0, 3)

	// Amount: hard gate beyond tolerance; unset tolerance means the
	// amount carries no signal at all.
	if policy.AmountTolerance != nil {
		s, ok := amountScore(amountDiff, *policy.AmountTolerance)
		if !ok {
			return Candidate{}, false
		}
		signals = append(signals, signal{m.config.AmountWeight, s})
	}

	signals = append(signals, signal{m.config.DateWeight, dateScore(dateDiff, window, m.config.DateFloor)})

	txText := tx.Description
	if tx.Merchant != "" {
		txText += " " + tx.Merchant
	}
	if s, ok := textScore(txText, occ.Name); ok {
		signals = append(signals, signal{m.config.TextWeight, s})
	}

	var weightSum, total float64
	for _, s := range signals {
		weightSum += s.weight
		total += s.weight * s.value
	}
	confidence := 0
	if weightSum > 0 {
		confidence = int(math.Round(total / weightSum))
	}
	if confidence > 100 {
		confidence = 100
	} else if confidence < 0 {
		confidence = 0
	}

	return Candidate{
		Occurrence: src.Occurrence,
		TemplateID: src.Template.ID,
		Confidence: confidence,
		DateDiff:   dateDiff,
		AmountDiff: amountDiff,
	}, true
}
