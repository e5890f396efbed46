package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Status is the outcome of a match attempt.
type Status string

const (
	StatusAuto        Status = "AUTO"
	StatusNeedsReview Status = "NEEDS_REVIEW"
	StatusNoMatch     Status = "NO_MATCH"
)

// Config holds the scoring weights and decision thresholds. Weights
// are relative; signals a candidate cannot provide (no amount
// tolerance set, no text on either side) are dropped and the rest
// renormalized, so a two-signal score still spans 0-100.
type Config struct {
	AmountWeight float64
	DateWeight   float64
	TextWeight   float64

	// DateFloor is the date-closeness score at the edge of the match
	// window. Decay is linear from 100 at the expected date.
	DateFloor float64

	AutoThreshold   int
	ReviewThreshold int

	// DefaultWindowDays applies when a template's policy leaves the
	// match window unset.
	DefaultWindowDays int

	// MaxCandidates bounds the ranked list surfaced for review.
	MaxCandidates int
}

// DefaultConfig returns the tuned defaults. Tests pin deterministic
// thresholds by constructing their own Config.
func DefaultConfig() Config {
	return Config{
		AmountWeight:      0.5,
		DateWeight:        0.3,
		TextWeight:        0.2,
		DateFloor:         20,
		AutoThreshold:     85,
		ReviewThreshold:   50,
		DefaultWindowDays: 7,
		MaxCandidates:     3,
	}
}

// Source pairs a candidate occurrence with its owning template. The
// template supplies the match policy and the creation-time tie break.
type Source struct {
	Occurrence plan.Occurrence
	Template   *plan.Template
}

// Candidate is one scored pairing of the transaction with an
// occurrence.
type Candidate struct {
	Occurrence plan.Occurrence `json:"occurrence"`
	TemplateID string          `json:"template_id"`
	Confidence int             `json:"confidence"`
	DateDiff   int             `json:"date_diff"`
	AmountDiff decimal.Decimal `json:"amount_diff"`
}

// Result is the outcome of matching one transaction against its
// candidate set.
type Result struct {
	Status     Status      `json:"status"`
	Confidence int         `json:"confidence"`
	Best       *Candidate  `json:"best,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"` // ranked, for review
}
