package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// amountScore scores amount closeness: 100 at an exact match, linear
// decay to 0 at the tolerance boundary. The second return is false
// when the difference exceeds the tolerance, which disqualifies the
// candidate outright.
func amountScore(diff, tolerance decimal.Decimal) (float64, bool) {
	if diff.GreaterThan(tolerance) {
		return 0, false
	}
	if tolerance.IsZero() {
		return 100, true // diff <= 0 means exact
	}
	ratio, _ := diff.Div(tolerance).Float64()
	return 100 * (1 - ratio), true
}

// dateScore scores date closeness: 100 on the expected date, linear
// decay to the floor at the window edge.
func dateScore(diffDays, windowDays int, floor float64) float64 {
	if windowDays <= 0 {
		return 100
	}
	ratio := float64(diffDays) / float64(windowDays)
	return floor + (100-floor)*(1-ratio)
}

// textScore compares the transaction's description/merchant text with
// the occurrence name. Two heuristics, best wins: token overlap (how
// much of the shorter token set appears in the other) and levenshtein
// similarity over the whole strings. Returns ok=false when either
// side is empty, so the signal drops out instead of dragging the
// score down.
func textScore(txText, name string) (float64, bool) {
	a := normalizeText(txText)
	b := normalizeText(name)
	if a == "" || b == "" {
		return 0, false
	}

	overlap := tokenOverlap(strings.Fields(a), strings.Fields(b))

	// ComputeDistance counts runes, so the length must too.
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	lev := 1 - float64(dist)/float64(maxLen)
	if lev < 0 {
		lev = 0
	}

	best := overlap
	if lev > best {
		best = lev
	}
	return 100 * best, true
}

// tokenOverlap is the fraction of the smaller distinct token set that
// appears in the other. Distinct counts keep repeated tokens from
// pushing the ratio past 1.
func tokenOverlap(a, b []string) float64 {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	shared := 0
	for tok := range bs {
		if as[tok] {
			shared++
		}
	}
	smaller := len(as)
	if len(bs) < smaller {
		smaller = len(bs)
	}
	return float64(shared) / float64(smaller)
}

func tokenSet(toks []string) map[string]bool {
	set := make(map[string]bool, len(toks))
	for _, tok := range toks {
		set[tok] = true
	}
	return set
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
