// Package rules evaluates ordered text-matching categorization rules
// against transactions. Evaluation is independent of scheduling and
// matching; it only reads transaction text fields.
package rules

import (
	"sort"
	"strings"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Evaluate runs the rules against the transaction and returns the
// category of the first rule that matches. Rules must already be
// sorted (see Sort); disabled rules are skipped. Evaluation
// short-circuits at the first hit.
func Evaluate(tx *plan.Transaction, sorted []plan.Rule) (categoryID string, matched bool) {
	for i := range sorted {
		r := &sorted[i]
		if !r.Enabled {
			continue
		}
		if ruleMatches(tx, r) {
			return r.CategoryID, true
		}
	}
	return "", false
}

// Sort orders rules by priority descending, ties broken by creation
// order. The cache keeps rules in this order so per-transaction
// evaluation never re-sorts.
func Sort(rules []plan.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}

func ruleMatches(tx *plan.Transaction, r *plan.Rule) bool {
	text := fieldValue(tx, r.Field)
	text = strings.TrimSpace(text)
	value := strings.TrimSpace(r.Value)
	if value == "" {
		return false
	}
	if !r.CaseSensitive {
		text = strings.ToLower(text)
		value = strings.ToLower(value)
	}

	switch r.Operator {
	case plan.OpContains:
		return strings.Contains(text, value)
	case plan.OpExact:
		return text == value
	case plan.OpStartsWith:
		return strings.HasPrefix(text, value)
	case plan.OpEndsWith:
		return strings.HasSuffix(text, value)
	default:
		return false
	}
}

func fieldValue(tx *plan.Transaction, f plan.RuleField) string {
	switch f {
	case plan.FieldDescription:
		return tx.Description
	case plan.FieldMerchant:
		return tx.Merchant
	case plan.FieldNotes:
		return tx.Notes
	default:
		return ""
	}
}
