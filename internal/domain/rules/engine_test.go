package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finwell/planmatch/internal/domain/plan"
)

func makeRule(id string, priority int, field plan.RuleField, op plan.RuleOperator, value, category string) plan.Rule {
	return plan.Rule{
		ID:         id,
		UserID:     "user-1",
		Priority:   priority,
		Field:      field,
		Operator:   op,
		Value:      value,
		CategoryID: category,
		Enabled:    true,
		CreatedAt:  time.Now(),
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	// Two rules both match; the higher priority one decides.
	rs := []plan.Rule{
		makeRule("r1", 10, plan.FieldDescription, plan.OpContains, "costco gas", "cat-fuel"),
		makeRule("r2", 5, plan.FieldDescription, plan.OpContains, "costco", "cat-groceries"),
	}
	Sort(rs)

	tx := &plan.Transaction{Description: "COSTCO GAS #123"}
	category, matched := Evaluate(tx, rs)
	assert.True(t, matched)
	assert.Equal(t, "cat-fuel", category)

	tx = &plan.Transaction{Description: "COSTCO WHOLESALE #456"}
	category, matched = Evaluate(tx, rs)
	assert.True(t, matched)
	assert.Equal(t, "cat-groceries", category)
}

func TestEvaluate_NoMatch(t *testing.T) {
	rs := []plan.Rule{
		makeRule("r1", 1, plan.FieldDescription, plan.OpContains, "netflix", "cat-streaming"),
	}
	_, matched := Evaluate(&plan.Transaction{Description: "SPOTIFY"}, rs)
	assert.False(t, matched)
}

func TestEvaluate_SkipsDisabledRules(t *testing.T) {
	r := makeRule("r1", 1, plan.FieldDescription, plan.OpContains, "netflix", "cat-streaming")
	r.Enabled = false

	_, matched := Evaluate(&plan.Transaction{Description: "NETFLIX.COM"}, []plan.Rule{r})
	assert.False(t, matched)
}

func TestEvaluate_CaseSensitivity(t *testing.T) {
	insensitive := makeRule("r1", 1, plan.FieldMerchant, plan.OpExact, "Trader Joe's", "cat-groceries")
	category, matched := Evaluate(&plan.Transaction{Merchant: "TRADER JOE'S"}, []plan.Rule{insensitive})
	assert.True(t, matched)
	assert.Equal(t, "cat-groceries", category)

	sensitive := insensitive
	sensitive.CaseSensitive = true
	_, matched = Evaluate(&plan.Transaction{Merchant: "TRADER JOE'S"}, []plan.Rule{sensitive})
	assert.False(t, matched)
}

func TestEvaluate_Operators(t *testing.T) {
	tx := &plan.Transaction{Description: "  ACH PAYMENT VERIZON WIRELESS  "}

	tests := []struct {
		name  string
		op    plan.RuleOperator
		value string
		want  bool
	}{
		{"contains hit", plan.OpContains, "verizon", true},
		{"contains miss", plan.OpContains, "t-mobile", false},
		{"exact with trimming", plan.OpExact, "ach payment verizon wireless", true},
		{"startsWith", plan.OpStartsWith, "ach", true},
		{"endsWith", plan.OpEndsWith, "wireless", true},
		{"endsWith miss", plan.OpEndsWith, "payment", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := makeRule("r", 1, plan.FieldDescription, tc.op, tc.value, "cat-x")
			_, matched := Evaluate(tx, []plan.Rule{r})
			assert.Equal(t, tc.want, matched)
		})
	}
}

func TestEvaluate_EmptyValueNeverMatches(t *testing.T) {
	r := makeRule("r1", 1, plan.FieldDescription, plan.OpContains, "   ", "cat-x")
	_, matched := Evaluate(&plan.Transaction{Description: "anything"}, []plan.Rule{r})
	assert.False(t, matched)
}

func TestSort_PriorityThenCreation(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := old.Add(time.Hour)

	a := makeRule("a", 5, plan.FieldDescription, plan.OpContains, "x", "cat-a")
	a.CreatedAt = newer
	b := makeRule("b", 5, plan.FieldDescription, plan.OpContains, "x", "cat-b")
	b.CreatedAt = old
	c := makeRule("c", 10, plan.FieldDescription, plan.OpContains, "x", "cat-c")
	c.CreatedAt = newer

	rs := []plan.Rule{a, b, c}
	Sort(rs)

	assert.Equal(t, "c", rs[0].ID)
	assert.Equal(t, "b", rs[1].ID)
	assert.Equal(t, "a", rs[2].ID)
}
