// Package occurrence merges expanded schedule dates with persisted
// overrides to produce the effective planned view for a date range.
//
// Occurrences are virtual: nothing here writes anything, and calling
// Effective twice over the same range and override state yields
// identical output.
package occurrence

import (
	"sort"

	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/schedule"
)

// OverrideIndex holds a template's overrides keyed by the original
// expected date. Build one per template with IndexOverrides.
type OverrideIndex map[string]*plan.Override

// IndexOverrides builds an OverrideIndex from a list of overrides.
func IndexOverrides(overrides []plan.Override) OverrideIndex {
	idx := make(OverrideIndex, len(overrides))
	for i := range overrides {
		o := &overrides[i]
		idx[o.OriginalDate.String()] = o
	}
	return idx
}

// Effective returns the template's effective occurrences in [from, to],
// ascending by effective date. Each expanded date is resolved exactly
// one way: a skipped override omits it, a non-skipped override
// substitutes its fields, and otherwise the occurrence is synthesized
// from the template. Output count equals the expanded count minus
// skipped overrides.
func Effective(t *plan.Template, from, to plan.Date, overrides OverrideIndex) ([]plan.Occurrence, error) {
	dates, err := schedule.Expand(t, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]plan.Occurrence, 0, len(dates))
	moved := false
	for _, d := range dates {
		o := overrides[d.String()]
		if o != nil && o.Skipped {
			continue
		}
		occ := synthesize(t, d)
		if o != nil {
			applyOverride(&occ, o)
			if !occ.EffectiveDate.Equal(occ.ExpectedDate) {
				moved = true
			}
		}
		out = append(out, occ)
	}

	// A moved date can change relative order; expander output itself
	// is already ascending.
	if moved {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectiveDate.Before(out[j].EffectiveDate)
		})
	}
	return out, nil
}

func synthesize(t *plan.Template, d plan.Date) plan.Occurrence {
	return plan.Occurrence{
		TemplateID:    t.ID,
		ExpectedDate:  d,
		EffectiveDate: d,
		Name:          t.Name,
		Amount:        t.Amount,
		CategoryID:    t.CategoryID,
		AccountID:     t.AccountID,
	}
}

func applyOverride(occ *plan.Occurrence, o *plan.Override) {
	occ.Overridden = true
	occ.OverrideID = o.ID
	if o.NewDate != nil {
		occ.EffectiveDate = *o.NewDate
	}
	if o.NewAmount != nil {
		occ.Amount = *o.NewAmount
	}
	if o.NewCategoryID != nil {
		occ.CategoryID = *o.NewCategoryID
	}
	if o.NewName != nil {
		occ.Name = *o.NewName
	}
}
