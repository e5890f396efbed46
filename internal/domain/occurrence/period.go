package occurrence

import (
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/schedule"
)

// Period is one budget period of a template: the span from an expected
// date up to the day before the next one. It carries the template's
// implicit-spend mode so downstream spend aggregation applies the same
// policy everywhere.
type Period struct {
	TemplateID string                 `json:"template_id"`
	Start      plan.Date              `json:"start"`
	End        plan.Date              `json:"end"` // inclusive
	Occurrence plan.Occurrence        `json:"occurrence"`
	SpendMode  plan.ImplicitSpendMode `json:"spend_mode"`
}

// Periods returns the template's budget periods overlapping [from, to].
// Each period starts at an effective occurrence date and ends the day
// before the pattern's next date, clamped to the template's end date.
func Periods(t *plan.Template, from, to plan.Date, overrides OverrideIndex) ([]Period, error) {
	// Reach one period back so a window starting mid-period still sees
	// the period that contains its start.
	lookback := from
	if t.FirstDate.Before(from) {
		prev, err := lastOnOrBefore(t, from)
		if err != nil {
			return nil, err
		}
		lookback = prev
	}

	occs, err := Effective(t, lookback, to, overrides)
	if err != nil {
		return nil, err
	}

	mode := t.SpendMode
	if mode == "" {
		mode = plan.SpendNone
	}

	periods := make([]Period, 0, len(occs))
	for _, occ := range occs {
		next, err := schedule.Next(t, occ.ExpectedDate)
		if err != nil {
			return nil, err
		}
		end := next.AddDays(-1)
		if t.EndDate != nil && t.EndDate.Before(end) {
			end = *t.EndDate
		}
		if end.Before(from) {
			continue
		}
		periods = append(periods, Period{
			TemplateID: t.ID,
			Start:      occ.EffectiveDate,
			End:        end,
			Occurrence: occ,
			SpendMode:  mode,
		})
	}
	return periods, nil
}

// lastOnOrBefore finds the latest expected date not after d.
func lastOnOrBefore(t *plan.Template, d plan.Date) (plan.Date, error) {
	dates, err := schedule.Expand(t, t.FirstDate, d)
	if err != nil {
		return plan.Date{}, err
	}
	if len(dates) == 0 {
		return t.FirstDate, nil
	}
	return dates[len(dates)-1], nil
}
