package schedule

import (
	"fmt"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Next returns the first expected date of the template strictly after
// the given date, following the recurrence pattern and ignoring the
// template's end date. Callers that need the end bound (period
// boundary computation clamps to it) apply it themselves; Expand is
// the end-honoring API.
func Next(t *plan.Template, after plan.Date) (plan.Date, error) {
	if t.Interval < 1 {
		return plan.Date{}, fmt.Errorf("template %s: interval %d is invalid", t.ID, t.Interval)
	}

	switch t.Period {
	case plan.Daily, plan.Weekly, plan.Fortnightly:
		step := stepDays(t)
		d := t.FirstDate
		if behind := plan.DaysBetween(d, after); behind > 0 {
			d = d.AddDays((behind / step) * step)
		}
		for !d.After(after) {
			d = d.AddDays(step)
		}
		return d, nil
	case plan.Monthly, plan.Annually:
		stepMonths := t.Interval
		if t.Period == plan.Annually {
			stepMonths = 12 * t.Interval
		}
		anchor := plan.NewDate(t.FirstDate.Year(), t.FirstDate.Month(), 1)
		for i := 0; i < IterationCap; i++ {
			month := anchor.AddMonths(i * stepMonths)
			d := resolveDay(month.Year(), month.Month(), t.DayRule, t.FirstDate.Day())
			if d.After(after) && !d.Before(t.FirstDate) {
				return d, nil
			}
		}
		return plan.Date{}, fmt.Errorf("template %s: no next occurrence within %d periods", t.ID, IterationCap)
	default:
		return plan.Date{}, fmt.Errorf("template %s: unknown period kind %q", t.ID, t.Period)
	}
}
