// Package schedule expands recurrence templates into concrete dates.
//
// Expansion is a pure function: (template, date window) -> ordered
// dates. Nothing is persisted and nothing is cached; far-future
// recurrences cost nothing until somebody asks for their window.
package schedule

import (
	"fmt"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// IterationCap bounds the number of occurrences a single expansion may
// produce. Misconfigured templates are rejected at creation time; the
// cap is the backstop that keeps a bad row from turning into an
// unbounded loop.
const IterationCap = 10000

// Expand returns every expected date of the template inside
// [from, to], in ascending order. Both bounds are inclusive; the
// template's end date, when set, is a further inclusive upper bound.
func Expand(t *plan.Template, from, to plan.Date) ([]plan.Date, error) {
	if t.Interval < 1 {
		return nil, fmt.Errorf("template %s: interval %d is invalid", t.ID, t.Interval)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before range start %s", to, from)
	}

	end := to
	if t.EndDate != nil && t.EndDate.Before(end) {
		end = *t.EndDate
	}
	if end.Before(t.FirstDate) {
		return nil, nil
	}

	switch t.Period {
	case plan.Daily, plan.Weekly, plan.Fortnightly:
		return expandByDays(t, from, end)
	case plan.Monthly, plan.Annually:
		return expandByMonths(t, from, end)
	default:
		return nil, fmt.Errorf("template %s: unknown period kind %q", t.ID, t.Period)
	}
}

// stepDays returns the day stride for the day-based period kinds.
func stepDays(t *plan.Template) int {
	switch t.Period {
	case plan.Weekly:
		return 7 * t.Interval
	case plan.Fortnightly:
		return 14 * t.Interval
	default:
		return t.Interval
	}
}

func expandByDays(t *plan.Template, from, end plan.Date) ([]plan.Date, error) {
	step := stepDays(t)

	// Skip whole periods before the window instead of walking them.
	d := t.FirstDate
	if behind := plan.DaysBetween(d, from); behind > 0 {
		d = d.AddDays((behind / step) * step)
	}

	var out []plan.Date
	for i := 0; !d.After(end); i++ {
		if i >= IterationCap {
			return nil, fmt.Errorf("template %s: expansion exceeded %d occurrences", t.ID, IterationCap)
		}
		if !d.Before(from) {
			out = append(out, d)
		}
		d = d.AddDays(step)
	}
	return out, nil
}

func expandByMonths(t *plan.Template, from, end plan.Date) ([]plan.Date, error) {
	stepMonths := t.Interval
	if t.Period == plan.Annually {
		stepMonths = 12 * t.Interval
	}

	// The anchor month advances by whole periods; the day is resolved
	// against each computed month so LAST_DAY and the weekday rules
	// land correctly regardless of month length.
	anchor := plan.NewDate(t.FirstDate.Year(), t.FirstDate.Month(), 1)

	var out []plan.Date
	for i := 0; ; i++ {
		if i >= IterationCap {
			return nil, fmt.Errorf("template %s: expansion exceeded %d occurrences", t.ID, IterationCap)
		}
		month := anchor.AddMonths(i * stepMonths)
		d := resolveDay(month.Year(), month.Month(), t.DayRule, t.FirstDate.Day())
		if d.After(end) {
			return out, nil
		}
		if !d.Before(from) && !d.Before(t.FirstDate) {
			out = append(out, d)
		}
	}
}
