package schedule

import (
	"time"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// resolveDay picks the concrete day of the given month per the day
// rule. With no rule, the template's original day is used, clamped to
// the month length (a template starting Jan 31 falls on Feb 28/29).
func resolveDay(year int, month time.Month, rule *plan.DayRule, defaultDay int) plan.Date {
	last := plan.DaysIn(year, month)

	if rule == nil {
		return clamp(year, month, defaultDay, last)
	}

	switch rule.Kind {
	case plan.DayFixed:
		return clamp(year, month, rule.Day, last)
	case plan.DayLast:
		return plan.NewDate(year, month, last)
	case plan.DayFirstWeekday:
		d := plan.NewDate(year, month, 1)
		for isWeekend(d.Weekday()) {
			d = d.AddDays(1)
		}
		return d
	case plan.DayLastWeekday:
		d := plan.NewDate(year, month, last)
		for isWeekend(d.Weekday()) {
			d = d.AddDays(-1)
		}
		return d
	case plan.DayFirstOfWeek:
		d := plan.NewDate(year, month, 1)
		for d.Weekday() != rule.Weekday {
			d = d.AddDays(1)
		}
		return d
	case plan.DayLastOfWeek:
		d := plan.NewDate(year, month, last)
		for d.Weekday() != rule.Weekday {
			d = d.AddDays(-1)
		}
		return d
	default:
		return clamp(year, month, defaultDay, last)
	}
}

func clamp(year int, month time.Month, day, last int) plan.Date {
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return plan.NewDate(year, month, day)
}

func isWeekend(w time.Weekday) bool {
	return w == time.Saturday || w == time.Sunday
}
