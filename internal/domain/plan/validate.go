package plan

import (
	"fmt"
	"time"
)

// ValidationError describes a malformed template or rule. Validation
// happens at creation time so the expander and matcher never see a
// template that could make them misbehave.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ValidateTemplate checks a template before it is stored. Interval<1
// and a day rule incompatible with the period kind are rejected here,
// never handled defensively downstream.
func ValidateTemplate(t *Template) error {
	if t.UserID == "" {
		return invalid("user_id", "required")
	}
	if t.Name == "" {
		return invalid("name", "required")
	}
	if t.AccountID == "" {
		return invalid("account_id", "required")
	}
	switch t.Kind {
	case BudgetTemplate, PlannedTransaction:
	default:
		return invalid("kind", "unknown template kind %q", t.Kind)
	}
	switch t.Period {
	case Daily, Weekly, Fortnightly, Monthly, Annually:
	default:
		return invalid("period", "unknown period kind %q", t.Period)
	}
	if t.Interval < 1 {
		return invalid("interval", "must be >= 1, got %d", t.Interval)
	}
	if t.FirstDate.IsZero() {
		return invalid("first_date", "required")
	}
	if t.EndDate != nil && t.EndDate.Before(t.FirstDate) {
		return invalid("end_date", "%s is before first occurrence %s", t.EndDate, t.FirstDate)
	}
	if t.Amount.IsZero() {
		return invalid("amount", "must be non-zero")
	}
	if err := validateDayRule(t); err != nil {
		return err
	}
	if t.Policy.MatchWindowDays < 0 {
		return invalid("policy.match_window_days", "must be >= 0")
	}
	if t.Policy.AmountTolerance != nil && t.Policy.AmountTolerance.IsNegative() {
		return invalid("policy.amount_tolerance", "must be >= 0")
	}
	switch t.SpendMode {
	case "", SpendDaily, SpendEndOfPeriod, SpendNone:
	default:
		return invalid("spend_mode", "unknown spend mode %q", t.SpendMode)
	}
	return nil
}

func validateDayRule(t *Template) error {
	r := t.DayRule
	if r == nil {
		return nil
	}
	if t.Period != Monthly && t.Period != Annually {
		return invalid("day_rule", "only valid for MONTHLY and ANNUALLY templates, not %s", t.Period)
	}
	switch r.Kind {
	case DayFixed:
		if r.Day < 1 || r.Day > 31 {
			return invalid("day_rule.day", "must be 1-31, got %d", r.Day)
		}
	case DayFirstOfWeek, DayLastOfWeek:
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			return invalid("day_rule.weekday", "invalid weekday %d", r.Weekday)
		}
	case DayLast, DayFirstWeekday, DayLastWeekday:
	default:
		return invalid("day_rule.kind", "unknown day rule %q", r.Kind)
	}
	return nil
}

// ValidateRule checks a categorization rule before it is stored.
func ValidateRule(r *Rule) error {
	if r.UserID == "" {
		return invalid("user_id", "required")
	}
	switch r.Field {
	case FieldDescription, FieldMerchant, FieldNotes:
	default:
		return invalid("field", "unknown rule field %q", r.Field)
	}
	switch r.Operator {
	case OpContains, OpExact, OpStartsWith, OpEndsWith:
	default:
		return invalid("operator", "unknown operator %q", r.Operator)
	}
	if r.Value == "" {
		return invalid("value", "required")
	}
	if r.CategoryID == "" {
		return invalid("category_id", "required")
	}
	return nil
}
