// Package budget computes budget-period status over the effective
// occurrence view. It is a consumer of the materializer, not part of
// it: the period carries its implicit-spend mode, this package
// applies it.
package budget

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwell/planmatch/internal/domain/occurrence"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// State is the headline status of a budget period.
type State string

const (
	UnderBudget State = "UNDER_BUDGET"
	OnTrack     State = "ON_TRACK"
	Warning     State = "WARNING"
	Exceeded    State = "EXCEEDED"
)

// Config holds the status thresholds as fractions of the budget.
type Config struct {
	OnTrackAt float64 // consumed fraction where UNDER_BUDGET ends
	WarningAt float64 // consumed fraction where WARNING begins
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{OnTrackAt: 0.75, WarningAt: 0.9}
}

// Report is the computed status of one budget period.
type Report struct {
	TemplateID string                 `json:"template_id"`
	Start      plan.Date              `json:"start"`
	End        plan.Date              `json:"end"`
	Budget     decimal.Decimal        `json:"budget"`
	Spent      decimal.Decimal        `json:"spent"`
	Implicit   decimal.Decimal        `json:"implicit_spend"`
	Remaining  decimal.Decimal        `json:"remaining"`
	Percent    float64                `json:"percent"`
	State      State                  `json:"state"`
	SpendMode  plan.ImplicitSpendMode `json:"spend_mode"`
}

// Service computes budget status from the store.
type Service struct {
	repo   storage.Repository
	config Config
	logger *slog.Logger
}

// New creates a budget status service.
func New(repo storage.Repository, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, config: cfg, logger: logger}
}

// Status reports the budget period containing the given date.
func (s *Service) Status(templateID string, on plan.Date) (*Report, error) {
	t, err := s.repo.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", templateID, err)
	}
	if t.Kind != plan.BudgetTemplate {
		return nil, fmt.Errorf("template %s is not a budget", templateID)
	}
	user, err := s.repo.GetUser(t.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", t.UserID, err)
	}
	today := plan.DateOf(time.Now(), user.Location())
	if on.IsZero() {
		on = today
	}
	overrides, err := s.repo.ListOverrides(templateID)
	if err != nil {
		return nil, err
	}

	periods, err := occurrence.Periods(t, on, on, occurrence.IndexOverrides(overrides))
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("template %s has no period containing %s: %w",
			templateID, on, storage.ErrNotFound)
	}
	period := periods[0]

	spent, err := s.spentIn(t, period)
	if err != nil {
		return nil, err
	}

	return s.report(period, spent, today), nil
}

// spentIn sums the user's outflows in the period, narrowed to the
// budget's category when it has one.
func (s *Service) spentIn(t *plan.Template, p occurrence.Period) (decimal.Decimal, error) {
	txs, err := s.repo.ListTransactions(storage.TransactionFilters{
		UserID: t.UserID,
		From:   p.Start,
		To:     p.End,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list transactions: %w", err)
	}

	spent := decimal.Zero
	for _, tx := range txs {
		if t.CategoryID != "" && tx.CategoryID != t.CategoryID {
			continue
		}
		if tx.Amount.IsNegative() {
			spent = spent.Add(tx.Amount.Neg())
		}
	}
	return spent, nil
}

func (s *Service) report(p occurrence.Period, spent decimal.Decimal, today plan.Date) *Report {
	budget := p.Occurrence.Amount.Abs()
	implicit := implicitSpend(p, budget, today)

	// Implicit accrual never stacks on top of real spend; it is the
	// floor the period is assumed to have consumed.
	consumed := spent
	if implicit.GreaterThan(consumed) {
		consumed = implicit
	}

	percent := 0.0
	if !budget.IsZero() {
		percent, _ = consumed.Div(budget).Float64()
		percent *= 100
	}

	state := UnderBudget
	switch {
	case consumed.GreaterThan(budget):
		state = Exceeded
	case percent >= s.config.WarningAt*100:
		state = Warning
	case percent >= s.config.OnTrackAt*100:
		state = OnTrack
	}

	return &Report{
		TemplateID: p.TemplateID,
		Start:      p.Start,
		End:        p.End,
		Budget:     budget,
		Spent:      spent,
		Implicit:   implicit,
		Remaining:  budget.Sub(consumed),
		Percent:    percent,
		State:      state,
		SpendMode:  p.SpendMode,
	}
}

// implicitSpend applies the period's implicit-spend mode: DAILY
// prorates the budget across elapsed days, END_OF_PERIOD accrues the
// full amount once the period closes, NONE accrues nothing.
func implicitSpend(p occurrence.Period, budget decimal.Decimal, today plan.Date) decimal.Decimal {
	switch p.SpendMode {
	case plan.SpendDaily:
		total := plan.DaysBetween(p.Start, p.End) + 1
		if total <= 0 {
			return decimal.Zero
		}
		elapsed := plan.DaysBetween(p.Start, today) + 1
		if elapsed <= 0 {
			return decimal.Zero
		}
		if elapsed > total {
			elapsed = total
		}
		return budget.Mul(decimal.NewFromInt(int64(elapsed))).
			Div(decimal.NewFromInt(int64(total))).Round(2)
	case plan.SpendEndOfPeriod:
		if today.After(p.End) {
			return budget
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
