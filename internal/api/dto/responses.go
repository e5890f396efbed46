package dto

import (
	"time"

	"github.com/finwell/planmatch/internal/application/automatch"
	"github.com/finwell/planmatch/internal/application/budget"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/transfer"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// TemplateResponse is the wire form of a recurring template.
type TemplateResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	CategoryID string `json:"category_id,omitempty"`
	AccountID  string `json:"account_id,omitempty"`

	PeriodKind string `json:"period_kind"`
	Interval   int    `json:"interval"`
	FirstDate  string `json:"first_date"`
	EndDate    string `json:"end_date,omitempty"`

	DayRule *DayRuleRequest `json:"day_rule,omitempty"`

	SpendMode string             `json:"spend_mode,omitempty"`
	Policy    MatchPolicyRequest `json:"match_policy"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"created_at"`
}

func NewTemplateResponse(t plan.Template) TemplateResponse {
	resp := TemplateResponse{
		ID:         t.ID,
		UserID:     t.UserID,
		Kind:       string(t.Kind),
		Name:       t.Name,
		Amount:     t.Amount.String(),
		CategoryID: t.CategoryID,
		AccountID:  t.AccountID,
		PeriodKind: string(t.Period),
		Interval:   t.Interval,
		FirstDate:  t.FirstDate.String(),
		SpendMode:  string(t.SpendMode),
		Active:     t.Active,
		CreatedAt:  t.CreatedAt,
		Policy: MatchPolicyRequest{
			AutoMatchEnabled: t.Policy.AutoMatchEnabled,
			MatchWindowDays:  t.Policy.MatchWindowDays,
			SkipReview:       t.Policy.SkipReview,
		},
	}
	if t.EndDate != nil {
		resp.EndDate = t.EndDate.String()
	}
	if t.Policy.AmountTolerance != nil {
		s := t.Policy.AmountTolerance.String()
		resp.Policy.AmountTolerance = &s
	}
	if t.DayRule != nil {
		resp.DayRule = &DayRuleRequest{
			Kind:    string(t.DayRule.Kind),
			Day:     t.DayRule.Day,
			Weekday: int(t.DayRule.Weekday),
		}
	}
	return resp
}

// TemplateListResponse wraps a list of templates.
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
	Count     int                `json:"count"`
}

func NewTemplateListResponse(templates []plan.Template) TemplateListResponse {
	out := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, NewTemplateResponse(t))
	}
	return TemplateListResponse{Templates: out, Count: len(out)}
}

// OccurrenceResponse is a single expected occurrence within a range.
type OccurrenceResponse struct {
	TemplateID    string `json:"template_id"`
	ExpectedDate  string `json:"expected_date"`
	EffectiveDate string `json:"effective_date"`
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	CategoryID    string `json:"category_id,omitempty"`
	AccountID     string `json:"account_id,omitempty"`
	Overridden    bool   `json:"overridden"`
}

func NewOccurrenceResponse(o plan.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		TemplateID:    o.TemplateID,
		ExpectedDate:  o.ExpectedDate.String(),
		EffectiveDate: o.EffectiveDate.String(),
		Name:          o.Name,
		Amount:        o.Amount.String(),
		CategoryID:    o.CategoryID,
		AccountID:     o.AccountID,
		Overridden:    o.Overridden,
	}
}

// OccurrenceListResponse wraps expanded occurrences.
type OccurrenceListResponse struct {
	Occurrences []OccurrenceResponse `json:"occurrences"`
	Count       int                  `json:"count"`
}

func NewOccurrenceListResponse(occs []plan.Occurrence) OccurrenceListResponse {
	out := make([]OccurrenceResponse, 0, len(occs))
	for _, o := range occs {
		out = append(out, NewOccurrenceResponse(o))
	}
	return OccurrenceListResponse{Occurrences: out, Count: len(out)}
}

// RuleResponse is the wire form of a categorization rule.
type RuleResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Field         string    `json:"field"`
	Operator      string    `json:"operator"`
	Value         string    `json:"value"`
	CaseSensitive bool      `json:"case_sensitive"`
	CategoryID    string    `json:"category_id"`
	Priority      int       `json:"priority"`
	Enabled       bool      `json:"enabled"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewRuleResponse(r plan.Rule) RuleResponse {
	return RuleResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		Field:         string(r.Field),
		Operator:      string(r.Operator),
		Value:         r.Value,
		CaseSensitive: r.CaseSensitive,
		CategoryID:    r.CategoryID,
		Priority:      r.Priority,
		Enabled:       r.Enabled,
		CreatedAt:     r.CreatedAt,
	}
}

// RuleListResponse wraps a list of rules.
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
	Count int            `json:"count"`
}

func NewRuleListResponse(rules []plan.Rule) RuleListResponse {
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, NewRuleResponse(r))
	}
	return RuleListResponse{Rules: out, Count: len(out)}
}

// MatchRunResponse summarizes an auto-match batch.
type MatchRunResponse struct {
	Processed   int             `json:"processed"`
	Matched     int             `json:"matched"`
	NeedsReview int             `json:"needs_review"`
	Skipped     int             `json:"skipped"`
	Errors      []ItemErrorResp `json:"errors,omitempty"`
}

// ItemErrorResp reports a per-transaction failure within a batch.
type ItemErrorResp struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

func NewMatchRunResponse(s automatch.Summary) MatchRunResponse {
	resp := MatchRunResponse{
		Processed:   s.Processed,
		Matched:     s.Matched,
		NeedsReview: s.NeedsReview,
		Skipped:     s.Skipped,
	}
	for _, e := range s.Errors {
		resp.Errors = append(resp.Errors, ItemErrorResp{TransactionID: e.TransactionID, Message: e.Message})
	}
	return resp
}

// ReviewCandidateResponse is one suggested occurrence for a review item.
type ReviewCandidateResponse struct {
	TemplateID   string `json:"template_id"`
	ExpectedDate string `json:"expected_date"`
	Confidence   int    `json:"confidence"`
}

// ReviewItemResponse is a pending match awaiting user confirmation.
type ReviewItemResponse struct {
	ID            string                    `json:"id"`
	TransactionID string                    `json:"transaction_id"`
	Status        string                    `json:"status"`
	Candidates    []ReviewCandidateResponse `json:"candidates"`
	CreatedAt     time.Time                 `json:"created_at"`
}

func NewReviewItemResponse(item storage.ReviewItem) ReviewItemResponse {
	resp := ReviewItemResponse{
		ID:            item.ID,
		TransactionID: item.TransactionID,
		Status:        item.Status,
		CreatedAt:     item.CreatedAt,
	}
	for _, c := range item.Candidates {
		resp.Candidates = append(resp.Candidates, ReviewCandidateResponse{
			TemplateID:   c.TemplateID,
			ExpectedDate: c.ExpectedDate.String(),
			Confidence:   c.Confidence,
		})
	}
	return resp
}

// ReviewListResponse wraps pending review items.
type ReviewListResponse struct {
	Items []ReviewItemResponse `json:"items"`
	Count int                  `json:"count"`
}

func NewReviewListResponse(items []storage.ReviewItem) ReviewListResponse {
	out := make([]ReviewItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewReviewItemResponse(item))
	}
	return ReviewListResponse{Items: out, Count: len(out)}
}

// TransferCandidateResponse is one detected transfer pair.
type TransferCandidateResponse struct {
	OutTxID    string `json:"out_tx_id"`
	InTxID     string `json:"in_tx_id"`
	Confidence int    `json:"confidence"`
}

// TransferScanResponse wraps the candidates from a scan.
type TransferScanResponse struct {
	Candidates []TransferCandidateResponse `json:"candidates"`
	Count      int                         `json:"count"`
}

func NewTransferScanResponse(candidates []transfer.Candidate) TransferScanResponse {
	out := make([]TransferCandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, TransferCandidateResponse{
			OutTxID:    c.OutTx.ID,
			InTxID:     c.InTx.ID,
			Confidence: c.Confidence,
		})
	}
	return TransferScanResponse{Candidates: out, Count: len(out)}
}

// BudgetStatusResponse reports budget consumption for a period.
type BudgetStatusResponse struct {
	TemplateID  string  `json:"template_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Budget      string  `json:"budget"`
	Spent       string  `json:"spent"`
	Implicit    string  `json:"implicit_spend"`
	Remaining   string  `json:"remaining"`
	Percent     float64 `json:"percent"`
	State       string  `json:"state"`
	SpendMode   string  `json:"spend_mode"`
}

func NewBudgetStatusResponse(r budget.Report) BudgetStatusResponse {
	return BudgetStatusResponse{
		TemplateID:  r.TemplateID,
		PeriodStart: r.Start.String(),
		PeriodEnd:   r.End.String(),
		Budget:      r.Budget.String(),
		Spent:       r.Spent.String(),
		Implicit:    r.Implicit.String(),
		Remaining:   r.Remaining.String(),
		Percent:     r.Percent,
		State:       string(r.State),
		SpendMode:   string(r.SpendMode),
	}
}

// MessageResponse is a simple acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}
