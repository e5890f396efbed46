package dto

// CreateTemplateRequest is the body for POST /api/templates.
type CreateTemplateRequest struct {
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

	SpendMode string              `json:"spend_mode,omitempty"`
	Policy    *MatchPolicyRequest `json:"match_policy,omitempty"`
}

// DayRuleRequest selects the day within month-based periods.
type DayRuleRequest struct {
	Kind    string `json:"kind"`
	Day     int    `json:"day,omitempty"`
	Weekday int    `json:"weekday,omitempty"`
}

// MatchPolicyRequest tunes per-template matching behavior.
type MatchPolicyRequest struct {
	AutoMatchEnabled bool    `json:"auto_match_enabled"`
	AmountTolerance  *string `json:"amount_tolerance,omitempty"`
	MatchWindowDays  int     `json:"match_window_days"`
	SkipReview       bool    `json:"skip_review"`
}

// EditTemplateRequest is the body for PUT /api/templates/{id}.
// Scope comes from the ?scope= query parameter; ExpectedDate is required
// for THIS_ONLY and THIS_AND_FUTURE edits.
type EditTemplateRequest struct {
	ExpectedDate string `json:"expected_date,omitempty"`

	Name       *string             `json:"name,omitempty"`
	Amount     *string             `json:"amount,omitempty"`
	CategoryID *string             `json:"category_id,omitempty"`
	Active     *bool               `json:"active,omitempty"`
	Policy     *MatchPolicyRequest `json:"match_policy,omitempty"`

	// NewDate moves the single occurrence; THIS_ONLY scope only.
	NewDate *string `json:"new_date,omitempty"`
}

// SkipOccurrenceRequest marks a single occurrence as skipped.
type SkipOccurrenceRequest struct {
	ExpectedDate string `json:"expected_date"`
}

// CreateRuleRequest is the body for POST /api/rules.
type CreateRuleRequest struct {
	UserID        string `json:"user_id"`
	Field         string `json:"field"`
	Operator      string `json:"operator"`
	Value         string `json:"value"`
	CaseSensitive bool   `json:"case_sensitive"`
	CategoryID    string `json:"category_id"`
	Priority      int    `json:"priority"`
}

// UpdateRuleRequest is the body for PUT /api/rules/{id}.
type UpdateRuleRequest struct {
	Field         *string `json:"field,omitempty"`
	Operator      *string `json:"operator,omitempty"`
	Value         *string `json:"value,omitempty"`
	CaseSensitive *bool   `json:"case_sensitive,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	Priority      *int    `json:"priority,omitempty"`
	Enabled       *bool   `json:"enabled,omitempty"`
}

// RunMatchRequest is the body for POST /api/match/run.
type RunMatchRequest struct {
	UserID          string `json:"user_id"`
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	MaxTransactions int    `json:"max_transactions,omitempty"`
	DryRun          bool   `json:"dry_run,omitempty"`
}

// ConfirmReviewRequest picks a candidate when confirming a review item.
type ConfirmReviewRequest struct {
	TemplateID   string `json:"template_id"`
	ExpectedDate string `json:"expected_date"`
}

// LinkTransactionRequest manually links a transaction to an occurrence.
type LinkTransactionRequest struct {
	TemplateID   string `json:"template_id"`
	ExpectedDate string `json:"expected_date"`
}

// ScanTransfersRequest is the body for POST /api/transfers/scan.
type ScanTransfersRequest struct {
	UserID string `json:"user_id"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// TransferDecisionRequest confirms or dismisses a detected pair.
type TransferDecisionRequest struct {
	UserID     string `json:"user_id"`
	OutTxID    string `json:"out_tx_id"`
	InTxID     string `json:"in_tx_id"`
	Confidence int    `json:"confidence,omitempty"`
}
