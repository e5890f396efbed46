package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finwell/planmatch/internal/api/dto"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/rules"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// RulesHandler manages categorization rules. Every write invalidates
// the user's cached rule set so the next match run sees fresh rules.
type RulesHandler struct {
	*Base
	repo  storage.Repository
	cache *rules.Cache
}

func NewRulesHandler(base *Base, repo storage.Repository, cache *rules.Cache) *RulesHandler {
	return &RulesHandler{Base: base, repo: repo, cache: cache}
}

func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRuleRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	rule := plan.Rule{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Field:         plan.RuleField(req.Field),
		Operator:      plan.RuleOperator(req.Operator),
		Value:         req.Value,
		CaseSensitive: req.CaseSensitive,
		CategoryID:    req.CategoryID,
		Priority:      req.Priority,
		Enabled:       true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := plan.ValidateRule(&rule); err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}
	if err := h.repo.CreateRule(&rule); err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}
	h.cache.Invalidate(rule.UserID)
	h.WriteJSON(w, http.StatusCreated, dto.NewRuleResponse(rule))
}

func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}
	list, err := h.repo.ListRules(userID)
	if err != nil {
		h.WriteDomainError(w, "rules", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewRuleListResponse(list))
}

func (h *RulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRuleRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	rule, err := h.repo.GetRule(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}

	if req.Field != nil {
		rule.Field = plan.RuleField(*req.Field)
	}
	if req.Operator != nil {
		rule.Operator = plan.RuleOperator(*req.Operator)
	}
	if req.Value != nil {
		rule.Value = *req.Value
	}
	if req.CaseSensitive != nil {
		rule.CaseSensitive = *req.CaseSensitive
	}
	if req.CategoryID != nil {
		rule.CategoryID = *req.CategoryID
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := plan.ValidateRule(rule); err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}
	if err := h.repo.UpdateRule(rule); err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}
	h.cache.Invalidate(rule.UserID)
	h.WriteJSON(w, http.StatusOK, dto.NewRuleResponse(*rule))
}

func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rule, err := h.repo.GetRule(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}
	if err := h.repo.DeleteRule(rule.ID); err != nil {
		h.WriteDomainError(w, "rule", err)
		return
	}
	h.cache.Invalidate(rule.UserID)
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "rule deleted"})
}
