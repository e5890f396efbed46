package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finwell/planmatch/internal/api/dto"
	"github.com/finwell/planmatch/internal/application/templates"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// TemplatesHandler exposes template CRUD, occurrence expansion and
// per-occurrence skip/revert.
type TemplatesHandler struct {
	*Base
	service *templates.Service
	repo    storage.Repository
}

func NewTemplatesHandler(base *Base, service *templates.Service, repo storage.Repository) *TemplatesHandler {
	return &TemplatesHandler{Base: base, service: service, repo: repo}
}

func (h *TemplatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTemplateRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	t, err := templateFromRequest(&req)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if err := h.service.Create(t); err != nil {
		h.WriteDomainError(w, "template", err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, dto.NewTemplateResponse(*t))
}

func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}
	activeOnly := ParseBoolParam(r, "active_only")

	list, err := h.repo.ListTemplates(userID, activeOnly)
	if err != nil {
		h.WriteDomainError(w, "templates", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewTemplateListResponse(list))
}

func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetTemplate(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteDomainError(w, "template", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewTemplateResponse(*t))
}

// Edit applies changes under the scope given by ?scope= (THIS_ONLY,
// THIS_AND_FUTURE or ALL, defaulting to ALL).
func (h *TemplatesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req dto.EditTemplateRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	scope := templates.EditScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = templates.ScopeAll
	}

	var cut plan.Date
	if req.ExpectedDate != "" {
		var err error
		cut, err = plan.ParseDate(req.ExpectedDate)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid expected_date"))
			return
		}
	}

	changes, err := changesFromRequest(&req)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	t, err := h.service.Edit(chi.URLParam(r, "id"), scope, cut, changes)
	if err != nil {
		h.WriteDomainError(w, "template", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewTemplateResponse(*t))
}

// Delete removes a template. When occurrences of it have matched
// transactions, the delete is refused unless ?cascade=true.
func (h *TemplatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cascade := ParseBoolParam(r, "cascade")
	if err := h.service.Delete(chi.URLParam(r, "id"), cascade); err != nil {
		h.WriteDomainError(w, "template", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "template deleted"})
}

func (h *TemplatesHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	from, err := ParseDateParam(r, "from")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid from date"))
		return
	}
	to, err := ParseDateParam(r, "to")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid to date"))
		return
	}
	if from.IsZero() || to.IsZero() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("from and to are required"))
		return
	}

	occs, err := h.service.Occurrences(chi.URLParam(r, "id"), from, to)
	if err != nil {
		h.WriteDomainError(w, "template", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewOccurrenceListResponse(occs))
}

func (h *TemplatesHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req dto.SkipOccurrenceRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	date, err := plan.ParseDate(req.ExpectedDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid expected_date"))
		return
	}
	if err := h.service.SkipOccurrence(chi.URLParam(r, "id"), date); err != nil {
		h.WriteDomainError(w, "occurrence", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "occurrence skipped"})
}

func (h *TemplatesHandler) Revert(w http.ResponseWriter, r *http.Request) {
	var req dto.SkipOccurrenceRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	date, err := plan.ParseDate(req.ExpectedDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid expected_date"))
		return
	}
	if err := h.service.RevertOccurrence(chi.URLParam(r, "id"), date); err != nil {
		h.WriteDomainError(w, "occurrence", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "occurrence reverted"})
}

func templateFromRequest(req *dto.CreateTemplateRequest) (*plan.Template, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, &plan.ValidationError{Field: "amount", Msg: "invalid decimal"}
	}
	firstDate, err := plan.ParseDate(req.FirstDate)
	if err != nil {
		return nil, &plan.ValidationError{Field: "first_date", Msg: "invalid date"}
	}

	t := &plan.Template{
		UserID:     req.UserID,
		Kind:       plan.TemplateKind(req.Kind),
		Name:       req.Name,
		Amount:     amount,
		CategoryID: req.CategoryID,
		AccountID:  req.AccountID,
		Period:     plan.PeriodKind(req.PeriodKind),
		Interval:   req.Interval,
		FirstDate:  firstDate,
		SpendMode:  plan.ImplicitSpendMode(req.SpendMode),
		Active:     true,
	}
	if req.EndDate != "" {
		end, err := plan.ParseDate(req.EndDate)
		if err != nil {
			return nil, &plan.ValidationError{Field: "end_date", Msg: "invalid date"}
		}
		t.EndDate = &end
	}
	if req.DayRule != nil {
		t.DayRule = &plan.DayRule{
			Kind:    plan.DayRuleKind(req.DayRule.Kind),
			Day:     req.DayRule.Day,
			Weekday: time.Weekday(req.DayRule.Weekday),
		}
	}
	if req.Policy != nil {
		policy, err := policyFromRequest(req.Policy)
		if err != nil {
			return nil, err
		}
		t.Policy = *policy
	}
	return t, nil
}

func policyFromRequest(req *dto.MatchPolicyRequest) (*plan.MatchPolicy, error) {
	p := &plan.MatchPolicy{
		AutoMatchEnabled: req.AutoMatchEnabled,
		MatchWindowDays:  req.MatchWindowDays,
		SkipReview:       req.SkipReview,
	}
	if req.AmountTolerance != nil {
		tol, err := decimal.NewFromString(*req.AmountTolerance)
		if err != nil {
			return nil, &plan.ValidationError{Field: "amount_tolerance", Msg: "invalid decimal"}
		}
		p.AmountTolerance = &tol
	}
	return p, nil
}

func changesFromRequest(req *dto.EditTemplateRequest) (templates.Changes, error) {
	c := templates.Changes{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Active:     req.Active,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return c, &plan.ValidationError{Field: "amount", Msg: "invalid decimal"}
		}
		c.Amount = &amount
	}
	if req.Policy != nil {
		policy, err := policyFromRequest(req.Policy)
		if err != nil {
			return c, err
		}
		c.Policy = policy
	}
	if req.NewDate != nil {
		d, err := plan.ParseDate(*req.NewDate)
		if err != nil {
			return c, &plan.ValidationError{Field: "new_date", Msg: "invalid date"}
		}
		c.NewDate = &d
	}
	return c, nil
}
