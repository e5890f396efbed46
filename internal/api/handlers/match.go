package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finwell/planmatch/internal/api/dto"
	"github.com/finwell/planmatch/internal/application/automatch"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// MatchHandler runs auto-match batches and manages the match lifecycle:
// the review queue, manual links and unmatching.
type MatchHandler struct {
	*Base
	orchestrator *automatch.Orchestrator
	repo         storage.Repository
}

func NewMatchHandler(base *Base, o *automatch.Orchestrator, repo storage.Repository) *MatchHandler {
	return &MatchHandler{Base: base, orchestrator: o, repo: repo}
}

func (h *MatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunMatchRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}

	opts := automatch.Options{
		MaxTransactions: req.MaxTransactions,
		DryRun:          req.DryRun,
	}
	var err error
	if req.From != "" {
		if opts.From, err = plan.ParseDate(req.From); err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid from date"))
			return
		}
	}
	if req.To != "" {
		if opts.To, err = plan.ParseDate(req.To); err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid to date"))
			return
		}
	}

	summary, err := h.orchestrator.Run(req.UserID, opts)
	if err != nil {
		h.WriteDomainError(w, "user", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewMatchRunResponse(*summary))
}

func (h *MatchHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}
	items, err := h.repo.ListReviews(userID, storage.ReviewPending)
	if err != nil {
		h.WriteDomainError(w, "reviews", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewReviewListResponse(items))
}

func (h *MatchHandler) ConfirmReview(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmReviewRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	expectedDate, err := plan.ParseDate(req.ExpectedDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid expected_date"))
		return
	}
	if err := h.orchestrator.ConfirmReview(chi.URLParam(r, "id"), req.TemplateID, expectedDate); err != nil {
		h.WriteDomainError(w, "review", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "review confirmed"})
}

func (h *MatchHandler) DismissReview(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.DismissReview(chi.URLParam(r, "id")); err != nil {
		h.WriteDomainError(w, "review", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "review dismissed"})
}

// Link manually attaches a transaction to an occurrence, replacing any
// existing match.
func (h *MatchHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkTransactionRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	expectedDate, err := plan.ParseDate(req.ExpectedDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid expected_date"))
		return
	}
	if err := h.orchestrator.ManualLink(chi.URLParam(r, "id"), req.TemplateID, expectedDate); err != nil {
		h.WriteDomainError(w, "transaction", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "transaction linked"})
}

func (h *MatchHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Unmatch(chi.URLParam(r, "id")); err != nil {
		h.WriteDomainError(w, "match", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "match removed"})
}
