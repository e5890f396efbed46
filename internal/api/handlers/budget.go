package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finwell/planmatch/internal/api/dto"
	"github.com/finwell/planmatch/internal/application/budget"
)

// BudgetHandler reports budget status for budget templates.
type BudgetHandler struct {
	*Base
	service *budget.Service
}

func NewBudgetHandler(base *Base, service *budget.Service) *BudgetHandler {
	return &BudgetHandler{Base: base, service: service}
}

// Status reports the period containing ?on= (defaulting to today in the
// user's timezone).
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	on, err := ParseDateParam(r, "on")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid on date"))
		return
	}

	report, err := h.service.Status(chi.URLParam(r, "id"), on)
	if err != nil {
		h.WriteDomainError(w, "budget", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewBudgetStatusResponse(*report))
}
