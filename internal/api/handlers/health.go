package handlers

import (
	"net/http"

	"github.com/finwell/planmatch/internal/api/dto"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	*Base
}

func NewHealthHandler(base *Base) *HealthHandler {
	return &HealthHandler{Base: base}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse())
}
