package handlers

import (
	"net/http"

	"github.com/finwell/planmatch/internal/api/dto"
	"github.com/finwell/planmatch/internal/application/transfers"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/domain/transfer"
)

// TransfersHandler exposes transfer detection and pair decisions.
type TransfersHandler struct {
	*Base
	service *transfers.Service
}

func NewTransfersHandler(base *Base, service *transfers.Service) *TransfersHandler {
	return &TransfersHandler{Base: base, service: service}
}

func (h *TransfersHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req dto.ScanTransfersRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}

	var opts transfers.ScanOptions
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

	candidates, err := h.service.Scan(req.UserID, opts)
	if err != nil {
		h.WriteDomainError(w, "user", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewTransferScanResponse(candidates))
}

func (h *TransfersHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}
	c := transfer.Candidate{
		OutTx:      plan.Transaction{ID: req.OutTxID},
		InTx:       plan.Transaction{ID: req.InTxID},
		Confidence: req.Confidence,
	}
	if err := h.service.Confirm(req.UserID, c); err != nil {
		h.WriteDomainError(w, "transfer pair", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "transfer confirmed"})
}

func (h *TransfersHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}
	if err := h.service.Dismiss(req.UserID, req.OutTxID, req.InTxID, req.Confidence); err != nil {
		h.WriteDomainError(w, "transfer pair", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "transfer dismissed"})
}

func (h *TransfersHandler) decodeDecision(w http.ResponseWriter, r *http.Request) (*dto.TransferDecisionRequest, bool) {
	var req dto.TransferDecisionRequest
	if !h.DecodeJSON(w, r, &req) {
		return nil, false
	}
	if req.UserID == "" || req.OutTxID == "" || req.InTxID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id, out_tx_id and in_tx_id are required"))
		return nil, false
	}
	return &req, true
}
