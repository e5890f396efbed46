package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finwell/planmatch/internal/api/dto"
	"github.com/finwell/planmatch/internal/domain/plan"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// Base provides shared helpers for all handlers.
type Base struct {
	Logger *slog.Logger
}

func NewBase(logger *slog.Logger) *Base {
	return &Base{Logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.Logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a standard error response.
func (b *Base) WriteError(w http.ResponseWriter, status int, resp dto.ErrorResponse) {
	b.WriteJSON(w, status, resp)
}

// WriteDomainError maps domain and storage errors onto HTTP status codes.
func (b *Base) WriteDomainError(w http.ResponseWriter, resource string, err error) {
	var verr *plan.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError(resource))
	case errors.Is(err, storage.ErrConflict):
		b.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
	case errors.As(err, &verr):
		b.WriteError(w, http.StatusUnprocessableEntity, dto.ValidationError(verr.Error()))
	default:
		b.Logger.Error("request failed", "resource", resource, "error", err)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// DecodeJSON decodes the request body into v, reporting a 400 on failure.
func (b *Base) DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return false
	}
	return true
}

// ParseDateParam parses an optional ISO date query parameter. A missing
// parameter yields the zero date without error.
func ParseDateParam(r *http.Request, name string) (plan.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return plan.Date{}, nil
	}
	return plan.ParseDate(raw)
}

// ParseBoolParam parses an optional boolean query parameter, defaulting
// to false when absent or malformed.
func ParseBoolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return false
	}
	return v
}

// ParseIntParam parses an optional integer query parameter, returning
// the fallback when absent or malformed.
func ParseIntParam(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}
