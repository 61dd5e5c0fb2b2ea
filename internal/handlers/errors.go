// Package handlers exposes the billing services as a JSON API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/validation"
)

// writeError maps service and engine errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var catErr *pricing.CatalogError
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrDocumentFinal):
		httpx.JSONError(w, http.StatusConflict, "document_final", nil)
	case errors.Is(err, services.ErrNotFinal):
		httpx.JSONError(w, http.StatusConflict, "document_not_final", nil)
	case errors.Is(err, services.ErrNotInvoice),
		errors.Is(err, services.ErrNotCreditNote),
		errors.Is(err, services.ErrNotQuote):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "wrong_document_kind", err.Error())
	case errors.Is(err, services.ErrCreditExceeded):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "credit_exceeded", nil)
	case errors.Is(err, services.ErrEmptyDocument):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "empty_document", nil)
	case errors.Is(err, services.ErrInvalidKind):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"kind": "unknown"})
	case errors.Is(err, services.ErrInvalidAmount):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"amount": "must_be_positive"})
	case errors.As(err, &catErr):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_catalog_item", catErr.Error())
	default:
		log := logger.WithComponent("http")
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
}

func invalid(w http.ResponseWriter, v validation.Violations) {
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
}

// pathID parses the {name} path value as a document id.
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
