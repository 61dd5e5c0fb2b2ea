package handlers

import (
	"net/http"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/validation"
)

type TotalsHandler struct {
	docs *services.DocumentService
}

func NewTotalsHandler(docs *services.DocumentService) *TotalsHandler {
	return &TotalsHandler{docs: docs}
}

type previewRequest struct {
	TaxMode pricing.TaxMode    `json:"tax_mode"`
	Lines   []pricing.LineItem `json:"lines"`
}

type previewResponse struct {
	services.Preview
	Display displayTotals `json:"display"`
}

// Preview computes a breakdown for unsaved lines.
func (h *TotalsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.TaxMode == "" {
		req.TaxMode = pricing.TaxExclusive
	}
	v := make(validation.Violations)
	validateLines(req.Lines, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}

	preview, err := h.docs.Preview(r.Context(), req.Lines, req.TaxMode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	settings, err := h.docs.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, previewResponse{Preview: preview, Display: display(preview.Totals, settings)})
}
