package handlers

import (
	"net/http"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/validation"
)

// SettingsHandler exposes the company billing defaults.
type SettingsHandler struct {
	docs *services.DocumentService
}

func NewSettingsHandler(docs *services.DocumentService) *SettingsHandler {
	return &SettingsHandler{docs: docs}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.docs.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var s pricing.Settings
	if err := httpx.DecodeJSON(r, &s); err != nil {
		badRequest(w, err)
		return
	}
	v := make(validation.Violations)
	validation.RangeFloat("default_vat_rate", s.DefaultVATRate, 0, 100, v)
	validation.Required("currency_symbol", s.CurrencySymbol, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	if err := h.docs.UpdateSettings(r.Context(), s); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}
