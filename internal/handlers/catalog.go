package handlers

import (
	"net/http"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/store"
	"github.com/diewo77/go-billing/validation"
)

type CatalogHandler struct {
	store *store.Store
}

func NewCatalogHandler(st *store.Store) *CatalogHandler {
	return &CatalogHandler{store: st}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListCatalogItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *CatalogHandler) View(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetCatalogItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Save creates an item, or replaces it when the path carries an id.
func (h *CatalogHandler) Save(w http.ResponseWriter, r *http.Request) {
	var item pricing.CatalogItem
	if err := httpx.DecodeJSON(r, &item); err != nil {
		badRequest(w, err)
		return
	}
	status := http.StatusCreated
	if id := r.PathValue("id"); id != "" {
		if _, err := h.store.GetCatalogItem(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		item.ID = id
		status = http.StatusOK
	}
	if item.Kind == "" {
		item.Kind = pricing.PricingFixed
	}

	v := make(validation.Violations)
	validation.Required("name", item.Name, v)
	validation.NonNegativeFloat("unit_price", item.UnitPrice, v)
	if item.DefaultVATRate != nil {
		validation.RangeFloat("default_vat_rate", *item.DefaultVATRate, 0, 100, v)
	}
	for _, a := range item.AddOns {
		validation.Required("add_ons.name", a.Name, v)
		validation.NonNegativeFloat("add_ons.price", a.Price, v)
	}
	if !v.Empty() {
		invalid(w, v)
		return
	}

	saved, err := h.store.SaveCatalogItem(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, status, saved)
}

// AddOns lists the add-ons selectable on lines referencing the item, parent's included.
func (h *CatalogHandler) AddOns(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetCatalogItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	catalog := pricing.NewCatalogMap(item)
	if item.ParentID != "" {
		if parent, err := h.store.GetCatalogItem(r.Context(), item.ParentID); err == nil {
			catalog[parent.ID] = parent
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"add_ons": pricing.AvailableAddOns(item, catalog)})
}
