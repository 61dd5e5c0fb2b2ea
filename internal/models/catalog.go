package models

import (
	"time"

	"github.com/diewo77/go-billing/internal/pricing"
)

// CatalogItem is a product or service that document lines can reference.
type CatalogItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string              `gorm:"size:255;not null" json:"name"`
	Kind      pricing.PricingKind `gorm:"size:20;not null;default:'fixed'" json:"kind"`
	UnitPrice float64             `gorm:"not null;default:0" json:"unit_price"`
	Rate      float64             `gorm:"not null;default:0" json:"rate"`
	Unit      pricing.MeasureUnit `gorm:"size:10" json:"unit,omitempty"`

	DefaultVATRate *float64 `json:"default_vat_rate,omitempty"`

	// ParentID points at the item this one is a variant of.
	ParentID *string `gorm:"size:36;index" json:"parent_id,omitempty"`

	AddOns []CatalogAddOn `gorm:"foreignKey:CatalogItemID;constraint:OnDelete:CASCADE" json:"add_ons,omitempty"`
}

// CatalogAddOn is an optional extra offered with a catalog item.
type CatalogAddOn struct {
	ID            string  `gorm:"primaryKey;size:36" json:"id"`
	CatalogItemID string  `gorm:"size:36;index;not null" json:"catalog_item_id"`
	Name          string  `gorm:"size:255;not null" json:"name"`
	Price         float64 `gorm:"not null" json:"price"`
	Position      int     `gorm:"default:0" json:"position"`
}

// ToPricing converts the row and its preloaded add-ons into an engine catalog item.
func (c *CatalogItem) ToPricing() pricing.CatalogItem {
	item := pricing.CatalogItem{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind,
		UnitPrice: c.UnitPrice,
		Rate:      c.Rate,
		Unit:      c.Unit,
	}
	if c.DefaultVATRate != nil {
		v := *c.DefaultVATRate
		item.DefaultVATRate = &v
	}
	if c.ParentID != nil {
		item.ParentID = *c.ParentID
	}
	for _, a := range c.AddOns {
		item.AddOns = append(item.AddOns, pricing.AddOnOption{ID: a.ID, Name: a.Name, Price: a.Price})
	}
	return item
}

// CatalogItemFromPricing builds a row from an engine catalog item.
func CatalogItemFromPricing(item pricing.CatalogItem) CatalogItem {
	row := CatalogItem{
		ID:             item.ID,
		Name:           item.Name,
		Kind:           item.Kind,
		UnitPrice:      item.UnitPrice,
		Rate:           item.Rate,
		Unit:           item.Unit,
		DefaultVATRate: item.DefaultVATRate,
	}
	if item.ParentID != "" {
		parent := item.ParentID
		row.ParentID = &parent
	}
	for i, a := range item.AddOns {
		row.AddOns = append(row.AddOns, CatalogAddOn{
			ID:            a.ID,
			CatalogItemID: item.ID,
			Name:          a.Name,
			Price:         a.Price,
			Position:      i,
		})
	}
	return row
}
