package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/diewo77/go-billing/internal/pricing"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("models: cannot scan %T into StringList", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		out = nil
	}
	*s = out
	return nil
}

// DocumentLine is one persisted row of a document.
// Exactly one of CatalogItemID and Price is set; a line with neither is a manual line without a price.
type DocumentLine struct {
	ID         uint `gorm:"primaryKey" json:"-"`
	DocumentID uint `gorm:"not null;uniqueIndex:idx_document_line" json:"document_id"`
	// LineID is the engine line id, unique within a document.
	LineID   string `gorm:"size:36;not null;uniqueIndex:idx_document_line" json:"id"`
	Position int    `gorm:"default:0" json:"position"`

	CatalogItemID *string  `gorm:"size:36;index" json:"catalog_item_id,omitempty"`
	Price         *float64 `json:"price,omitempty"`

	Description string              `gorm:"size:500" json:"description"`
	Quantity    float64             `gorm:"not null" json:"quantity"`
	Length      *float64            `json:"length,omitempty"`
	Width       *float64            `json:"width,omitempty"`
	Unit        pricing.MeasureUnit `gorm:"size:10" json:"unit,omitempty"`
	AddOnIDs    StringList          `gorm:"type:text" json:"add_on_ids,omitempty"`

	VATRate       float64              `gorm:"not null;default:0" json:"vat_rate"`
	DiscountType  pricing.DiscountType `gorm:"size:20" json:"discount_type,omitempty"`
	DiscountValue float64              `gorm:"default:0" json:"discount_value,omitempty"`
}

// ToPricing converts the row into an engine line item.
func (l *DocumentLine) ToPricing() pricing.LineItem {
	item := pricing.LineItem{
		ID:          l.LineID,
		Description: l.Description,
		Quantity:    l.Quantity,
		Length:      l.Length,
		Width:       l.Width,
		Unit:        l.Unit,
		VATRate:     l.VATRate,
		Discount:    pricing.Discount{Type: l.DiscountType, Value: l.DiscountValue},
	}
	if len(l.AddOnIDs) > 0 {
		item.SelectedAddOnIDs = append([]string(nil), l.AddOnIDs...)
	}
	switch {
	case l.CatalogItemID != nil:
		item.Source = pricing.CatalogRef{ID: *l.CatalogItemID}
	case l.Price != nil:
		item.Source = pricing.ManualPrice{Amount: *l.Price}
	}
	return item.Clone()
}

// LineFromPricing builds the row for item at position pos of document docID.
func LineFromPricing(docID uint, pos int, item pricing.LineItem) DocumentLine {
	item = item.Clone()
	row := DocumentLine{
		DocumentID:    docID,
		LineID:        item.ID,
		Position:      pos,
		Description:   item.Description,
		Quantity:      item.Quantity,
		Length:        item.Length,
		Width:         item.Width,
		Unit:          item.Unit,
		AddOnIDs:      StringList(item.SelectedAddOnIDs),
		VATRate:       item.VATRate,
		DiscountType:  item.Discount.Type,
		DiscountValue: item.Discount.Value,
	}
	switch src := item.Source.(type) {
	case pricing.CatalogRef:
		id := src.ID
		row.CatalogItemID = &id
	case pricing.ManualPrice:
		amount := src.Amount
		row.Price = &amount
	}
	return row
}
