package pricing

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// PricingSource is where a line's price comes from: a catalog reference or a manual amount.
// The interface is sealed; the only implementations are CatalogRef and ManualPrice.
type PricingSource interface {
	pricingSource()
}

// CatalogRef prices a line from the referenced catalog item.
type CatalogRef struct {
	ID string
}

// ManualPrice prices a line from an explicit unit price.
type ManualPrice struct {
	Amount float64
}

func (CatalogRef) pricingSource()  {}
func (ManualPrice) pricingSource() {}

// DiscountType selects how Discount.Value is interpreted.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// ParseDiscountType accepts "fixed", "percentage" (or "percent") and the empty string.
func ParseDiscountType(s string) (DiscountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "fixed", "amount":
		return DiscountFixed, nil
	case "percentage", "percent":
		return DiscountPercentage, nil
	}
	return "", ErrUnknownDiscountType
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DiscountType) UnmarshalText(b []byte) error {
	parsed, err := ParseDiscountType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Discount is a per-line reduction applied to the base price.
type Discount struct {
	Type  DiscountType `json:"type,omitempty"`
	Value float64      `json:"value,omitempty"`
}

// Amount returns how much the discount takes off base. The result is not capped,
// so a fixed discount larger than base drives the line negative.
func (d Discount) Amount(base float64) float64 {
	switch d.Type {
	case DiscountFixed:
		return d.Value
	case DiscountPercentage:
		return base * d.Value / 100
	}
	return 0
}

// LineItem is one row of a document.
type LineItem struct {
	ID          string
	Source      PricingSource
	Description string
	Quantity    float64

	// Length and Width are only read for measured catalog items. Nil counts as 0.
	Length *float64
	Width  *float64
	Unit   MeasureUnit

	SelectedAddOnIDs []string

	// VATRate is a percentage, e.g. 20 for 20 %.
	VATRate  float64
	Discount Discount
}

// CatalogItemID returns the referenced catalog item id, or "" for manual lines.
func (l LineItem) CatalogItemID() string {
	if ref, ok := l.Source.(CatalogRef); ok {
		return ref.ID
	}
	return ""
}

// Clone returns a deep copy of l.
func (l LineItem) Clone() LineItem {
	c := l
	if l.Length != nil {
		v := *l.Length
		c.Length = &v
	}
	if l.Width != nil {
		v := *l.Width
		c.Width = &v
	}
	if l.SelectedAddOnIDs != nil {
		c.SelectedAddOnIDs = append([]string(nil), l.SelectedAddOnIDs...)
	}
	return c
}

// NewManualLine returns an empty manual line with quantity 1 and the default VAT rate.
func NewManualLine(settings Settings) LineItem {
	return LineItem{
		ID:       uuid.NewString(),
		Source:   ManualPrice{},
		Quantity: 1,
		VATRate:  settings.DefaultVATRate,
	}
}

// NewCatalogLine returns a line referencing item. The VAT rate comes from the item
// when it carries one, otherwise from settings.
func NewCatalogLine(item CatalogItem, settings Settings) LineItem {
	rate := settings.DefaultVATRate
	if item.DefaultVATRate != nil {
		rate = *item.DefaultVATRate
	}
	return LineItem{
		ID:          uuid.NewString(),
		Source:      CatalogRef{ID: item.ID},
		Description: item.Name,
		Quantity:    1,
		VATRate:     rate,
	}
}

type lineJSON struct {
	ID            string      `json:"id,omitempty"`
	CatalogItemID string      `json:"catalog_item_id,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	Description   string      `json:"description,omitempty"`
	Quantity      float64     `json:"quantity"`
	Length        *float64    `json:"length,omitempty"`
	Width         *float64    `json:"width,omitempty"`
	Unit          MeasureUnit `json:"unit,omitempty"`
	AddOnIDs      []string    `json:"add_on_ids,omitempty"`
	VATRate       float64     `json:"vat_rate"`
	Discount      Discount    `json:"discount"`
}

// MarshalJSON flattens the pricing source into catalog_item_id or price.
func (l LineItem) MarshalJSON() ([]byte, error) {
	out := lineJSON{
		ID:          l.ID,
		Description: l.Description,
		Quantity:    l.Quantity,
		Length:      l.Length,
		Width:       l.Width,
		Unit:        l.Unit,
		AddOnIDs:    l.SelectedAddOnIDs,
		VATRate:     l.VATRate,
		Discount:    l.Discount,
	}
	switch src := l.Source.(type) {
	case CatalogRef:
		out.CatalogItemID = src.ID
	case ManualPrice:
		amount := src.Amount
		out.Price = &amount
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat form. A catalog_item_id wins over price so that only
// one pricing source is ever active.
func (l *LineItem) UnmarshalJSON(b []byte) error {
	var in lineJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*l = LineItem{
		ID:               in.ID,
		Description:      in.Description,
		Quantity:         in.Quantity,
		Length:           in.Length,
		Width:            in.Width,
		Unit:             in.Unit,
		SelectedAddOnIDs: in.AddOnIDs,
		VATRate:          in.VATRate,
		Discount:         in.Discount,
	}
	switch {
	case in.CatalogItemID != "":
		l.Source = CatalogRef{ID: in.CatalogItemID}
	case in.Price != nil:
		l.Source = ManualPrice{Amount: *in.Price}
	}
	return nil
}
