// Package pricing turns document line items into subtotals, tax and grand totals,
// and reconciles invoice totals against payments and credit-note applications.
//
// Every function in this package is a pure computation over the values it is given:
// nothing is cached, nothing is read from shared state and inputs are never mutated.
package pricing

// PricingKind tells how a catalog item is priced.
type PricingKind string

const (
	// PricingFixed items have a flat unit price.
	PricingFixed PricingKind = "fixed"
	// PricingMeasured items are priced per unit of area or length.
	PricingMeasured PricingKind = "measured"
)

// MeasureUnit is the unit a measured item's rate applies to.
type MeasureUnit string

const (
	UnitSquareMetre      MeasureUnit = "m2"
	UnitSquareCentimetre MeasureUnit = "cm2"
	UnitSquareFoot       MeasureUnit = "ft2"
	UnitMetre            MeasureUnit = "m"
	UnitFoot             MeasureUnit = "ft"
)

// Valid reports whether u is a recognized measurement unit.
func (u MeasureUnit) Valid() bool {
	switch u {
	case UnitSquareMetre, UnitSquareCentimetre, UnitSquareFoot, UnitMetre, UnitFoot:
		return true
	}
	return false
}

// AddOnOption is a flat per-unit extra that can be selected on a line.
type AddOnOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CatalogItem is a sellable item a line can reference.
type CatalogItem struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Kind PricingKind `json:"kind"`

	// UnitPrice is used by fixed items.
	UnitPrice float64 `json:"unit_price,omitempty"`

	// Rate and Unit are used by measured items.
	Rate float64     `json:"rate,omitempty"`
	Unit MeasureUnit `json:"unit,omitempty"`

	// DefaultVATRate, in percent, seeds new lines created from this item.
	DefaultVATRate *float64 `json:"default_vat_rate,omitempty"`

	// ParentID links a variant to the item whose add-ons it inherits.
	ParentID string        `json:"parent_id,omitempty"`
	AddOns   []AddOnOption `json:"add_ons,omitempty"`
}

// Validate checks the measured-item invariant: a positive rate and a recognized unit.
func (c CatalogItem) Validate() error {
	switch c.Kind {
	case PricingFixed:
		return nil
	case PricingMeasured:
		if c.Rate <= 0 {
			return &CatalogError{ItemID: c.ID, Err: ErrInvalidRate}
		}
		if !c.Unit.Valid() {
			return &CatalogError{ItemID: c.ID, Err: ErrUnknownUnit}
		}
		return nil
	default:
		return &CatalogError{ItemID: c.ID, Err: ErrUnknownPricingKind}
	}
}

// Catalog resolves catalog item ids.
type Catalog interface {
	Lookup(id string) (CatalogItem, bool)
}

// CatalogMap is an in-memory Catalog keyed by item id.
type CatalogMap map[string]CatalogItem

// Lookup implements Catalog. A nil map resolves nothing.
func (m CatalogMap) Lookup(id string) (CatalogItem, bool) {
	item, ok := m[id]
	return item, ok
}

// NewCatalogMap indexes items by id. Later duplicates replace earlier ones.
func NewCatalogMap(items ...CatalogItem) CatalogMap {
	m := make(CatalogMap, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}
