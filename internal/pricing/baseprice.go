package pricing

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ResolveBasePrice returns the pre-discount, pre-tax amount of line.
//
// A nil item means a manual line: the ManualPrice amount (0 when absent) times quantity.
// Fixed items charge UnitPrice per unit. Measured items charge Rate per unit of
// length × width; a missing dimension counts as 0. The line's unit tag is not converted.
// Selected add-ons available on the item or its parent add their price per unit.
func ResolveBasePrice(item *CatalogItem, line LineItem, catalog Catalog) float64 {
	qty := line.Quantity
	if item == nil {
		var price float64
		if mp, ok := line.Source.(ManualPrice); ok {
			price = mp.Amount
		}
		return price * qty
	}

	var base float64
	switch item.Kind {
	case PricingFixed:
		base = item.UnitPrice * qty
	case PricingMeasured:
		area := deref(line.Length) * deref(line.Width)
		base = item.Rate * area * qty
	}
	return base + addOnsTotal(*item, catalog, line.SelectedAddOnIDs)*qty
}

// BasePrice resolves line's pricing source against catalog and returns its base price.
// A catalog reference that no longer resolves contributes 0.
func BasePrice(line LineItem, catalog Catalog) float64 {
	switch src := line.Source.(type) {
	case CatalogRef:
		if catalog == nil {
			return 0
		}
		item, ok := catalog.Lookup(src.ID)
		if !ok {
			return 0
		}
		return ResolveBasePrice(&item, line, catalog)
	case ManualPrice:
		return ResolveBasePrice(nil, line, catalog)
	}
	// no source: a manual line that has no price yet
	return 0
}
