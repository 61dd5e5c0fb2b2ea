package pricing

import "strings"

// TaxMode is the document-wide VAT policy.
type TaxMode string

const (
	// TaxExclusive adds VAT on top of line prices.
	TaxExclusive TaxMode = "exclusive"
	// TaxInclusive treats line prices as already containing VAT.
	TaxInclusive TaxMode = "inclusive"
	// TaxNone applies no VAT at all.
	TaxNone TaxMode = "none"
)

// ParseTaxMode parses a tax mode name, case-insensitively.
func ParseTaxMode(s string) (TaxMode, error) {
	switch TaxMode(strings.ToLower(strings.TrimSpace(s))) {
	case TaxExclusive:
		return TaxExclusive, nil
	case TaxInclusive:
		return TaxInclusive, nil
	case TaxNone:
		return TaxNone, nil
	}
	return "", ErrUnknownTaxMode
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *TaxMode) UnmarshalText(b []byte) error {
	parsed, err := ParseTaxMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Taxed reports whether the mode applies VAT.
func (m TaxMode) Taxed() bool {
	return m == TaxExclusive || m == TaxInclusive
}

// Totals is the document aggregate.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxTotal   float64 `json:"tax_total"`
	GrandTotal float64 `json:"grand_total"`
}

// Add returns the component-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Subtotal:   t.Subtotal + o.Subtotal,
		TaxTotal:   t.TaxTotal + o.TaxTotal,
		GrandTotal: t.GrandTotal + o.GrandTotal,
	}
}

// LineBreakdown shows how one line reaches its contribution to the totals.
type LineBreakdown struct {
	LineID             string  `json:"line_id"`
	BasePrice          float64 `json:"base_price"`
	DiscountAmount     float64 `json:"discount_amount"`
	PriceAfterDiscount float64 `json:"price_after_discount"`
	// Net is the line's contribution to the subtotal.
	Net   float64 `json:"net"`
	Tax   float64 `json:"tax"`
	Total float64 `json:"total"`
}

// Totals returns the line's contribution as a Totals value.
func (b LineBreakdown) Totals() Totals {
	return Totals{Subtotal: b.Net, TaxTotal: b.Tax, GrandTotal: b.Total}
}

// ComputeLine prices a single line under mode.
func ComputeLine(line LineItem, catalog Catalog, mode TaxMode) LineBreakdown {
	base := BasePrice(line, catalog)
	discount := line.Discount.Amount(base)
	p := base - discount

	b := LineBreakdown{
		LineID:             line.ID,
		BasePrice:          base,
		DiscountAmount:     discount,
		PriceAfterDiscount: p,
	}
	rate := line.VATRate / 100
	switch mode {
	case TaxExclusive:
		b.Net = p
		b.Tax = p * rate
		b.Total = p + b.Tax
	case TaxInclusive:
		b.Net = p / (1 + rate)
		b.Tax = p - b.Net
		b.Total = p
	default:
		// none: the stored rate is ignored, not cleared
		b.Net = p
		b.Total = p
	}
	return b
}

// ComputeTotals aggregates subtotal, tax and grand total for lines, in input order,
// keeping full precision.
func ComputeTotals(lines []LineItem, catalog Catalog, mode TaxMode) Totals {
	var t Totals
	for _, line := range lines {
		t = t.Add(ComputeLine(line, catalog, mode).Totals())
	}
	return t
}

// ComputeBreakdown is ComputeTotals that also returns every line's detail.
func ComputeBreakdown(lines []LineItem, catalog Catalog, mode TaxMode) ([]LineBreakdown, Totals) {
	out := make([]LineBreakdown, 0, len(lines))
	var t Totals
	for _, line := range lines {
		b := ComputeLine(line, catalog, mode)
		out = append(out, b)
		t = t.Add(b.Totals())
	}
	return out, t
}
