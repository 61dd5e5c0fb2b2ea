package handlers

import (
	"fmt"

	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/validation"
)

// validateLines records field problems on lines under the "lines[i]." prefix.
func validateLines(lines []pricing.LineItem, v validation.Violations) {
	for i, l := range lines {
		validateLine(fmt.Sprintf("lines[%d].", i), l, v)
	}
}

func validateLine(prefix string, l pricing.LineItem, v validation.Violations) {
	validation.NonNegativeFloat(prefix+"quantity", l.Quantity, v)
	validation.RangeFloat(prefix+"vat_rate", l.VATRate, 0, 100, v)
	validation.NonNegativeFloat(prefix+"discount.value", l.Discount.Value, v)
	if l.Length != nil {
		validation.NonNegativeFloat(prefix+"length", *l.Length, v)
	}
	if l.Width != nil {
		validation.NonNegativeFloat(prefix+"width", *l.Width, v)
	}
	if l.Unit != "" {
		validation.Check(l.Unit.Valid(), prefix+"unit", "unknown_unit", v)
	}
}

// displayTotals is the truncated, currency-formatted rendering of Totals.
type displayTotals struct {
	Subtotal   string `json:"subtotal"`
	TaxTotal   string `json:"tax_total"`
	GrandTotal string `json:"grand_total"`
}

func display(t pricing.Totals, s pricing.Settings) displayTotals {
	return displayTotals{
		Subtotal:   pricing.FormatAmount(t.Subtotal, s),
		TaxTotal:   pricing.FormatAmount(t.TaxTotal, s),
		GrandTotal: pricing.FormatAmount(t.GrandTotal, s),
	}
}
