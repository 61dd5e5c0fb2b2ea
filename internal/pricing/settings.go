package pricing

import "github.com/shopspring/decimal"

// Settings carries the defaults the engine needs from the surrounding application.
// It is passed explicitly to every call that uses it.
type Settings struct {
	// DefaultVATRate is a percentage applied to new lines and to lines reset on a tax mode switch.
	DefaultVATRate float64 `json:"default_vat_rate"`
	// CurrencySymbol is only used for display.
	CurrencySymbol string `json:"currency_symbol"`
}

// DefaultSettings returns 20 % VAT and the euro sign.
func DefaultSettings() Settings {
	return Settings{DefaultVATRate: 20, CurrencySymbol: "€"}
}

// SwitchTaxMode returns a copy of lines prepared for a document moving from one tax
// mode to another. Leaving TaxNone for a taxed mode resets every 0 % line to the
// default rate. Moving to TaxNone keeps the stored rates; the calculation ignores them.
func SwitchTaxMode(lines []LineItem, from, to TaxMode, settings Settings) []LineItem {
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
		if from == TaxNone && to.Taxed() && out[i].VATRate == 0 {
			out[i].VATRate = settings.DefaultVATRate
		}
	}
	return out
}

// Truncate2 cuts x to two decimals toward zero. Use it for presentation only.
func Truncate2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Truncate(2).Float64()
	return f
}

// FormatAmount renders x truncated to two decimals with the currency symbol in front,
// e.g. "€1234.50" or "-€20.00".
func FormatAmount(x float64, settings Settings) string {
	d := decimal.NewFromFloat(x).Truncate(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + settings.CurrencySymbol + d.StringFixed(2)
}
