package models

import (
	"time"

	"github.com/diewo77/go-billing/internal/pricing"
)

// CompanySettings holds the issuing company's identity and billing defaults.
// A single row is expected; when absent the configured defaults apply.
type CompanySettings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"size:255;not null" json:"name"`
	VATNumber string `gorm:"size:20" json:"vat_number,omitempty"`

	// DefaultVATRate is a percentage (20 for 20 %). 0 is a valid rate.
	DefaultVATRate float64 `gorm:"not null" json:"default_vat_rate"`
	CurrencySymbol string  `gorm:"size:8;not null" json:"currency_symbol"`
}

// Settings converts the row into engine settings.
func (c *CompanySettings) Settings() pricing.Settings {
	return pricing.Settings{
		DefaultVATRate: c.DefaultVATRate,
		CurrencySymbol: c.CurrencySymbol,
	}
}
