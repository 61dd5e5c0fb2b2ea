package models

import (
	"time"

	"github.com/diewo77/go-billing/internal/pricing"
)

// Payment is money received against an invoice.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	DocumentID uint      `gorm:"index;not null" json:"document_id"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Date       time.Time `gorm:"not null" json:"date"`
	Method     string    `gorm:"size:50" json:"method,omitempty"`
	Reference  string    `gorm:"size:100" json:"reference,omitempty"`
}

// CreditApplication records part of a credit note consumed against an invoice.
type CreditApplication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CreditNoteID uint    `gorm:"index;not null" json:"credit_note_id"`
	InvoiceID    uint    `gorm:"index;not null" json:"invoice_id"`
	Amount       float64 `gorm:"not null" json:"amount"`
}

// ToPricing converts the row into an engine credit application.
func (a *CreditApplication) ToPricing() pricing.CreditApplication {
	return pricing.CreditApplication{
		CreditNoteID: DocumentKey(a.CreditNoteID),
		InvoiceID:    DocumentKey(a.InvoiceID),
		Amount:       a.Amount,
	}
}

// ApplicationsToPricing converts a slice of rows.
func ApplicationsToPricing(rows []CreditApplication) []pricing.CreditApplication {
	out := make([]pricing.CreditApplication, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToPricing())
	}
	return out
}

// All lists every model for AutoMigrate, parents first.
func All() []any {
	return []any{
		&CompanySettings{},
		&CatalogItem{},
		&CatalogAddOn{},
		&Document{},
		&DocumentLine{},
		&Payment{},
		&CreditApplication{},
	}
}
