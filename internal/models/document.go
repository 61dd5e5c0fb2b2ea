package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/diewo77/go-billing/internal/pricing"
	"gorm.io/gorm"
)

// DocumentKind tells which business document a row represents.
type DocumentKind string

const (
	KindInvoice    DocumentKind = "invoice"
	KindQuote      DocumentKind = "quote"
	KindCreditNote DocumentKind = "credit_note"
	KindBill       DocumentKind = "bill"
)

// Valid reports whether k is a known kind.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindInvoice, KindQuote, KindCreditNote, KindBill:
		return true
	}
	return false
}

// NumberPrefix is the prefix used when numbering documents of kind k.
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case KindQuote:
		return "QUO"
	case KindCreditNote:
		return "CN"
	case KindBill:
		return "BIL"
	}
	return "INV"
}

// DocumentStatus represents the lifecycle state of a document.
type DocumentStatus string

const (
	StatusDraft DocumentStatus = "draft"
	StatusFinal DocumentStatus = "final"
)

// Document is an invoice, quote, credit note or supplier bill.
// Subtotal, TaxTotal and GrandTotal are persisted copies of the last computation.
type Document struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Kind      DocumentKind `gorm:"size:20;index;not null" json:"kind"`
	Number    string       `gorm:"size:50;index" json:"number"`
	PartyName string       `gorm:"size:255" json:"party_name"`

	IssueDate time.Time  `gorm:"not null" json:"issue_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Status  DocumentStatus  `gorm:"size:20;default:'draft'" json:"status"`
	TaxMode pricing.TaxMode `gorm:"size:20;default:'exclusive'" json:"tax_mode"`

	Subtotal   float64 `gorm:"not null;default:0" json:"subtotal"`
	TaxTotal   float64 `gorm:"not null;default:0" json:"tax_total"`
	GrandTotal float64 `gorm:"not null;default:0" json:"grand_total"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	// SourceQuoteID is set on invoices converted from a quote.
	SourceQuoteID *uint `gorm:"index" json:"source_quote_id,omitempty"`

	Lines    []DocumentLine `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Payments []Payment      `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// IsDraft returns true if the document is in draft status.
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft || d.Status == ""
}

// IsFinal returns true if the document has been finalized.
func (d *Document) IsFinal() bool {
	return d.Status == StatusFinal
}

// CanEdit returns true if the document's lines can still be changed freely.
func (d *Document) CanEdit() bool {
	return d.IsDraft()
}

// Key is the document id in the string form the engine uses.
func (d *Document) Key() string {
	return DocumentKey(d.ID)
}

// DocumentKey formats a document id for the engine.
func DocumentKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Totals returns the persisted totals.
func (d *Document) Totals() pricing.Totals {
	return pricing.Totals{Subtotal: d.Subtotal, TaxTotal: d.TaxTotal, GrandTotal: d.GrandTotal}
}

// SetTotals stores a fresh computation on the document.
func (d *Document) SetTotals(t pricing.Totals) {
	d.Subtotal = t.Subtotal
	d.TaxTotal = t.TaxTotal
	d.GrandTotal = t.GrandTotal
}

// Mode returns the document tax mode, falling back to exclusive for rows without one.
func (d *Document) Mode() pricing.TaxMode {
	if d.TaxMode == "" {
		return pricing.TaxExclusive
	}
	return d.TaxMode
}

// PricingLines converts the preloaded lines, in position order, into engine line items.
func (d *Document) PricingLines() []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		out = append(out, l.ToPricing())
	}
	return out
}

// Settlement returns the view of the document used for balance computation.
func (d *Document) Settlement() pricing.InvoiceSettlement {
	s := pricing.InvoiceSettlement{ID: d.Key(), GrandTotal: d.GrandTotal}
	for _, p := range d.Payments {
		s.Payments = append(s.Payments, pricing.Payment{Amount: p.Amount, Date: p.Date})
	}
	return s
}

// FormatNumber builds a document number such as INV-2025-0001.
func FormatNumber(kind DocumentKind, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", kind.NumberPrefix(), year, seq)
}
