package pricing

import "time"

// SettlementEpsilon absorbs floating-point drift when deciding whether an invoice is paid.
const SettlementEpsilon = 0.001

// Payment is money received against an invoice.
type Payment struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// CreditApplication records part of a credit note consumed against an invoice.
type CreditApplication struct {
	CreditNoteID string  `json:"credit_note_id"`
	InvoiceID    string  `json:"invoice_id"`
	Amount       float64 `json:"amount"`
}

// InvoiceSettlement is the part of a finalized invoice settlement needs.
type InvoiceSettlement struct {
	ID         string
	GrandTotal float64
	Payments   []Payment
}

// SettlementStatus summarises a Balance.
type SettlementStatus string

const (
	StatusUnpaid   SettlementStatus = "unpaid"
	StatusPartial  SettlementStatus = "partial"
	StatusPaid     SettlementStatus = "paid"
	StatusOverpaid SettlementStatus = "overpaid"
)

// Balance is what remains owed on an invoice.
type Balance struct {
	TotalPaid     float64 `json:"total_paid"`
	TotalCredited float64 `json:"total_credited"`
	IsFullyPaid   bool    `json:"is_fully_paid"`
	// AmountDue is negative when the invoice has been overpaid.
	AmountDue float64 `json:"amount_due"`
}

// Status classifies the balance.
func (b Balance) Status() SettlementStatus {
	switch {
	case b.AmountDue < -SettlementEpsilon:
		return StatusOverpaid
	case b.IsFullyPaid:
		return StatusPaid
	case b.TotalPaid == 0 && b.TotalCredited == 0:
		return StatusUnpaid
	default:
		return StatusPartial
	}
}

// ComputeBalance subtracts payments and the credit applications that reference inv
// from its grand total. Applications for other invoices are ignored.
func ComputeBalance(inv InvoiceSettlement, apps []CreditApplication) Balance {
	var paid, credited float64
	for _, p := range inv.Payments {
		paid += p.Amount
	}
	for _, a := range apps {
		if a.InvoiceID == inv.ID {
			credited += a.Amount
		}
	}
	net := inv.GrandTotal - credited
	return Balance{
		TotalPaid:     paid,
		TotalCredited: credited,
		IsFullyPaid:   paid >= net-SettlementEpsilon,
		AmountDue:     inv.GrandTotal - credited - paid,
	}
}

// CreditRemaining is how much of a credit note's total is still available after the
// applications made from it.
func CreditRemaining(creditTotal float64, apps []CreditApplication, creditNoteID string) float64 {
	remaining := creditTotal
	for _, a := range apps {
		if a.CreditNoteID == creditNoteID {
			remaining -= a.Amount
		}
	}
	return remaining
}
