package store

import (
	"context"

	"github.com/diewo77/go-billing/internal/models"
)

// AddPayment records a payment.
func (s *Store) AddPayment(ctx context.Context, p *models.Payment) error {
	return wrap("add payment", s.conn(ctx).Create(p).Error)
}

// AddCreditApplication records part of a credit note applied to an invoice.
func (s *Store) AddCreditApplication(ctx context.Context, a *models.CreditApplication) error {
	return wrap("add credit application", s.conn(ctx).Create(a).Error)
}

// ApplicationsForInvoice lists the credit applications made against an invoice.
func (s *Store) ApplicationsForInvoice(ctx context.Context, invoiceID uint) ([]models.CreditApplication, error) {
	var rows []models.CreditApplication
	err := s.conn(ctx).Where("invoice_id = ?", invoiceID).Order("id").Find(&rows).Error
	return rows, wrap("applications for invoice", err)
}

// ApplicationsForCreditNote lists the applications drawn from a credit note.
func (s *Store) ApplicationsForCreditNote(ctx context.Context, creditNoteID uint) ([]models.CreditApplication, error) {
	var rows []models.CreditApplication
	err := s.conn(ctx).Where("credit_note_id = ?", creditNoteID).Order("id").Find(&rows).Error
	return rows, wrap("applications for credit note", err)
}
