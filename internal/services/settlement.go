package services

import (
	"context"
	"time"

	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/store"
	"github.com/rs/zerolog"
)

// SettlementService records payments and credit-note applications and reports balances.
type SettlementService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewSettlementService(st *store.Store) *SettlementService {
	return &SettlementService{store: st, log: logger.WithComponent("settlement")}
}

// PaymentInput describes money received against an invoice.
type PaymentInput struct {
	Amount    float64
	Date      time.Time
	Method    string
	Reference string
}

// RecordPayment adds a payment to a finalized invoice or bill.
func (s *SettlementService) RecordPayment(ctx context.Context, invoiceID uint, in PaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	doc, err := s.store.GetDocument(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(doc); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	p := &models.Payment{
		DocumentID: doc.ID,
		Amount:     in.Amount,
		Date:       in.Date,
		Method:     in.Method,
		Reference:  in.Reference,
	}
	if err := s.store.AddPayment(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Uint("document_id", doc.ID).Float64("amount", in.Amount).Msg("payment recorded")
	return p, nil
}

// ApplyCredit consumes amount from a finalized credit note against a finalized invoice.
// The amount may not exceed what remains on the credit note.
func (s *SettlementService) ApplyCredit(ctx context.Context, creditNoteID, invoiceID uint, amount float64) (*models.CreditApplication, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var app *models.CreditApplication
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		note, err := tx.GetDocument(ctx, creditNoteID)
		if err != nil {
			return err
		}
		if note.Kind != models.KindCreditNote {
			return ErrNotCreditNote
		}
		if !note.IsFinal() {
			return ErrNotFinal
		}
		inv, err := tx.GetDocument(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Kind != models.KindInvoice {
			return ErrNotInvoice
		}
		if !inv.IsFinal() {
			return ErrNotFinal
		}
		remaining, err := creditRemaining(ctx, tx, note)
		if err != nil {
			return err
		}
		if amount > remaining+pricing.SettlementEpsilon {
			return ErrCreditExceeded
		}
		app = &models.CreditApplication{CreditNoteID: note.ID, InvoiceID: inv.ID, Amount: amount}
		return tx.AddCreditApplication(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("credit_note_id", creditNoteID).Uint("invoice_id", invoiceID).Float64("amount", amount).Msg("credit applied")
	return app, nil
}

// Balance reports what remains owed on an invoice or bill.
func (s *SettlementService) Balance(ctx context.Context, invoiceID uint) (pricing.Balance, error) {
	doc, err := s.store.GetDocument(ctx, invoiceID)
	if err != nil {
		return pricing.Balance{}, err
	}
	if doc.Kind != models.KindInvoice && doc.Kind != models.KindBill {
		return pricing.Balance{}, ErrNotInvoice
	}
	apps, err := s.store.ApplicationsForInvoice(ctx, doc.ID)
	if err != nil {
		return pricing.Balance{}, err
	}
	return pricing.ComputeBalance(doc.Settlement(), models.ApplicationsToPricing(apps)), nil
}

// CreditRemaining reports how much of a credit note is still available.
func (s *SettlementService) CreditRemaining(ctx context.Context, creditNoteID uint) (float64, error) {
	note, err := s.store.GetDocument(ctx, creditNoteID)
	if err != nil {
		return 0, err
	}
	if note.Kind != models.KindCreditNote {
		return 0, ErrNotCreditNote
	}
	return creditRemaining(ctx, s.store, note)
}

func creditRemaining(ctx context.Context, st *store.Store, note *models.Document) (float64, error) {
	apps, err := st.ApplicationsForCreditNote(ctx, note.ID)
	if err != nil {
		return 0, err
	}
	return pricing.CreditRemaining(note.GrandTotal, models.ApplicationsToPricing(apps), note.Key()), nil
}

func checkPayable(doc *models.Document) error {
	if doc.Kind != models.KindInvoice && doc.Kind != models.KindBill {
		return ErrNotInvoice
	}
	if !doc.IsFinal() {
		return ErrNotFinal
	}
	return nil
}
