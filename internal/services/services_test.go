package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServices(t *testing.T) (*store.Store, *DocumentService, *SettlementService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	st := store.New(db, pricing.DefaultSettings())
	docs := NewDocumentService(st)
	docs.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return st, docs, NewSettlementService(st)
}

func seedVinyl(t *testing.T, st *store.Store) {
	t.Helper()
	_, err := st.SaveCatalogItem(context.Background(), pricing.CatalogItem{
		ID: "vinyl", Name: "Vinyl banner", Kind: pricing.PricingMeasured, Rate: 10, Unit: pricing.UnitSquareMetre,
	})
	require.NoError(t, err)
}

func vinylLine() pricing.LineItem {
	l, w := 2.0, 5.0
	return pricing.LineItem{
		Source:   pricing.CatalogRef{ID: "vinyl"},
		Quantity: 2,
		Length:   &l,
		Width:    &w,
		VATRate:  20,
		Discount: pricing.Discount{Type: pricing.DiscountPercentage, Value: 10},
	}
}

func TestDocumentService_CreateAndSetLines(t *testing.T) {
	st, docs, _ := setupServices(t)
	ctx := context.Background()
	seedVinyl(t, st)

	doc, err := docs.Create(ctx, CreateDocumentInput{PartyName: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, models.KindInvoice, doc.Kind)
	assert.Equal(t, pricing.TaxExclusive, doc.TaxMode)
	assert.Equal(t, "INV-2025-0001", doc.Number)

	doc, err = docs.SetLines(ctx, doc.ID, []pricing.LineItem{vinylLine()})
	require.NoError(t, err)
	assert.InDelta(t, 180, doc.Subtotal, 1e-9)
	assert.InDelta(t, 36, doc.TaxTotal, 1e-9)
	assert.InDelta(t, 216, doc.GrandTotal, 1e-9)

	stored, err := docs.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.InDelta(t, 216, stored.GrandTotal, 1e-9)
	require.Len(t, stored.Lines, 1)
	assert.NotEmpty(t, stored.Lines[0].LineID)

	_, err = docs.Create(ctx, CreateDocumentInput{Kind: "receipt"})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestDocumentService_CreateWithLines(t *testing.T) {
	_, docs, _ := setupServices(t)
	ctx := context.Background()

	doc, err := docs.Create(ctx, CreateDocumentInput{
		Kind:    models.KindQuote,
		TaxMode: pricing.TaxInclusive,
		Lines: []pricing.LineItem{
			{ID: "dup", Source: pricing.ManualPrice{Amount: 118}, Quantity: 1, VATRate: 18},
			{ID: "dup", Source: pricing.ManualPrice{Amount: 10}, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 128, doc.GrandTotal, 1e-9)
	assert.InDelta(t, 18, doc.TaxTotal, 1e-9)

	stored, err := docs.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.NotEqual(t, stored.Lines[0].LineID, stored.Lines[1].LineID)
}

func TestDocumentService_SwitchTaxMode(t *testing.T) {
	st, docs, _ := setupServices(t)
	ctx := context.Background()
	require.NoError(t, st.SaveSettings(ctx, pricing.Settings{DefaultVATRate: 10, CurrencySymbol: "€"}))

	doc, err := docs.Create(ctx, CreateDocumentInput{TaxMode: pricing.TaxNone, Lines: []pricing.LineItem{
		{Source: pricing.ManualPrice{Amount: 100}, Quantity: 1, VATRate: 0},
		{Source: pricing.ManualPrice{Amount: 50}, Quantity: 1, VATRate: 20},
	}})
	require.NoError(t, err)
	assert.InDelta(t, 150, doc.GrandTotal, 1e-9)

	doc, err = docs.SwitchTaxMode(ctx, doc.ID, pricing.TaxExclusive)
	require.NoError(t, err)
	assert.Equal(t, pricing.TaxExclusive, doc.TaxMode)
	// 100 @ 10 % (reset) + 50 @ 20 %
	assert.InDelta(t, 20, doc.TaxTotal, 1e-9)
	assert.InDelta(t, 170, doc.GrandTotal, 1e-9)

	doc, err = docs.SwitchTaxMode(ctx, doc.ID, pricing.TaxNone)
	require.NoError(t, err)
	assert.InDelta(t, 150, doc.GrandTotal, 1e-9)
	stored, err := docs.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.Lines[0].VATRate, "rates are kept when moving to none")
}

func TestDocumentService_FinalizeAndUpdate(t *testing.T) {
	_, docs, _ := setupServices(t)
	ctx := context.Background()

	empty, err := docs.Create(ctx, CreateDocumentInput{})
	require.NoError(t, err)
	_, err = docs.Finalize(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	doc, err := docs.Create(ctx, CreateDocumentInput{Lines: []pricing.LineItem{
		{Source: pricing.ManualPrice{Amount: 100}, Quantity: 1, VATRate: 20},
	}})
	require.NoError(t, err)
	doc, err = docs.Finalize(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, doc.IsFinal())
	assert.InDelta(t, 120, doc.GrandTotal, 1e-9)

	_, err = docs.SetLines(ctx, doc.ID, nil)
	assert.ErrorIs(t, err, ErrDocumentFinal)
	_, err = docs.Finalize(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentFinal)
	_, err = docs.SwitchTaxMode(ctx, doc.ID, pricing.TaxNone)
	assert.ErrorIs(t, err, ErrDocumentFinal)
	assert.ErrorIs(t, docs.Delete(ctx, doc.ID), ErrDocumentFinal)

	doc, err = docs.Update(ctx, doc.ID, []pricing.LineItem{
		{Source: pricing.ManualPrice{Amount: 200}, Quantity: 1, VATRate: 20},
	})
	require.NoError(t, err)
	assert.True(t, doc.IsFinal())
	assert.InDelta(t, 240, doc.GrandTotal, 1e-9)
	_, err = docs.Update(ctx, doc.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	revenue, err := docs.Revenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 240, revenue, 1e-9)
}

func TestDocumentService_AddRemoveLine(t *testing.T) {
	st, docs, _ := setupServices(t)
	ctx := context.Background()
	rate := 5.5
	_, err := st.SaveCatalogItem(ctx, pricing.CatalogItem{ID: "book", Name: "Book", Kind: pricing.PricingFixed, UnitPrice: 20, DefaultVATRate: &rate})
	require.NoError(t, err)

	doc, err := docs.Create(ctx, CreateDocumentInput{})
	require.NoError(t, err)

	doc, line, err := docs.AddLine(ctx, doc.ID, AddLineInput{CatalogItemID: "book"})
	require.NoError(t, err)
	assert.Equal(t, 5.5, line.VATRate)
	assert.Equal(t, "Book", line.Description)
	assert.InDelta(t, 21.1, doc.GrandTotal, 1e-9)

	manual, _, err := docs.AddLine(ctx, doc.ID, AddLineInput{})
	require.NoError(t, err)
	require.Len(t, manual.Lines, 2)
	assert.Equal(t, 20.0, manual.Lines[1].VATRate)

	_, _, err = docs.AddLine(ctx, doc.ID, AddLineInput{CatalogItemID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	doc, err = docs.RemoveLine(ctx, doc.ID, line.ID)
	require.NoError(t, err)
	assert.Len(t, doc.Lines, 1)
	assert.Zero(t, doc.GrandTotal)

	_, err = docs.RemoveLine(ctx, doc.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentService_ConvertQuote(t *testing.T) {
	st, docs, _ := setupServices(t)
	ctx := context.Background()
	seedVinyl(t, st)

	inv, err := docs.Create(ctx, CreateDocumentInput{})
	require.NoError(t, err)
	_, err = docs.ConvertQuote(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrNotQuote)

	quote, err := docs.Create(ctx, CreateDocumentInput{Kind: models.KindQuote, PartyName: "ACME", Lines: []pricing.LineItem{vinylLine()}})
	require.NoError(t, err)

	converted, err := docs.ConvertQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KindInvoice, converted.Kind)
	assert.Equal(t, "ACME", converted.PartyName)
	require.NotNil(t, converted.SourceQuoteID)
	assert.Equal(t, quote.ID, *converted.SourceQuoteID)
	assert.InDelta(t, quote.GrandTotal, converted.GrandTotal, 1e-9)
	require.Len(t, converted.Lines, 1)
	assert.NotEqual(t, quote.Lines[0].LineID, converted.Lines[0].LineID)

	_, err = docs.ConvertQuote(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentService_Preview(t *testing.T) {
	st, docs, _ := setupServices(t)
	ctx := context.Background()
	seedVinyl(t, st)

	p, err := docs.Preview(ctx, []pricing.LineItem{vinylLine(), {Source: pricing.CatalogRef{ID: "gone"}, Quantity: 3}}, pricing.TaxExclusive)
	require.NoError(t, err)
	require.Len(t, p.Lines, 2)
	assert.InDelta(t, 200, p.Lines[0].BasePrice, 1e-9)
	assert.Zero(t, p.Lines[1].Total)
	assert.InDelta(t, 216, p.Totals.GrandTotal, 1e-9)
}

func finalDoc(t *testing.T, docs *DocumentService, kind models.DocumentKind, amount float64) *models.Document {
	t.Helper()
	ctx := context.Background()
	doc, err := docs.Create(ctx, CreateDocumentInput{Kind: kind, TaxMode: pricing.TaxNone, Lines: []pricing.LineItem{
		{Source: pricing.ManualPrice{Amount: amount}, Quantity: 1},
	}})
	require.NoError(t, err)
	doc, err = docs.Finalize(ctx, doc.ID)
	require.NoError(t, err)
	return doc
}

func TestSettlementService_CreditAndPayment(t *testing.T) {
	_, docs, settle := setupServices(t)
	ctx := context.Background()

	inv := finalDoc(t, docs, models.KindInvoice, 100)
	note := finalDoc(t, docs, models.KindCreditNote, 30)

	_, err := settle.ApplyCredit(ctx, inv.ID, inv.ID, 10)
	assert.ErrorIs(t, err, ErrNotCreditNote)
	_, err = settle.ApplyCredit(ctx, note.ID, note.ID, 10)
	assert.ErrorIs(t, err, ErrNotInvoice)

	_, err = settle.ApplyCredit(ctx, note.ID, inv.ID, 30)
	require.NoError(t, err)
	_, err = settle.ApplyCredit(ctx, note.ID, inv.ID, 1)
	assert.ErrorIs(t, err, ErrCreditExceeded)

	remaining, err := settle.CreditRemaining(ctx, note.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0, remaining, 1e-9)

	_, err = settle.RecordPayment(ctx, inv.ID, PaymentInput{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = settle.RecordPayment(ctx, inv.ID, PaymentInput{Amount: 70, Method: "transfer"})
	require.NoError(t, err)

	b, err := settle.Balance(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, b.IsFullyPaid)
	assert.InDelta(t, 0, b.AmountDue, 1e-9)
	assert.InDelta(t, 70, b.TotalPaid, 1e-9)
	assert.InDelta(t, 30, b.TotalCredited, 1e-9)
	assert.Equal(t, pricing.StatusPaid, b.Status())
}

func TestDocumentService_UpdateCreditNoteBelowApplied(t *testing.T) {
	_, docs, settle := setupServices(t)
	ctx := context.Background()

	inv := finalDoc(t, docs, models.KindInvoice, 100)
	note := finalDoc(t, docs, models.KindCreditNote, 30)
	_, err := settle.ApplyCredit(ctx, note.ID, inv.ID, 25)
	require.NoError(t, err)

	_, err = docs.Update(ctx, note.ID, []pricing.LineItem{{Source: pricing.ManualPrice{Amount: 20}, Quantity: 1}})
	assert.ErrorIs(t, err, ErrCreditExceeded)

	got, err := docs.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.InDelta(t, 30, got.GrandTotal, 1e-9)
	require.Len(t, got.Lines, 1)

	updated, err := docs.Update(ctx, note.ID, []pricing.LineItem{{Source: pricing.ManualPrice{Amount: 25}, Quantity: 1}})
	require.NoError(t, err)
	assert.InDelta(t, 25, updated.GrandTotal, 1e-9)

	remaining, err := settle.CreditRemaining(ctx, note.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0, remaining, 1e-9)
}

func TestSettlementService_Overpaid(t *testing.T) {
	_, docs, settle := setupServices(t)
	ctx := context.Background()
	inv := finalDoc(t, docs, models.KindInvoice, 100)

	_, err := settle.RecordPayment(ctx, inv.ID, PaymentInput{Amount: 120})
	require.NoError(t, err)
	b, err := settle.Balance(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, b.IsFullyPaid)
	assert.InDelta(t, -20, b.AmountDue, 1e-9)
	assert.Equal(t, pricing.StatusOverpaid, b.Status())
}

func TestSettlementService_DraftRefused(t *testing.T) {
	_, docs, settle := setupServices(t)
	ctx := context.Background()
	draft, err := docs.Create(ctx, CreateDocumentInput{})
	require.NoError(t, err)

	_, err = settle.RecordPayment(ctx, draft.ID, PaymentInput{Amount: 10})
	assert.ErrorIs(t, err, ErrNotFinal)

	quote, err := docs.Create(ctx, CreateDocumentInput{Kind: models.KindQuote})
	require.NoError(t, err)
	_, err = settle.Balance(ctx, quote.ID)
	assert.ErrorIs(t, err, ErrNotInvoice)
}
