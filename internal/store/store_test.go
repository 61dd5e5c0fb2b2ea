package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return New(db, pricing.DefaultSettings())
}

func TestSettings_DefaultsThenSaved(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultSettings(), got)

	require.NoError(t, s.SaveSettings(ctx, pricing.Settings{DefaultVATRate: 7, CurrencySymbol: "CHF"}))
	require.NoError(t, s.SaveSettings(ctx, pricing.Settings{DefaultVATRate: 8.1, CurrencySymbol: "CHF"}))
	got, err = s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8.1, got.DefaultVATRate)
	assert.Equal(t, "CHF", got.CurrencySymbol)
}

func TestSaveSettings_ZeroRateOnEmptyDatabase(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, pricing.Settings{DefaultVATRate: 0, CurrencySymbol: "€"}))
	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.DefaultVATRate)

	require.NoError(t, s.SaveSettings(ctx, pricing.Settings{DefaultVATRate: 20, CurrencySymbol: "€"}))
	require.NoError(t, s.SaveSettings(ctx, pricing.Settings{DefaultVATRate: 0, CurrencySymbol: "€"}))
	got, err = s.Settings(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.DefaultVATRate)
}

func TestSaveCatalogItem(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCatalogItem(ctx, pricing.CatalogItem{Name: "Banner", Kind: pricing.PricingMeasured, Unit: pricing.UnitSquareMetre})
	require.ErrorIs(t, err, pricing.ErrInvalidRate)

	saved, err := s.SaveCatalogItem(ctx, pricing.CatalogItem{
		Name:   "Poster",
		Kind:   pricing.PricingFixed,
		AddOns: []pricing.AddOnOption{{Name: "Frame", Price: 20}, {Name: "Lamination", Price: 5}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Len(t, saved.AddOns, 2)
	assert.NotEmpty(t, saved.AddOns[0].ID)

	// Re-saving replaces the add-on set.
	saved.AddOns = saved.AddOns[1:]
	saved.UnitPrice = 12
	_, err = s.SaveCatalogItem(ctx, saved)
	require.NoError(t, err)

	got, err := s.GetCatalogItem(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.UnitPrice)
	require.Len(t, got.AddOns, 1)
	assert.Equal(t, "Lamination", got.AddOns[0].Name)

	_, err = s.GetCatalogItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogFor_LoadsParents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	parent, err := s.SaveCatalogItem(ctx, pricing.CatalogItem{ID: "poster", Name: "Poster", Kind: pricing.PricingFixed,
		AddOns: []pricing.AddOnOption{{ID: "frame", Name: "Frame", Price: 20}}})
	require.NoError(t, err)
	_, err = s.SaveCatalogItem(ctx, pricing.CatalogItem{ID: "poster-a2", Name: "Poster A2", Kind: pricing.PricingFixed,
		UnitPrice: 10, ParentID: parent.ID})
	require.NoError(t, err)

	lines := []pricing.LineItem{
		{Source: pricing.CatalogRef{ID: "poster-a2"}, Quantity: 1, SelectedAddOnIDs: []string{"frame"}},
		{Source: pricing.CatalogRef{ID: "deleted"}, Quantity: 1},
		{Source: pricing.ManualPrice{Amount: 3}, Quantity: 1},
	}
	catalog, err := s.CatalogFor(ctx, lines)
	require.NoError(t, err)
	assert.Len(t, catalog, 2)
	assert.Equal(t, 30.0, pricing.BasePrice(lines[0], catalog))
}

func TestDocuments_CreateNumberReplaceLines(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	issued := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	first := &models.Document{Kind: models.KindInvoice, IssueDate: issued, TaxMode: pricing.TaxExclusive}
	second := &models.Document{Kind: models.KindInvoice, IssueDate: issued}
	quote := &models.Document{Kind: models.KindQuote, IssueDate: issued}
	for _, d := range []*models.Document{first, second, quote} {
		require.NoError(t, s.CreateDocument(ctx, d))
	}
	assert.Equal(t, "INV-2025-0001", first.Number)
	assert.Equal(t, "INV-2025-0002", second.Number)
	assert.Equal(t, "QUO-2025-0001", quote.Number)

	width := 5.0
	lines := []pricing.LineItem{
		{ID: "b", Source: pricing.ManualPrice{Amount: 10}, Quantity: 2, VATRate: 20, SelectedAddOnIDs: []string{"x", "y"}},
		{ID: "a", Source: pricing.CatalogRef{ID: "vinyl"}, Quantity: 1, Width: &width, Discount: pricing.Discount{Type: pricing.DiscountPercentage, Value: 10}},
	}
	first.SetTotals(pricing.Totals{Subtotal: 20, TaxTotal: 4, GrandTotal: 24})
	require.NoError(t, s.ReplaceLines(ctx, first, lines))
	require.NoError(t, s.ReplaceLines(ctx, first, lines))

	got, err := s.GetDocument(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 24.0, got.GrandTotal)
	stored := got.PricingLines()
	require.Len(t, stored, 2)
	assert.Equal(t, "b", stored[0].ID)
	assert.Equal(t, []string{"x", "y"}, stored[0].SelectedAddOnIDs)
	assert.Equal(t, pricing.CatalogRef{ID: "vinyl"}, stored[1].Source)
	assert.Equal(t, pricing.DiscountPercentage, stored[1].Discount.Type)
	assert.Equal(t, 5.0, *stored[1].Width)

	docs, total, err := s.ListDocuments(ctx, ListFilter{Kind: models.KindInvoice})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, docs, 2)

	require.NoError(t, s.DeleteDocument(ctx, second.ID))
	_, err = s.GetDocument(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteDocument(ctx, 9999), ErrNotFound)
}

func TestReplaceLines_ZeroQuantityKept(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	lines := []pricing.LineItem{
		{ID: "zero", Source: pricing.ManualPrice{Amount: 50}, Quantity: 0, VATRate: 20},
		{ID: "two", Source: pricing.ManualPrice{Amount: 10}, Quantity: 2, VATRate: 20},
	}
	doc := &models.Document{Kind: models.KindInvoice, IssueDate: time.Now(), TaxMode: pricing.TaxExclusive}
	for i, l := range lines {
		doc.Lines = append(doc.Lines, models.LineFromPricing(0, i, l))
	}
	require.NoError(t, s.CreateDocument(ctx, doc))

	created, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, created.Lines, 2)
	assert.Zero(t, created.Lines[0].Quantity)

	doc.SetTotals(pricing.ComputeTotals(lines, nil, doc.Mode()))
	require.NoError(t, s.ReplaceLines(ctx, doc, lines))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	stored := got.PricingLines()
	require.Len(t, stored, 2)
	assert.Zero(t, stored[0].Quantity)
	assert.Equal(t, 2.0, stored[1].Quantity)

	recomputed := pricing.ComputeTotals(stored, nil, got.Mode())
	assert.InDelta(t, 24.0, got.GrandTotal, 1e-9)
	assert.InDelta(t, got.GrandTotal, recomputed.GrandTotal, 1e-9)
}

func TestRevenueAndApplications(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	total, err := s.Revenue(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	final := &models.Document{Kind: models.KindInvoice, IssueDate: now, Status: models.StatusFinal, GrandTotal: 120}
	draft := &models.Document{Kind: models.KindInvoice, IssueDate: now, Status: models.StatusDraft, GrandTotal: 50}
	credit := &models.Document{Kind: models.KindCreditNote, IssueDate: now, Status: models.StatusFinal, GrandTotal: 30}
	for _, d := range []*models.Document{final, draft, credit} {
		require.NoError(t, s.CreateDocument(ctx, d))
	}
	total, err = s.Revenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, total)

	require.NoError(t, s.AddPayment(ctx, &models.Payment{DocumentID: final.ID, Amount: 40, Date: now}))
	require.NoError(t, s.AddCreditApplication(ctx, &models.CreditApplication{CreditNoteID: credit.ID, InvoiceID: final.ID, Amount: 30}))

	apps, err := s.ApplicationsForInvoice(ctx, final.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	fromNote, err := s.ApplicationsForCreditNote(ctx, credit.ID)
	require.NoError(t, err)
	assert.Len(t, fromNote, 1)

	doc, err := s.GetDocument(ctx, final.ID)
	require.NoError(t, err)
	b := pricing.ComputeBalance(doc.Settlement(), models.ApplicationsToPricing(apps))
	assert.InDelta(t, 50.0, b.AmountDue, 1e-9)
}
