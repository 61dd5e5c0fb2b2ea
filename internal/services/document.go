// Package services orchestrates the store and the pricing engine.
package services

import (
	"context"
	"time"

	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DocumentService manages the document lifecycle: drafting, tax-mode switches,
// finalization and quote conversion. Totals are always recomputed from the lines.
type DocumentService struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewDocumentService(st *store.Store) *DocumentService {
	return &DocumentService{
		store: st,
		log:   logger.WithComponent("documents"),
		now:   time.Now,
	}
}

// CreateDocumentInput describes a new draft.
type CreateDocumentInput struct {
	Kind      models.DocumentKind
	PartyName string
	IssueDate time.Time
	DueDate   *time.Time
	TaxMode   pricing.TaxMode
	Notes     string
	Lines     []pricing.LineItem
}

// AddLineInput adds either an explicit line or, when Line is nil, a fresh line
// built from the current settings and the optional catalog item.
type AddLineInput struct {
	CatalogItemID string
	Line          *pricing.LineItem
}

// Preview is a stateless computation for the live editor.
type Preview struct {
	Lines  []pricing.LineBreakdown `json:"lines"`
	Totals pricing.Totals          `json:"totals"`
}

// Create inserts a draft document. Kind defaults to invoice and tax mode to exclusive.
func (s *DocumentService) Create(ctx context.Context, in CreateDocumentInput) (*models.Document, error) {
	if in.Kind == "" {
		in.Kind = models.KindInvoice
	}
	if !in.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if in.TaxMode == "" {
		in.TaxMode = pricing.TaxExclusive
	}
	if in.IssueDate.IsZero() {
		in.IssueDate = s.now()
	}
	doc := &models.Document{
		Kind:      in.Kind,
		PartyName: in.PartyName,
		IssueDate: in.IssueDate,
		DueDate:   in.DueDate,
		Status:    models.StatusDraft,
		TaxMode:   in.TaxMode,
		Notes:     in.Notes,
	}
	lines := normalizeLines(in.Lines)
	if err := s.attachLines(ctx, doc, lines); err != nil {
		return nil, err
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info().Uint("document_id", doc.ID).Str("number", doc.Number).Str("kind", string(doc.Kind)).Msg("document created")
	return doc, nil
}

// Get loads a document.
func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// List returns a page of documents and the total count.
func (s *DocumentService) List(ctx context.Context, f store.ListFilter) ([]models.Document, int64, error) {
	return s.store.ListDocuments(ctx, f)
}

// Delete removes a draft document.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if !doc.CanEdit() {
		return ErrDocumentFinal
	}
	return s.store.DeleteDocument(ctx, id)
}

// Preview computes the breakdown of lines without touching any document.
func (s *DocumentService) Preview(ctx context.Context, lines []pricing.LineItem, mode pricing.TaxMode) (Preview, error) {
	catalog, err := s.store.CatalogFor(ctx, lines)
	if err != nil {
		return Preview{}, err
	}
	rows, totals := pricing.ComputeBreakdown(lines, catalog, mode)
	return Preview{Lines: rows, Totals: totals}, nil
}

// Breakdown computes the per-line detail of a stored document.
func (s *DocumentService) Breakdown(ctx context.Context, doc *models.Document) (Preview, error) {
	return s.Preview(ctx, doc.PricingLines(), doc.Mode())
}

// SetLines replaces the lines of a draft and recomputes its totals.
func (s *DocumentService) SetLines(ctx context.Context, id uint, lines []pricing.LineItem) (*models.Document, error) {
	doc, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, doc, normalizeLines(lines)); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddLine appends a line to a draft.
func (s *DocumentService) AddLine(ctx context.Context, id uint, in AddLineInput) (*models.Document, pricing.LineItem, error) {
	doc, err := s.editable(ctx, id)
	if err != nil {
		return nil, pricing.LineItem{}, err
	}
	var line pricing.LineItem
	if in.Line != nil {
		line = in.Line.Clone()
	} else {
		line, err = s.newLine(ctx, in.CatalogItemID)
		if err != nil {
			return nil, pricing.LineItem{}, err
		}
	}
	lines := normalizeLines(append(doc.PricingLines(), line))
	if err := s.recompute(ctx, doc, lines); err != nil {
		return nil, pricing.LineItem{}, err
	}
	return doc, lines[len(lines)-1], nil
}

// RemoveLine deletes one line from a draft.
func (s *DocumentService) RemoveLine(ctx context.Context, id uint, lineID string) (*models.Document, error) {
	doc, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	current := doc.PricingLines()
	kept := make([]pricing.LineItem, 0, len(current))
	for _, l := range current {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(current) {
		return nil, ErrNotFound
	}
	if err := s.recompute(ctx, doc, kept); err != nil {
		return nil, err
	}
	return doc, nil
}

// SwitchTaxMode changes the tax mode of a draft, adjusting line rates the way
// pricing.SwitchTaxMode does, and recomputes totals.
func (s *DocumentService) SwitchTaxMode(ctx context.Context, id uint, mode pricing.TaxMode) (*models.Document, error) {
	doc, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	from := doc.Mode()
	lines := pricing.SwitchTaxMode(doc.PricingLines(), from, mode, settings)
	doc.TaxMode = mode
	if err := s.recompute(ctx, doc, lines); err != nil {
		return nil, err
	}
	s.log.Info().Uint("document_id", id).Str("from", string(from)).Str("to", string(mode)).Msg("tax mode switched")
	return doc, nil
}

// Finalize freezes a draft after a last recomputation. Empty documents are refused.
func (s *DocumentService) Finalize(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	lines := doc.PricingLines()
	if len(lines) == 0 {
		return nil, ErrEmptyDocument
	}
	doc.Status = models.StatusFinal
	if err := s.recompute(ctx, doc, lines); err != nil {
		return nil, err
	}
	s.log.Info().Uint("document_id", id).Str("number", doc.Number).Float64("grand_total", doc.GrandTotal).Msg("document finalized")
	return doc, nil
}

// Update is the explicit edit path for any document, finalized or not. Totals are
// recomputed from scratch from the new lines. A finalized credit note cannot drop
// below the amount already applied from it.
func (s *DocumentService) Update(ctx context.Context, id uint, lines []pricing.LineItem) (*models.Document, error) {
	lines = normalizeLines(lines)
	var doc *models.Document
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if doc, err = tx.GetDocument(ctx, id); err != nil {
			return err
		}
		if doc.IsFinal() && len(lines) == 0 {
			return ErrEmptyDocument
		}
		catalog, err := tx.CatalogFor(ctx, lines)
		if err != nil {
			return err
		}
		s.logUnresolved(doc.ID, lines, catalog)
		totals := pricing.ComputeTotals(lines, catalog, doc.Mode())
		if doc.Kind == models.KindCreditNote && doc.IsFinal() {
			apps, err := tx.ApplicationsForCreditNote(ctx, doc.ID)
			if err != nil {
				return err
			}
			if pricing.CreditRemaining(totals.GrandTotal, models.ApplicationsToPricing(apps), doc.Key()) < -pricing.SettlementEpsilon {
				return ErrCreditExceeded
			}
		}
		doc.SetTotals(totals)
		return tx.ReplaceLines(ctx, doc, lines)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("document_id", id).Float64("grand_total", doc.GrandTotal).Msg("document updated")
	return doc, nil
}

// ConvertQuote copies a quote into a new draft invoice with fresh line ids.
func (s *DocumentService) ConvertQuote(ctx context.Context, quoteID uint) (*models.Document, error) {
	quote, err := s.store.GetDocument(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Kind != models.KindQuote {
		return nil, ErrNotQuote
	}
	lines := quote.PricingLines()
	for i := range lines {
		lines[i].ID = uuid.NewString()
	}
	inv := &models.Document{
		Kind:          models.KindInvoice,
		PartyName:     quote.PartyName,
		IssueDate:     s.now(),
		Status:        models.StatusDraft,
		TaxMode:       quote.Mode(),
		Notes:         quote.Notes,
		SourceQuoteID: &quote.ID,
	}
	if err := s.attachLines(ctx, inv, lines); err != nil {
		return nil, err
	}
	if err := s.store.CreateDocument(ctx, inv); err != nil {
		return nil, err
	}
	s.log.Info().Uint("quote_id", quoteID).Uint("invoice_id", inv.ID).Msg("quote converted")
	return inv, nil
}

// Revenue sums the grand totals of finalized invoices.
func (s *DocumentService) Revenue(ctx context.Context) (float64, error) {
	return s.store.Revenue(ctx)
}

// Settings returns the current billing settings.
func (s *DocumentService) Settings(ctx context.Context) (pricing.Settings, error) {
	return s.store.Settings(ctx)
}

// UpdateSettings stores new billing settings. Existing lines keep their rates.
func (s *DocumentService) UpdateSettings(ctx context.Context, settings pricing.Settings) error {
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.log.Info().Float64("default_vat_rate", settings.DefaultVATRate).Msg("settings updated")
	return nil
}

func (s *DocumentService) editable(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.CanEdit() {
		return nil, ErrDocumentFinal
	}
	return doc, nil
}

func (s *DocumentService) newLine(ctx context.Context, catalogItemID string) (pricing.LineItem, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return pricing.LineItem{}, err
	}
	if catalogItemID == "" {
		return pricing.NewManualLine(settings), nil
	}
	item, err := s.store.GetCatalogItem(ctx, catalogItemID)
	if err != nil {
		return pricing.LineItem{}, err
	}
	return pricing.NewCatalogLine(item, settings), nil
}

// recompute computes totals for lines under doc's tax mode and persists both.
func (s *DocumentService) recompute(ctx context.Context, doc *models.Document, lines []pricing.LineItem) error {
	catalog, err := s.store.CatalogFor(ctx, lines)
	if err != nil {
		return err
	}
	s.logUnresolved(doc.ID, lines, catalog)
	doc.SetTotals(pricing.ComputeTotals(lines, catalog, doc.Mode()))
	return s.store.ReplaceLines(ctx, doc, lines)
}

// attachLines computes totals for a document that has not been inserted yet.
func (s *DocumentService) attachLines(ctx context.Context, doc *models.Document, lines []pricing.LineItem) error {
	catalog, err := s.store.CatalogFor(ctx, lines)
	if err != nil {
		return err
	}
	doc.SetTotals(pricing.ComputeTotals(lines, catalog, doc.Mode()))
	doc.Lines = make([]models.DocumentLine, 0, len(lines))
	for i, l := range lines {
		doc.Lines = append(doc.Lines, models.LineFromPricing(0, i, l))
	}
	return nil
}

func (s *DocumentService) logUnresolved(docID uint, lines []pricing.LineItem, catalog pricing.Catalog) {
	for _, l := range lines {
		if id := l.CatalogItemID(); id != "" {
			if _, ok := catalog.Lookup(id); !ok {
				s.log.Debug().Uint("document_id", docID).Str("catalog_item_id", id).Msg("catalog item not found, line priced at 0")
			}
		}
	}
}

// normalizeLines returns a copy of lines where every line has a unique id.
func normalizeLines(lines []pricing.LineItem) []pricing.LineItem {
	out := make([]pricing.LineItem, len(lines))
	seen := make(map[string]bool, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
		if out[i].ID == "" || seen[out[i].ID] {
			out[i].ID = uuid.NewString()
		}
		seen[out[i].ID] = true
	}
	return out
}
