package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/internal/store"
	"github.com/diewo77/go-billing/validation"
)

type DocumentHandler struct {
	docs *services.DocumentService
}

func NewDocumentHandler(docs *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

type documentResponse struct {
	ID            uint                    `json:"id"`
	Kind          models.DocumentKind     `json:"kind"`
	Number        string                  `json:"number"`
	PartyName     string                  `json:"party_name"`
	IssueDate     time.Time               `json:"issue_date"`
	DueDate       *time.Time              `json:"due_date,omitempty"`
	Status        models.DocumentStatus   `json:"status"`
	TaxMode       pricing.TaxMode         `json:"tax_mode"`
	Notes         string                  `json:"notes,omitempty"`
	SourceQuoteID *uint                   `json:"source_quote_id,omitempty"`
	Lines         []pricing.LineItem      `json:"lines"`
	Breakdown     []pricing.LineBreakdown `json:"breakdown"`
	Totals        pricing.Totals          `json:"totals"`
	Display       displayTotals           `json:"display"`
	Payments      []models.Payment        `json:"payments,omitempty"`
}

// render builds the API view of doc. Totals are the persisted ones; the
// breakdown is computed against the current catalog.
func (h *DocumentHandler) render(ctx context.Context, doc *models.Document) (documentResponse, error) {
	preview, err := h.docs.Breakdown(ctx, doc)
	if err != nil {
		return documentResponse{}, err
	}
	settings, err := h.docs.Settings(ctx)
	if err != nil {
		return documentResponse{}, err
	}
	return documentResponse{
		ID:            doc.ID,
		Kind:          doc.Kind,
		Number:        doc.Number,
		PartyName:     doc.PartyName,
		IssueDate:     doc.IssueDate,
		DueDate:       doc.DueDate,
		Status:        doc.Status,
		TaxMode:       doc.Mode(),
		Notes:         doc.Notes,
		SourceQuoteID: doc.SourceQuoteID,
		Lines:         doc.PricingLines(),
		Breakdown:     preview.Lines,
		Totals:        doc.Totals(),
		Display:       display(doc.Totals(), settings),
		Payments:      doc.Payments,
	}, nil
}

func (h *DocumentHandler) respond(w http.ResponseWriter, r *http.Request, status int, doc *models.Document) {
	resp, err := h.render(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, status, resp)
}

type createDocumentRequest struct {
	Kind      models.DocumentKind `json:"kind"`
	PartyName string              `json:"party_name"`
	IssueDate *time.Time          `json:"issue_date"`
	DueDate   *time.Time          `json:"due_date"`
	TaxMode   pricing.TaxMode     `json:"tax_mode"`
	Notes     string              `json:"notes"`
	Lines     []pricing.LineItem  `json:"lines"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	v := make(validation.Violations)
	if req.Kind != "" {
		validation.Check(req.Kind.Valid(), "kind", "unknown", v)
	}
	validateLines(req.Lines, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	in := services.CreateDocumentInput{
		Kind:      req.Kind,
		PartyName: req.PartyName,
		DueDate:   req.DueDate,
		TaxMode:   req.TaxMode,
		Notes:     req.Notes,
		Lines:     req.Lines,
	}
	if req.IssueDate != nil {
		in.IssueDate = *req.IssueDate
	}
	doc, err := h.docs.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, doc)
}

type listItem struct {
	ID         uint                  `json:"id"`
	Kind       models.DocumentKind   `json:"kind"`
	Number     string                `json:"number"`
	PartyName  string                `json:"party_name"`
	IssueDate  time.Time             `json:"issue_date"`
	Status     models.DocumentStatus `json:"status"`
	GrandTotal float64               `json:"grand_total"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	filter := store.ListFilter{
		Kind:   models.DocumentKind(q.Get("kind")),
		Status: models.DocumentStatus(q.Get("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	docs, total, err := h.docs.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]listItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, listItem{
			ID:         d.ID,
			Kind:       d.Kind,
			Number:     d.Number,
			PartyName:  d.PartyName,
			IssueDate:  d.IssueDate,
			Status:     d.Status,
			GrandTotal: d.GrandTotal,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"page":      page,
		"limit":     limit,
		"total":     total,
	})
}

func (h *DocumentHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	if err := h.docs.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linesRequest struct {
	Lines []pricing.LineItem `json:"lines"`
}

func (h *DocumentHandler) decodeLines(w http.ResponseWriter, r *http.Request) ([]pricing.LineItem, bool) {
	var req linesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return nil, false
	}
	v := make(validation.Violations)
	validateLines(req.Lines, v)
	if !v.Empty() {
		invalid(w, v)
		return nil, false
	}
	return req.Lines, true
}

// SetLines replaces every line of a draft.
func (h *DocumentHandler) SetLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	lines, ok := h.decodeLines(w, r)
	if !ok {
		return
	}
	doc, err := h.docs.SetLines(r.Context(), id, lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, doc)
}

// Update recomputes a document, finalized or not, from a new set of lines.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	lines, ok := h.decodeLines(w, r)
	if !ok {
		return
	}
	doc, err := h.docs.Update(r.Context(), id, lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, doc)
}

type addLineRequest struct {
	CatalogItemID string            `json:"catalog_item_id"`
	Line          *pricing.LineItem `json:"line"`
}

// AddLine appends an explicit line, or a default one when only a catalog item (or nothing) is given.
func (h *DocumentHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	var req addLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Line != nil {
		v := make(validation.Violations)
		validateLine("line.", *req.Line, v)
		if !v.Empty() {
			invalid(w, v)
			return
		}
	}
	doc, _, err := h.docs.AddLine(r.Context(), id, services.AddLineInput{CatalogItemID: req.CatalogItemID, Line: req.Line})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, doc)
}

func (h *DocumentHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	doc, err := h.docs.RemoveLine(r.Context(), id, r.PathValue("line_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, doc)
}

type taxModeRequest struct {
	TaxMode string `json:"tax_mode"`
}

func (h *DocumentHandler) SwitchTaxMode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	var req taxModeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	mode, err := pricing.ParseTaxMode(req.TaxMode)
	if err != nil {
		invalid(w, validation.Violations{"tax_mode": "unknown"})
		return
	}
	doc, err := h.docs.SwitchTaxMode(r.Context(), id, mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, doc)
}

func (h *DocumentHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	doc, err := h.docs.Finalize(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, doc)
}

// Convert turns a quote into a new draft invoice.
func (h *DocumentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	doc, err := h.docs.ConvertQuote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, doc)
}
