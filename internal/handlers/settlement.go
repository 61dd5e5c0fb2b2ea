package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/validation"
)

type SettlementHandler struct {
	settle *services.SettlementService
}

func NewSettlementHandler(settle *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settle: settle}
}

type paymentRequest struct {
	Amount    float64    `json:"amount"`
	Date      *time.Time `json:"date"`
	Method    string     `json:"method"`
	Reference string     `json:"reference"`
}

func (h *SettlementHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	v := make(validation.Violations)
	validation.PositiveFloat("amount", req.Amount, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	in := services.PaymentInput{Amount: req.Amount, Method: req.Method, Reference: req.Reference}
	if req.Date != nil {
		in.Date = *req.Date
	}
	p, err := h.settle.RecordPayment(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

type applicationRequest struct {
	CreditNoteID uint    `json:"credit_note_id"`
	Amount       float64 `json:"amount"`
}

// ApplyCredit applies part of a credit note to the invoice in the path.
func (h *SettlementHandler) ApplyCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	var req applicationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	v := make(validation.Violations)
	validation.Check(req.CreditNoteID != 0, "credit_note_id", "required", v)
	validation.PositiveFloat("amount", req.Amount, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	app, err := h.settle.ApplyCredit(r.Context(), req.CreditNoteID, id, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, app)
}

type balanceResponse struct {
	pricing.Balance
	Status pricing.SettlementStatus `json:"status"`
}

func (h *SettlementHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	b, err := h.settle.Balance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balanceResponse{Balance: b, Status: b.Status()})
}

// CreditRemaining reports what is left on a credit note.
func (h *SettlementHandler) CreditRemaining(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, services.ErrNotFound)
		return
	}
	remaining, err := h.settle.CreditRemaining(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"remaining": remaining})
}
