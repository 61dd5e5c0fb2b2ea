package services

import (
	"errors"

	"github.com/diewo77/go-billing/internal/store"
)

var (
	// ErrNotFound is returned when a document or catalog item does not exist.
	ErrNotFound = store.ErrNotFound

	ErrDocumentFinal  = errors.New("document is finalized")
	ErrNotFinal       = errors.New("document is not finalized")
	ErrNotInvoice     = errors.New("document is not an invoice")
	ErrNotCreditNote  = errors.New("document is not a credit note")
	ErrNotQuote       = errors.New("document is not a quote")
	ErrCreditExceeded = errors.New("amount exceeds remaining credit")
	ErrEmptyDocument  = errors.New("document has no lines")
	ErrInvalidKind    = errors.New("unknown document kind")
	ErrInvalidAmount  = errors.New("amount must be positive")
)
