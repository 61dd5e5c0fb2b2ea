package pricing

import (
	"errors"
	"fmt"
)

// Errors returned by the parsing and validation helpers. Computations never fail.
var (
	// ErrUnknownTaxMode is returned when a tax mode string is not one of exclusive, inclusive or none.
	ErrUnknownTaxMode = errors.New("unknown tax mode")

	// ErrUnknownDiscountType is returned when a discount type string is not fixed or percentage.
	ErrUnknownDiscountType = errors.New("unknown discount type")

	// ErrUnknownPricingKind is returned for catalog items that are neither fixed nor measured.
	ErrUnknownPricingKind = errors.New("unknown pricing kind")

	// ErrInvalidRate is returned for measured items without a positive rate.
	ErrInvalidRate = errors.New("measured item requires a positive rate")

	// ErrUnknownUnit is returned for measured items without a recognized measurement unit.
	ErrUnknownUnit = errors.New("measured item requires a recognized unit")
)

// CatalogError ties a validation failure to the catalog item it was found on.
type CatalogError struct {
	ItemID string
	Err    error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("catalog item: %v", e.Err)
	}
	return fmt.Sprintf("catalog item %s: %v", e.ItemID, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}
