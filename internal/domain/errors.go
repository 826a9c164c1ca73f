package domain

import "errors"

// Validation-level failures of the sale workflow. They never leave partial
// state behind and map to 4xx responses at the API boundary.
var (
	ErrEmptyCart         = errors.New("cart has no lines")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrInvalidDiscount   = errors.New("discount percent must be between 0 and 100")
	ErrFormationFull     = errors.New("formation has no remaining seats")
)
