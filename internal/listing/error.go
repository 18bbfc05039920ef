package listing

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")

	// ErrInsufficientStock is returned by DecrementStock when the
	// conditional update touches no row, i.e. the remaining quantity
	// dropped below the requested amount after validation.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPricing  = errors.New("discounted price must be positive and below the original price")
)
