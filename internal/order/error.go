package order

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("price at purchase must not be negative")
	ErrTotalMismatch     = errors.New("total price does not match subtotal plus service fee")
	ErrInvalidServiceFee = errors.New("service fee outside the allowed range")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidStatus     = errors.New("invalid order status")

	// -- Resource State --
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateRequest marks the unique-index race on the
	// idempotency token; callers re-read and return the original order.
	ErrDuplicateRequest = errors.New("duplicate placement request")

	// -- Placement step failures (each rolls back the whole order) --
	ErrOrderInsert      = errors.New("order insert failed")
	ErrItemInsert       = errors.New("order item insert failed")
	ErrListingUpdate    = errors.New("listing update failed")
	ErrRestaurantUpdate = errors.New("restaurant update failed")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)

// InsufficientQuantityError carries the shortfall context for
// user-facing messaging.
type InsufficientQuantityError struct {
	Title     string
	Available int
	Requested int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for %s. Available: %d, Requested: %d",
		e.Title, e.Available, e.Requested)
}
