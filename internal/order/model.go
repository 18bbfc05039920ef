package order

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports set membership only. Transition legality is not
// enforced; restaurants drive confirmed -> completed, and cancelled is
// a terminal label with no inventory effect.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Subtotal            float64   `json:"subtotal"`
	ServiceFee          float64   `json:"serviceFee"`
	Savings             float64   `json:"savings"`
	TotalPrice          float64   `json:"totalPrice"`
	Status              Status    `json:"status"`
	RestaurantIDs       []string  `json:"restaurantIds"`
	DeliveryAddress     string    `json:"deliveryAddress"`
	PickupTime          string    `json:"pickupTime"`
	SpecialInstructions string    `json:"specialInstructions"`
	CreatedAt           time.Time `json:"createdAt"`

	// RequestID is the idempotency token the order was placed with, if
	// any. Not part of the response shape.
	RequestID string `json:"-"`

	Items []OrderItem `json:"items,omitempty"`

	// Populated only on restaurant-facing queries.
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

type OrderItem struct {
	ID              string  `json:"id"`
	OrderID         string  `json:"-"`
	ListingID       string  `json:"-"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`

	// Listing is joined live at query time; PriceAtPurchase stays the
	// stored snapshot even when the catalog price moves afterwards.
	Listing ItemListing `json:"listing"`
}

// ItemListing is the denormalized catalog view attached to an order
// item on reads.
type ItemListing struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	ImageURL        string         `json:"imageUrl"`
	OriginalPrice   float64        `json:"originalPrice,omitempty"`
	DiscountedPrice float64        `json:"discountedPrice,omitempty"`
	Restaurant      ItemRestaurant `json:"restaurant"`
}

type ItemRestaurant struct {
	Name string `json:"name"`
}

// CartEntry is one listing's contribution to a submitted cart.
// PriceAtPurchase comes from the client payload so the buyer pays the
// price they were shown at display time.
type CartEntry struct {
	ListingID       string  `json:"listingId"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

// PlacementInput is a full cart submission. RequestID is an optional
// client-generated idempotency token; resubmissions with the same
// (user, request) pair return the original order instead of placing a
// second one.
type PlacementInput struct {
	UserID              string      `json:"userId"`
	RequestID           string      `json:"requestId"`
	Items               []CartEntry `json:"items"`
	Subtotal            float64     `json:"subtotal"`
	ServiceFee          float64     `json:"serviceFee"`
	Savings             float64     `json:"savings"`
	TotalPrice          float64     `json:"totalPrice"`
	DeliveryAddress     string      `json:"deliveryAddress"`
	PickupTime          string      `json:"pickupTime"`
	SpecialInstructions string      `json:"specialInstructions"`
}
