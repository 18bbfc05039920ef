package listing

import "time"

type Status string

const (
	StatusActive  Status = "active"
	StatusSoldOut Status = "sold_out"
	StatusExpired Status = "expired"
)

type Listing struct {
	ID                string    `json:"id"`
	RestaurantID      string    `json:"restaurantId"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	OriginalPrice     float64   `json:"originalPrice"`
	DiscountedPrice   float64   `json:"discountedPrice"`
	Quantity          int       `json:"quantity"`
	RemainingQuantity int       `json:"remainingQuantity"`
	ExpiresAt         time.Time `json:"expiresAt"`
	IsPriorityAccess  bool      `json:"isPriorityAccess"`
	Status            Status    `json:"status"`
	ImageURL          string    `json:"imageUrl"`
	Tags              []string  `json:"tags"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Stock is the validation-time view of a listing consulted during order
// placement: how many units are left and who gets paid for them.
type Stock struct {
	ListingID    string
	RestaurantID string
	Title        string
	Remaining    int
}

type CreateInput struct {
	RestaurantID     string   `json:"restaurantId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	OriginalPrice    float64  `json:"originalPrice"`
	DiscountedPrice  float64  `json:"discountedPrice"`
	Quantity         int      `json:"quantity"`
	ExpiresInHours   int      `json:"expiresInHours"`
	IsPriorityAccess bool     `json:"isPriorityAccess"`
	ImageURL         string   `json:"imageUrl"`
	Tags             []string `json:"tags"`
}
