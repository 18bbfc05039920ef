package restaurant

import "time"

type Restaurant struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"`
	TotalOrders int       `json:"totalOrders"`
	Earnings    float64   `json:"earnings"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateInput struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
}
