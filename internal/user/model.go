package user

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleRestaurant Role = "restaurant"
)

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	IsPriority       bool       `json:"isPriority"`
	IsPremium        bool       `json:"isPremium"`
	PremiumPlan      *string    `json:"premiumPlan,omitempty"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`

	PasswordHash string `json:"-"`
}

type PremiumUpdate struct {
	IsPremium        bool       `json:"isPremium"`
	PremiumPlan      *string    `json:"premiumPlan"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt"`
}
