package middleware

import (
	"ecobites-be/internal/auth"
	"ecobites-be/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Auth attaches the bearer identity to the request context when a valid
// token is present. Requests without one pass through anonymously;
// handlers that need an identity enforce it themselves.
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractBearer(c.Get("Authorization"))
		if token == "" {
			return c.Next()
		}

		claims, err := auth.ParseJWT(token)
		if err != nil {
			return c.Next()
		}

		ctx := utils.SetUserContext(c.UserContext(), claims.UserID, claims.Email, claims.Role)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
