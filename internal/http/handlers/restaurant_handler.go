package handlers

import (
	"errors"

	"ecobites-be/internal/logger"
	"ecobites-be/internal/restaurant"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RestaurantHandler struct {
	Restaurants restaurant.Service
}

// List handles GET /api/restaurants.
func (h *RestaurantHandler) List(c *fiber.Ctx) error {
	restaurants, err := h.Restaurants.GetRestaurants(c.UserContext())
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to list restaurants", zap.Error(err))
		return serverError(c)
	}
	if restaurants == nil {
		restaurants = []restaurant.Restaurant{}
	}
	return c.JSON(restaurants)
}

// Get handles GET /api/restaurants/:id.
func (h *RestaurantHandler) Get(c *fiber.Ctx) error {
	rest, err := h.Restaurants.GetRestaurant(c.UserContext(), c.Params("id"))
	if errors.Is(err, restaurant.ErrRestaurantNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Restaurant not found"})
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to get restaurant", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(rest)
}

// Create handles POST /api/restaurants.
func (h *RestaurantHandler) Create(c *fiber.Ctx) error {
	var input restaurant.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}

	created, err := h.Restaurants.CreateRestaurant(c.UserContext(), input)
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to create restaurant", zap.Error(err))
		return serverError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
