package handlers

import (
	"errors"

	"ecobites-be/internal/listing"
	"ecobites-be/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ListingHandler struct {
	Listings listing.Service
}

// List handles GET /api/listings: active listings with stock left.
func (h *ListingHandler) List(c *fiber.Ctx) error {
	listings, err := h.Listings.GetActiveListings(c.UserContext())
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to list listings", zap.Error(err))
		return serverError(c)
	}
	if listings == nil {
		listings = []listing.Listing{}
	}
	return c.JSON(listings)
}

// ByRestaurant handles GET /api/listings/restaurant/:restaurantId.
func (h *ListingHandler) ByRestaurant(c *fiber.Ctx) error {
	listings, err := h.Listings.GetRestaurantListings(c.UserContext(), c.Params("restaurantId"))
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to list restaurant listings", zap.Error(err))
		return serverError(c)
	}
	if listings == nil {
		listings = []listing.Listing{}
	}
	return c.JSON(listings)
}

// Create handles POST /api/listings.
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var input listing.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}

	created, err := h.Listings.CreateListing(c.UserContext(), input)
	if errors.Is(err, listing.ErrInvalidQuantity) || errors.Is(err, listing.ErrInvalidPricing) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to create listing", zap.Error(err))
		return serverError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
