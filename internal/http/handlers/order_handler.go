package handlers

import (
	"errors"

	"ecobites-be/internal/listing"
	"ecobites-be/internal/logger"
	"ecobites-be/internal/order"
	"ecobites-be/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Orders order.Service
}

// Place handles POST /api/orders: the atomic cart submission.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var input order.PlacementInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}

	// Prefer the authenticated identity when the client omits one.
	if input.UserID == "" {
		if userID, ok := utils.GetUserIDFromContext(ctx); ok {
			input.UserID = userID
		}
	}

	placed, err := h.Orders.PlaceOrder(ctx, input)
	if err != nil {
		return h.placementError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(placed)
}

func (h *OrderHandler) placementError(c *fiber.Ctx, err error) error {
	var insufficient *order.InsufficientQuantityError

	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     insufficient.Error(),
			"title":     insufficient.Title,
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	case errors.Is(err, listing.ErrListingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, order.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidPrice),
		errors.Is(err, order.ErrTotalMismatch),
		errors.Is(err, order.ErrInvalidServiceFee):
		return badRequest(c, err.Error())
	default:
		logger.FromCtx(c.UserContext()).Error("order placement failed", zap.Error(err))
		return serverError(c)
	}
}

// ByUser handles GET /api/orders/user/:userId.
func (h *OrderHandler) ByUser(c *fiber.Ctx) error {
	orders, err := h.Orders.GetOrdersByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to list user orders", zap.Error(err))
		return serverError(c)
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	return c.JSON(orders)
}

// Detail handles GET /api/orders/detail/:id.
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	o, err := h.Orders.GetOrderDetail(c.UserContext(), c.Params("id"))
	if errors.Is(err, order.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to get order detail", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(o)
}

// ByRestaurant handles GET /api/orders/restaurant/:restaurantId.
func (h *OrderHandler) ByRestaurant(c *fiber.Ctx) error {
	orders, err := h.Orders.GetOrdersByRestaurant(c.UserContext(), c.Params("restaurantId"))
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to list restaurant orders", zap.Error(err))
		return serverError(c)
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	return c.JSON(orders)
}

// UpdateStatus handles PUT /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	orderID := c.Params("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	err := h.Orders.UpdateOrderStatus(ctx, orderID, order.Status(body.Status))
	if errors.Is(err, order.ErrInvalidStatus) {
		return badRequest(c, "Invalid status")
	}
	if errors.Is(err, order.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status", zap.Error(err))
		return serverError(c)
	}

	o, err := h.Orders.GetOrderDetail(ctx, orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to reload order after status update", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(o)
}
