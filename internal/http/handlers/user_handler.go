package handlers

import (
	"errors"

	"ecobites-be/internal/logger"
	"ecobites-be/internal/user"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	Users user.Service
}

// Register handles POST /api/users.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input user.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, u, err := h.Users.Register(c.UserContext(), input)
	if errors.Is(err, user.ErrEmailExists) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to register user", zap.Error(err))
		return serverError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  u,
	})
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, u, err := h.Users.Login(c.UserContext(), body.Email, body.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to login", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  u,
	})
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	u, err := h.Users.GetUser(c.UserContext(), c.Params("id"))
	if errors.Is(err, user.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to get user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(u)
}

// UpdatePremium handles PATCH /api/users/:id/premium.
func (h *UserHandler) UpdatePremium(c *fiber.Ctx) error {
	var update user.PremiumUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "invalid request body")
	}

	u, err := h.Users.SetPremium(c.UserContext(), c.Params("id"), update)
	if errors.Is(err, user.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("failed to update premium status", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(u)
}
