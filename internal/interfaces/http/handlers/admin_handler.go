package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/grse/dashboard/internal/application"
)

// AdminHandler handles user management requests
type AdminHandler struct {
	admin *application.AdminController
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *application.AdminController) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func userID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// List returns the user list fetched from the backend
func (h *AdminHandler) List(c *fiber.Ctx) error {
	users, err := h.admin.Refresh(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": users,
	})
}

// Create adds a user
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req application.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, err := h.admin.CreateUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": user,
	})
}

// Update edits a user; an empty password keeps the stored one
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	var req application.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, err := h.admin.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": user,
	})
}

// Delete removes a user
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	if err := h.admin.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message": "user deleted",
		},
	})
}
