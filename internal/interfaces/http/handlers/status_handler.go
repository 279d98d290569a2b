package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// StatusSource reports the backend health message
type StatusSource interface {
	Status(ctx context.Context) (string, error)
}

// StatusHandler handles liveness and backend status requests
type StatusHandler struct {
	source StatusSource
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// Health reports that this service is up
func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

// Status relays the backend status message
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	msg, err := h.source.Status(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to connect to the backend.",
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message":   msg,
			"connected": true,
		},
	})
}
