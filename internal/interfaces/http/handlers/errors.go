package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/pkg/logger"
)

// statusFor maps service errors onto HTTP statuses
func statusFor(err error) int {
	var (
		authErr     *domain.AuthError
		connErr     *domain.ConnectivityError
		mutErr      *domain.MutationError
		scenarioErr *domain.UnknownScenarioError
	)

	switch {
	case errors.As(err, &authErr):
		return fiber.StatusUnauthorized
	case errors.As(err, &scenarioErr):
		return fiber.StatusBadRequest
	case errors.As(err, &mutErr):
		if mutErr.Status >= 400 && mutErr.Status < 500 {
			return mutErr.Status
		}
		return fiber.StatusBadGateway
	case errors.As(err, &connErr):
		return fiber.StatusBadGateway
	case errors.Is(err, application.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, application.ErrPageNotPermitted):
		return fiber.StatusForbidden
	case errors.Is(err, application.ErrProjectNotFound),
		errors.Is(err, application.ErrQuarterNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, application.ErrInvalidToken),
		errors.Is(err, application.ErrTokenExpired):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the error envelope. Auth errors carry the backend's
// user-facing message; everything else is the error text.
func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
