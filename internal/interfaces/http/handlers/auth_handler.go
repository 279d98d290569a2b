package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend"
	"github.com/grse/dashboard/internal/interfaces/http/middleware"
	"github.com/grse/dashboard/internal/pkg/logger"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	gate       *application.SessionGate
	router     *application.ViewRouter
	cookieName string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gate *application.SessionGate, router *application.ViewRouter, cookieName string) *AuthHandler {
	return &AuthHandler{gate: gate, router: router, cookieName: cookieName}
}

// Login authenticates against the backend and opens a session
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req domain.Credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	issued, err := h.gate.Login(c.UserContext(), req)
	if err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			logger.Info().Str("username", req.Username).Msg("Login rejected")
		}
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    issued.Token,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	logger.Info().
		Str("username", issued.Session.User.Username).
		Str("session_id", issued.Session.ID.String()).
		Msg("Session opened")

	// Preload the permitted sections as the new session
	landing := h.router.Landing(backend.WithToken(c.UserContext(), issued.Token), issued.Session)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"token":      issued.Token,
			"expires_at": issued.ExpiresAt,
			"session":    issued.Session,
			"navigation": h.router.Navigation(issued.Session),
			"landing":    landing,
		},
	})
}

// Logout ends the current session
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	if err := h.router.Logout(c.UserContext(), session); err != nil && !errors.Is(err, application.ErrSessionNotFound) {
		return respondError(c, err)
	}

	c.ClearCookie(h.cookieName)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message": "logged out",
		},
	})
}

// Me returns the current session
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session":    session,
			"navigation": h.router.Navigation(session),
		},
	})
}
