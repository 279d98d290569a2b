package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend"
)

const (
	localSession = "session"
)

// AuthMiddleware resolves session tokens
type AuthMiddleware struct {
	gate       *application.SessionGate
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(gate *application.SessionGate, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{gate: gate, cookieName: cookieName}
}

// tokenFrom reads the bearer header, falling back to the session cookie
func (m *AuthMiddleware) tokenFrom(c *fiber.Ctx) (string, bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return "", false
		}
		return token, true
	}
	if token := c.Cookies(m.cookieName); token != "" {
		return token, true
	}
	return "", false
}

// Authenticate loads the live session for the request token. The token is
// forwarded to the backend on every upstream call made for this request.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := m.tokenFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or malformed session token",
			})
		}

		session, err := m.gate.Resolve(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session",
			})
		}

		c.Locals(localSession, session)
		c.SetUserContext(backend.WithToken(c.UserContext(), token))

		return c.Next()
	}
}

// RequirePage rejects sessions whose user lacks page
func (m *AuthMiddleware) RequirePage(page domain.PageID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := SessionFrom(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if !application.CanAccess(&session.User, page) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "page not permitted: " + page.String(),
			})
		}

		return c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate
func SessionFrom(c *fiber.Ctx) *domain.Session {
	session, _ := c.Locals(localSession).(*domain.Session)
	return session
}
