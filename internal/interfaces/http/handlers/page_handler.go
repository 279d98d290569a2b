package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/interfaces/http/middleware"
)

// PageHandler handles navigation and page rendering
type PageHandler struct {
	router *application.ViewRouter
}

// NewPageHandler creates a new page handler
func NewPageHandler(router *application.ViewRouter) *PageHandler {
	return &PageHandler{router: router}
}

// NavigateRequest represents a navigation request
type NavigateRequest struct {
	Page string `json:"page"`
}

// renderResponse answers an access-denied page with 403 and the denial body
func renderResponse(c *fiber.Ctx, page *application.RenderedPage) error {
	if page.AccessDenied {
		c.Status(fiber.StatusForbidden)
	}
	return c.JSON(fiber.Map{
		"data": page,
	})
}

// Navigation lists the menu for the current session
func (h *PageHandler) Navigation(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": h.router.Navigation(middleware.SessionFrom(c)),
	})
}

// Navigate moves the session to another page
func (h *PageHandler) Navigate(c *fiber.Ctx) error {
	var req NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	pageID, err := domain.ParsePageID(req.Page)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	page, err := h.router.Navigate(c.UserContext(), middleware.SessionFrom(c), pageID)
	if err != nil {
		return respondError(c, err)
	}
	return renderResponse(c, page)
}

// Page renders the current page, or ?page= without moving the session
func (h *PageHandler) Page(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)

	var (
		page *application.RenderedPage
		err  error
	)
	if slug := c.Query("page"); slug != "" {
		pageID, perr := domain.ParsePageID(slug)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": perr.Error(),
			})
		}
		page, err = h.router.RenderPage(c.UserContext(), session, pageID)
	} else {
		page, err = h.router.Render(c.UserContext(), session)
	}
	if err != nil {
		return respondError(c, err)
	}
	return renderResponse(c, page)
}

// Project returns the drill-down for one project
func (h *PageHandler) Project(c *fiber.Ctx) error {
	project, err := h.router.ProjectDetail(c.UserContext(), middleware.SessionFrom(c), domain.ProjectID(c.Params("id")))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": project,
	})
}

// Quarter returns the drill-down for one financial quarter
func (h *PageHandler) Quarter(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid quarter name",
		})
	}

	quarter, err := h.router.QuarterDetail(c.UserContext(), middleware.SessionFrom(c), name)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": quarter,
	})
}
