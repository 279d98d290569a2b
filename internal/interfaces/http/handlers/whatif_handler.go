package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/interfaces/http/middleware"
)

// WhatIfHandler handles the scenario simulator
type WhatIfHandler struct {
	router *application.ViewRouter
}

// NewWhatIfHandler creates a new what-if handler
func NewWhatIfHandler(router *application.ViewRouter) *WhatIfHandler {
	return &WhatIfHandler{router: router}
}

// UpdateWhatIfRequest selects a project, a scenario, or both. A project
// change is applied first and resets the scenario before it is set.
type UpdateWhatIfRequest struct {
	ProjectID *domain.ProjectID  `json:"project_id"`
	Scenario  *domain.ScenarioID `json:"scenario"`
}

// Get renders the what-if page
func (h *WhatIfHandler) Get(c *fiber.Ctx) error {
	page, err := h.router.RenderPage(c.UserContext(), middleware.SessionFrom(c), domain.PageWhatIf)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": page.WhatIf,
	})
}

// Update changes the simulated project or scenario
func (h *WhatIfHandler) Update(c *fiber.Ctx) error {
	var req UpdateWhatIfRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ProjectID == nil && req.Scenario == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "project_id or scenario is required",
		})
	}

	ctx := c.UserContext()
	session := middleware.SessionFrom(c)

	var (
		page *application.RenderedPage
		err  error
	)
	if req.ProjectID != nil {
		if page, err = h.router.SelectWhatIfProject(ctx, session, *req.ProjectID); err != nil {
			return respondError(c, err)
		}
	}
	if req.Scenario != nil {
		if page, err = h.router.SelectWhatIfScenario(ctx, session, *req.Scenario); err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"data": page.WhatIf,
	})
}
