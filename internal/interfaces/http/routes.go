package http

import (
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/interfaces/http/handlers"
	"github.com/grse/dashboard/internal/interfaces/http/middleware"
	"github.com/grse/dashboard/internal/pkg/config"
)

// Router holds all handlers and middleware
type Router struct {
	app            *fiber.App
	authHandler    *handlers.AuthHandler
	pageHandler    *handlers.PageHandler
	whatIfHandler  *handlers.WhatIfHandler
	adminHandler   *handlers.AdminHandler
	statusHandler  *handlers.StatusHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	pageHandler *handlers.PageHandler,
	whatIfHandler *handlers.WhatIfHandler,
	adminHandler *handlers.AdminHandler,
	statusHandler *handlers.StatusHandler,
	authMiddleware *middleware.AuthMiddleware,
	serverConfig *config.ServerConfig,
) *Router {
	isProd := os.Getenv("ENV") == "production" || os.Getenv("ENVIRONMENT") == "production"

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		BodyLimit:             1 * 1024 * 1024,
		ReadTimeout:           time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(serverConfig.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(serverConfig.IdleTimeout) * time.Second,
		ServerHeader:          "GRSE-Dashboard",
		AppName:               "GRSE Dashboard API",
		DisableStartupMessage: isProd,
	})

	// Global middleware - order matters!
	app.Use(recover.New())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if !isProd {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format:     "${status} ${method} ${path} ${latency}\n",
			TimeFormat: "15:04:05",
			Output:     os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       86400,
	}))

	return &Router{
		app:            app,
		authHandler:    authHandler,
		pageHandler:    pageHandler,
		whatIfHandler:  whatIfHandler,
		adminHandler:   adminHandler,
		statusHandler:  statusHandler,
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes configures all routes
func (r *Router) SetupRoutes() {
	api := r.app.Group("/api/v1")

	// Public
	api.Get("/health", r.statusHandler.Health)
	api.Get("/status", r.statusHandler.Status)
	api.Post("/auth/login", r.authHandler.Login)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.authMiddleware.Authenticate())

	protected.Post("/auth/logout", r.authHandler.Logout)
	protected.Get("/auth/me", r.authHandler.Me)

	// Navigation; the router re-checks every page itself
	protected.Get("/navigation", r.pageHandler.Navigation)
	protected.Post("/navigate", r.pageHandler.Navigate)
	protected.Get("/page", r.pageHandler.Page)

	// Drill-downs
	protected.Get("/projects/:id", r.authMiddleware.RequirePage(domain.PageProjects), r.pageHandler.Project)
	protected.Get("/financials/quarters/:name", r.authMiddleware.RequirePage(domain.PageFinancials), r.pageHandler.Quarter)

	// What-if
	whatIf := protected.Group("/what-if", r.authMiddleware.RequirePage(domain.PageWhatIf))
	whatIf.Get("/", r.whatIfHandler.Get)
	whatIf.Put("/", r.whatIfHandler.Update)

	// Admin only
	admin := protected.Group("/admin", r.authMiddleware.RequirePage(domain.PageAdmin))
	admin.Get("/users", r.adminHandler.List)
	admin.Post("/users", r.adminHandler.Create)
	admin.Put("/users/:id", r.adminHandler.Update)
	admin.Delete("/users/:id", r.adminHandler.Delete)
}

// App exposes the fiber app, mainly for app.Test
func (r *Router) App() *fiber.App {
	return r.app
}

// Start starts the HTTP server
func (r *Router) Start(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
