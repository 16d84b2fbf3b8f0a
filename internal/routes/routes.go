// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"signwise/internal/handlers"
	"signwise/internal/middleware"
	"signwise/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Assignments *handlers.AssignmentHandler
	Vendors     *handlers.VendorHandler
	Clients     *handlers.ClientHandler
	CacheStats  fiber.Handler
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	app.Get("/health", h.Health.Health)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/refresh", h.Auth.RefreshToken)

	protected := api.Group("", authMiddleware.Handler)
	protected.Post("/auth/logout", h.Auth.Logout)

	setupAssignmentRoutes(protected, h.Assignments)
	setupVendorRoutes(protected, h.Vendors)
	setupClientRoutes(protected, h.Clients)

	if h.CacheStats != nil {
		admin := protected.Group("/admin", middleware.AdminOnly)
		admin.Get("/cache-stats", h.CacheStats)
	}
}

func setupAssignmentRoutes(router fiber.Router, h *handlers.AssignmentHandler) {
	router.Post("/quotes", middleware.HasPermission(models.PermissionQuoteCreate), h.Quote)

	assignments := router.Group("/assignments")
	assignments.Get("/", middleware.HasPermission(models.PermissionAssignmentWrite), h.List)
	assignments.Post("/", middleware.HasPermission(models.PermissionAssignmentWrite), h.Create)
	assignments.Get("/:id", middleware.HasPermission(models.PermissionAssignmentWrite), h.Get)
	assignments.Post("/:id/complete", middleware.HasPermission(models.PermissionAssignmentWrite), h.Complete)
	assignments.Post("/:id/fail", middleware.HasPermission(models.PermissionAssignmentWrite), h.Fail)
}

func setupVendorRoutes(router fiber.Router, h *handlers.VendorHandler) {
	vendors := router.Group("/vendors")
	vendors.Post("/", middleware.AdminOnly, h.Create)
	vendors.Get("/:id/tier", middleware.HasPermission(models.PermissionVendorRead), h.GetTier)
}

func setupClientRoutes(router fiber.Router, h *handlers.ClientHandler) {
	clients := router.Group("/clients")
	clients.Post("/", middleware.HasPermission(models.PermissionPilotWrite), h.Register)
	clients.Post("/:id/pilot", middleware.HasPermission(models.PermissionPilotWrite), h.ProvisionPilot)
	clients.Get("/:id/pilot", middleware.HasPermission(models.PermissionPilotRead), h.GetPilot)
	clients.Post("/:id/pilot/convert", middleware.AdminOnly, h.ConvertPilot)
}
