package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panchayat-portal/internal/api/http/handlers"
	"github.com/spec-kit/panchayat-portal/internal/auth"
	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Applications   *handlers.ApplicationsHandler
	Services       *handlers.ServicesHandler
	Notifications  *handlers.NotificationsHandler
	Users          *handlers.UsersHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	// Browsing the active catalog requires no account.
	api.Get("/services", cfg.Services.ListActive)
	api.Get("/services/:id", cfg.Services.Get)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/profile", cfg.Users.Profile)
	protected.Put("/profile", cfg.Users.UpdateProfile)

	officerOnly := auth.RequireRole(domain.RoleOfficer)

	services := protected.Group("/services", officerOnly)
	services.Post("", cfg.Services.Create)
	services.Put("/:id", cfg.Services.Update)
	services.Delete("/:id", cfg.Services.Delete)

	applications := protected.Group("/applications")
	applications.Post("", auth.RequireRole(domain.RoleCitizen), cfg.Applications.Submit)
	applications.Get("", cfg.Applications.List)
	applications.Get("/:id", cfg.Applications.Get)
	applications.Put("/:id", cfg.Applications.Update)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	users := protected.Group("/users", officerOnly)
	users.Get("", cfg.Users.List)
	users.Post("", cfg.Users.Create)
	users.Put("/:id", cfg.Users.Manage)
	users.Delete("/:id", cfg.Users.Delete)

	admin := protected.Group("/admin", officerOnly)
	admin.Get("/services", cfg.Services.ListAll)
	admin.Get("/stats", cfg.Stats.Dashboard)
}
