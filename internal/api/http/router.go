package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Services       *handlers.ServicesHandler
	Requests       *handlers.RequestsHandler
	Applications   *handlers.ApplicationsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/register/user", cfg.Auth.RegisterUser)
	authGroup.Post("/register/provider", cfg.Auth.RegisterProvider)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/token/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	applications := app.Group("/providers/applications",
		cfg.AuthMiddleware.Handle, auth.Require(auth.ActionReviewApplications))
	applications.Get("/", cfg.Applications.ListPending)
	applications.Post("/:id/approve", cfg.Applications.Approve)
	applications.Post("/:id/reject", cfg.Applications.Reject)

	services := app.Group("/services")
	services.Get("/", cfg.Services.Search)
	services.Get("/my-services", cfg.AuthMiddleware.Handle,
		auth.Require(auth.ActionManageOwnServices), cfg.Services.ListOwn)
	services.Post("/", cfg.AuthMiddleware.Handle,
		auth.Require(auth.ActionCreateService), cfg.Services.Create)
	services.Get("/:id", cfg.Services.Get)
	services.Put("/:id", cfg.AuthMiddleware.Handle,
		auth.Require(auth.ActionManageOwnServices), cfg.Services.Update)
	services.Delete("/:id", cfg.AuthMiddleware.Handle,
		auth.Require(auth.ActionManageOwnServices), cfg.Services.Delete)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle)
	requests.Post("/", auth.Require(auth.ActionCreateRequest), cfg.Requests.Create)
	requests.Get("/", auth.Require(auth.ActionListRequests), cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Post("/:id/accept", auth.Require(auth.ActionDecideRequest), cfg.Requests.Accept)
	requests.Post("/:id/reject", auth.Require(auth.ActionDecideRequest), cfg.Requests.Reject)

	analytics := app.Group("/analytics",
		cfg.AuthMiddleware.Handle, auth.Require(auth.ActionViewAnalytics))
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
	analytics.Get("/users/registrations", cfg.Analytics.Registrations)
	analytics.Get("/users/search", cfg.Analytics.SearchUsers)
	analytics.Get("/requests/stats", cfg.Analytics.Requests)
	analytics.Get("/requests/search", cfg.Analytics.SearchRequests)
	analytics.Get("/providers/activity", cfg.Analytics.Providers)
	analytics.Get("/providers/search", cfg.Analytics.SearchProviders)
	analytics.Get("/export", cfg.Analytics.Export)
}
