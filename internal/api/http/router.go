package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicsys/clinic-services/internal/api/http/handlers"
	"github.com/clinicsys/clinic-services/internal/auth"
	"github.com/clinicsys/clinic-services/internal/domain"
)

// AuthRouteConfig bundles dependencies for the auth service routes.
type AuthRouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Authenticator *auth.RequestAuthenticator
}

// RegisterAuthRoutes wires the auth service HTTP surface. The filter runs on
// every route; register/login/refresh stay reachable anonymously because the
// filter never rejects, it only installs context when a valid token shows up.
func RegisterAuthRoutes(app *fiber.App, cfg AuthRouteConfig) {
	app.Use(cfg.Authenticator.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
}

// UserRouteConfig bundles dependencies for the user service routes.
type UserRouteConfig struct {
	Health        *handlers.HealthHandler
	Profiles      *handlers.ProfileHandler
	Authenticator *auth.RequestAuthenticator
}

// RegisterUserRoutes wires the user service HTTP surface.
func RegisterUserRoutes(app *fiber.App, cfg UserRouteConfig) {
	app.Use(cfg.Authenticator.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/api/user/public/ping", cfg.Profiles.PublicPing)

	profiles := app.Group("/api/user/profiles")

	me := profiles.Group("/me", auth.RequireAuthenticated())
	me.Get("", cfg.Profiles.GetMine)
	me.Post("", cfg.Profiles.CreateMine)
	me.Put("", cfg.Profiles.UpdateMine)
	me.Get("/completion", cfg.Profiles.Completion)
	me.Patch("/:section", cfg.Profiles.PatchSection)

	// Admin guards attach per route; a group-level guard on /profiles would
	// also match the /me subtree. /search registers before /:id so the
	// param route does not capture it.
	profiles.Get("", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.List)
	profiles.Get("/search", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.Search)
	profiles.Get("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.GetByID)
	profiles.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.UpdateByID)
	profiles.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.DeleteByID)
}
