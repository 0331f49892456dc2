package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lithovolt/warranty-service/internal/api/http/handlers"
	"github.com/lithovolt/warranty-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Claims         *handlers.ClaimsHandler
	Warranties     *handlers.WarrantiesHandler
	Staff          *handlers.StaffHandler
	Roles          *handlers.RolesHandler
	Inventory      *handlers.InventoryHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protectedAuth.Get("/me", cfg.Auth.Me)
	protectedAuth.Post("/password/change", cfg.Auth.ChangePassword)

	// public warranty checker
	app.Get("/warranties/verify/:serial", cfg.Warranties.Verify)

	warranties := app.Group("/warranties", cfg.AuthMiddleware.Handle)
	warranties.Post("", cfg.Warranties.Issue)
	warranties.Get("", cfg.Warranties.List)
	warranties.Get("/:id", cfg.Warranties.Get)

	claims := app.Group("/claims", cfg.AuthMiddleware.Handle)
	claims.Post("", cfg.Claims.File)
	claims.Get("", cfg.Claims.List)
	claims.Get("/:id", cfg.Claims.Get)
	claims.Get("/:id/history", cfg.Claims.History)
	claims.Post("/:id/assign", cfg.Claims.Assign)
	claims.Post("/:id/approve", cfg.Claims.Approve)
	claims.Post("/:id/reject", cfg.Claims.Reject)
	claims.Post("/:id/resolve", cfg.Claims.Resolve)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Post("", cfg.Staff.Create)
	staff.Get("", cfg.Staff.List)
	staff.Get("/:id", cfg.Staff.Get)
	staff.Patch("/:id", cfg.Staff.Update)

	roles := app.Group("/roles", cfg.AuthMiddleware.Handle)
	roles.Post("", cfg.Roles.Create)
	roles.Get("", cfg.Roles.List)
	roles.Post("/:id/grants", cfg.Roles.AddGrant)
	roles.Delete("/grants/:grantId", cfg.Roles.RemoveGrant)

	inventory := app.Group("/inventory", cfg.AuthMiddleware.Handle)
	inventory.Post("/models", cfg.Inventory.CreateModel)
	inventory.Get("/models", cfg.Inventory.ListModels)
	inventory.Post("/models/:id/serials", cfg.Inventory.RegisterSerials)
	inventory.Get("/models/:id/stock", cfg.Inventory.StockLevel)
	inventory.Post("/allocations", cfg.Inventory.Allocate)
	inventory.Post("/sales", cfg.Inventory.MarkSold)
}
