package handlers

import (
	"marmomart/internal/middleware"
	"marmomart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Routes groups every handler of the API.
type Routes struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Admin    *AdminHandler
	Accounts *AccountHandler
}

// Register mounts the API under /api/v1. Public routes are registered before
// the authenticated group so its middleware never sees them.
func (r Routes) Register(app *fiber.App, authService *services.AuthService) {
	apiV1 := app.Group("/api/v1")

	// Public routes
	r.Auth.RegisterRoutes(apiV1)
	r.Products.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	admin := protected.Group("/admin", middleware.StaffRequired())

	r.Admin.RegisterRoutes(admin)
	r.Products.RegisterAdminRoutes(admin)
	r.Orders.RegisterAdminRoutes(admin)
	r.Accounts.RegisterAdminRoutes(admin)

	r.Auth.RegisterAccountRoutes(protected)
	r.Accounts.RegisterRoutes(protected)
	r.Orders.RegisterRoutes(protected)
}
