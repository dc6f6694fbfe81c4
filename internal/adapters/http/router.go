package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/middleware"
)

// NewApp builds the fiber application with every API route registered
func NewApp(storefront *StorefrontHandler, dashboard *DashboardHandler, validator middleware.TokenValidator) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Petfood Storefront API",
		ServerHeader: "Fiber",
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"project": "petfood-storefront",
		})
	})

	api := app.Group("/api")
	api.Get("/products", storefront.ListProducts)
	api.Get("/products/:id", storefront.GetProduct)
	api.Get("/cart", storefront.GetCart)
	api.Post("/cart/items", storefront.AddToCart)
	api.Patch("/cart/items/:sku", storefront.UpdateCartItem)
	api.Delete("/cart/items/:sku", storefront.RemoveCartItem)
	api.Post("/checkout", storefront.Checkout)

	admin := api.Group("/admin")
	admin.Post("/auth/login", dashboard.Login)
	admin.Post("/auth/logout", dashboard.Logout)

	protected := admin.Group("", middleware.AuthMiddleware(validator))
	protected.Get("/auth/me", dashboard.GetMe)
	protected.Get("/events", dashboard.SSEEvents)

	staff := protected.Group("", middleware.RequireRoles(core.AdminRoleAdmin, core.AdminRoleStaff))
	staff.Get("/orders/export", dashboard.ExportOrders)
	staff.Get("/orders", dashboard.GetOrders)
	staff.Get("/orders/:id", dashboard.GetOrder)
	staff.Patch("/orders/:id/status", dashboard.UpdateOrderStatus)
	staff.Get("/products", dashboard.GetProducts)
	staff.Get("/stats", dashboard.GetSalesStats)
	staff.Get("/stats/export", dashboard.ExportSalesReport)

	owner := protected.Group("", middleware.RequireRoles(core.AdminRoleAdmin))
	owner.Patch("/products/:id/variants/:sku/price", dashboard.UpdateVariantPrice)
	owner.Patch("/products/:id/variants/:sku/stock", dashboard.UpdateVariantStock)

	return app
}
