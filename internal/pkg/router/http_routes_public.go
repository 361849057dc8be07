package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonluxe/SalonLuxe/app/controllers"
	"github.com/salonluxe/SalonLuxe/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Public catalog
	app.Get("/pricing", loggedInMiddleware, controllers.HandlePricing)

	// Checkout return URLs (Stripe redirects the browser here)
	app.Get("/billing/success", loggedInMiddleware, controllers.HandleBillingSuccess)
	app.Get("/billing/cancelled", loggedInMiddleware, controllers.HandleBillingCancelled)

	// Flash helpers
	app.Get("/flash/rate-limit", loggedInMiddleware, controllers.HandleFlashRateLimit)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}
