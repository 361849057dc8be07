package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/salonluxe/SalonLuxe/app/controllers"
	"github.com/salonluxe/SalonLuxe/internal/pkg/env"
	"github.com/salonluxe/SalonLuxe/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)

	// Account
	group.Get("/account", middleware.RequireAuth, controllers.HandleGetAccount)
	group.Post("/account/settings", middleware.RequireAuth, controllers.HandleUpdateAccountSettings)

	// Checkout and portal
	group.Post("/billing/checkout/subscription", middleware.RequireAuth, controllers.HandleSubscriptionCheckout)
	group.Post("/billing/checkout/credits", middleware.RequireAuth, controllers.HandleCreditCheckout)
	group.Post("/billing/portal", middleware.RequireAuth, controllers.HandleBillingPortal)

	// Subscription lifecycle
	group.Post("/billing/subscription/cancel", middleware.RequireAuth, controllers.HandleSubscriptionCancel)
	group.Post("/billing/subscription/cancel-now", middleware.RequireAuth, controllers.HandleSubscriptionCancelNow)
	group.Post("/billing/subscription/pause", middleware.RequireAuth, controllers.HandleSubscriptionPause)
	group.Post("/billing/subscription/resume", middleware.RequireAuth, controllers.HandleSubscriptionResume)
	group.Post("/billing/subscription/change-plan", middleware.RequireAuth, controllers.HandleSubscriptionChangePlan)
	group.Get("/billing/proration-preview", middleware.RequireAuth, controllers.HandleProrationPreview)
	group.Post("/billing/resync", middleware.RequireAuth, controllers.HandleUserBillingResync)

	// Admin catalog management
	group.Post("/admin/billing/plans", middleware.RequireAdmin, controllers.HandleAdminCreatePlan)
	group.Post("/admin/billing/plans/deactivate/:id", middleware.RequireAdmin, controllers.HandleAdminDeactivatePlan)
	group.Post("/admin/billing/plans/sync/:id", middleware.RequireAdmin, controllers.HandleAdminSyncPlan)
	group.Post("/admin/billing/packages", middleware.RequireAdmin, controllers.HandleAdminCreateCreditPackage)
	group.Post("/admin/billing/catalog-sweep", middleware.RequireAdmin, controllers.HandleAdminCatalogSweep)
}
