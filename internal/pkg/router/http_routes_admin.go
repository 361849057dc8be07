package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonluxe/SalonLuxe/app/controllers"
	"github.com/salonluxe/SalonLuxe/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/billing", controllers.HandleAdminDashboard)
	adminGroup.Get("/billing/webhook-events", controllers.HandleAdminWebhookEvents)
}
