package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonluxe/SalonLuxe/app/controllers"
	"github.com/salonluxe/SalonLuxe/internal/pkg/middleware"
	"github.com/salonluxe/SalonLuxe/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controller with repositories
	controllers.InitializeAdminController()

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context
	// All user information is available via usercontext.GetUserContext(c)
	return c.Next()
}
