package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// Install HttpRouter first to initialize the session store and the global
	// UserContext middleware. Then register API routes which depend on that
	// middleware (e.g. RequireAPISessionAuth).
	setup(app, NewHttpRouter(), NewApiRouter())
}
func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
