package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonluxe/SalonLuxe/app/controllers"
	"github.com/salonluxe/SalonLuxe/app/models"
	"github.com/salonluxe/SalonLuxe/internal/pkg/database"
	"github.com/salonluxe/SalonLuxe/internal/pkg/session"
	"github.com/salonluxe/SalonLuxe/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a usercontext.UserContext
// once per request, so handlers and route guards never read the session
// store themselves.
func UserContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return continueAnonymous(c)
	}

	userID := sess.Get(controllers.USER_ID)
	if userID == nil {
		return continueAnonymous(c)
	}

	username := session.GetSessionValue(c, controllers.USER_NAME)
	isAdmin := sess.Get(controllers.USER_IS_ADMIN)

	// Session-first plan lookup. Login, billing resync and the webhook
	// handlers refresh the session copy, so the settings table is only hit
	// on a cold session; a miss falls back to the free starter tier.
	plan := session.GetSessionValue(c, "user_plan")
	if plan == "" {
		plan = "starter"
		if db := database.GetDB(); db != nil {
			if us, err := models.GetOrCreateUserSettings(db, userID.(uint)); err == nil && us != nil && us.Plan != "" {
				plan = us.Plan
			}
		}
		_ = session.SetSessionValue(c, "user_plan", plan)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Plan:       plan,
	}
	c.Locals(usercontext.ContextKey, userCtx)

	// Route guards read these plain locals instead of the struct.
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)
	c.Locals(controllers.USER_NAME, username)
	c.Locals(controllers.USER_ID, userID.(uint))

	return c.Next()
}

func continueAnonymous(c *fiber.Ctx) error {
	c.Locals(usercontext.ContextKey, usercontext.Anonymous())
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
	return c.Next()
}
