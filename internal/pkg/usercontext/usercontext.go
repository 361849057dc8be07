// Package usercontext carries the per-request identity resolved from the web
// session: the salon account, its admin flag and the effective plan tier that
// entitlement checks in the handlers read.
package usercontext

import "github.com/gofiber/fiber/v2"

// ContextKey is the fiber Locals slot the user context middleware fills.
const ContextKey = "USER_CONTEXT"

// UserContext is the resolved identity for one request. Plan holds the
// effective plan tier (starter, studio or chain) as reconciled from the
// billing mirror and cached in the session; it is never read from client
// input.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
	Plan       string `json:"plan"`
}

// Anonymous is the context applied to requests without a valid session.
func Anonymous() UserContext {
	return UserContext{}
}

// GetUserContext returns the context the middleware stored for this request,
// or an anonymous one when the middleware did not run.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(ContextKey).(UserContext); ok {
		return ctx
	}
	return Anonymous()
}
