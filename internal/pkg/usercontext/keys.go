package usercontext

// Locals keys the route guards read. The user context middleware sets them
// from the session written at login, so guards never touch the session store.
const (
	KeyFromProtected = "from_protected"
	KeyIsAdmin       = "isAdmin"
)
