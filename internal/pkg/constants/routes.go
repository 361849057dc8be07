package constants

// Static route constants
const (
	PublicRoute        = "/"
	PricingRoute       = "/pricing"
	AccountRoute       = "/account"
	LoginRoute         = "/login"
	StripeWebhookRoute = "/webhooks/stripe"
)
