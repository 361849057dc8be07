package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/salonluxe/SalonLuxe/internal/pkg/constants"
)

// HandleBillingSuccess is the checkout success return URL. The actual state
// change arrives through the webhook; this only greets the returning user.
func HandleBillingSuccess(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "success",
		"message": "Thank you! Your payment is being processed and your account will update shortly.",
	}
	flash.WithSuccess(c, fm)
	return c.Redirect(constants.AccountRoute, fiber.StatusSeeOther)
}

// HandleBillingCancelled is the checkout cancel return URL.
func HandleBillingCancelled(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "info",
		"message": "Checkout cancelled. No charge was made.",
	}
	flash.WithInfo(c, fm)
	return c.Redirect(constants.PricingRoute, fiber.StatusSeeOther)
}

// HandleFlashRateLimit sets a flash error when the request rate limit hits.
func HandleFlashRateLimit(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "error",
		"message": "Too many requests. Please wait a moment and try again.",
	}
	flash.WithError(c, fm)
	return c.Redirect(constants.PublicRoute, fiber.StatusSeeOther)
}
