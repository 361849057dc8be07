package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/salonluxe/SalonLuxe/app/controllers"
	"github.com/salonluxe/SalonLuxe/internal/pkg/middleware"
)

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the versioned JSON API.
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 routes to the given group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/pricing", s.GetPricing)
	router.Get("/account", middleware.RequireAPISessionAuth, s.GetAccount)
	router.Get("/billing/proration-preview", middleware.RequireAPISessionAuth, s.GetProrationPreview)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetPricing returns the purchasable catalog.
func (s *APIServer) GetPricing(c *fiber.Ctx) error {
	return controllers.HandlePricing(c)
}

// GetAccount returns account information for the authenticated session.
func (s *APIServer) GetAccount(c *fiber.Ctx) error {
	return controllers.HandleGetAccount(c)
}

// GetProrationPreview simulates the cost of a plan change.
func (s *APIServer) GetProrationPreview(c *fiber.Ctx) error {
	return controllers.HandleProrationPreview(c)
}
