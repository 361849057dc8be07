package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonluxe/SalonLuxe/app/repository"
)

// Global admin controller instance
var adminController *AdminController

// InitializeAdminController initializes the global admin controller with repositories
func InitializeAdminController() {
	repos := repository.GetGlobalRepositories()
	adminController = NewAdminController(repos)
}

// GetAdminController returns the global admin controller instance
func GetAdminController() *AdminController {
	if adminController == nil {
		InitializeAdminController()
	}
	return adminController
}

// Adapter functions to maintain compatibility with the router

// HandleAdminDashboard - Adapter for the billing dashboard
func HandleAdminDashboard(c *fiber.Ctx) error {
	return GetAdminController().HandleDashboard(c)
}

// HandleAdminWebhookEvents - Adapter for the webhook event audit list
func HandleAdminWebhookEvents(c *fiber.Ctx) error {
	return GetAdminController().HandleWebhookEvents(c)
}

// HandleAdminCreatePlan - Adapter for plan creation
func HandleAdminCreatePlan(c *fiber.Ctx) error {
	return GetAdminController().HandleCreatePlan(c)
}

// HandleAdminDeactivatePlan - Adapter for plan retirement
func HandleAdminDeactivatePlan(c *fiber.Ctx) error {
	return GetAdminController().HandleDeactivatePlan(c)
}

// HandleAdminCreateCreditPackage - Adapter for credit package creation
func HandleAdminCreateCreditPackage(c *fiber.Ctx) error {
	return GetAdminController().HandleCreateCreditPackage(c)
}

// HandleAdminCatalogSweep - Adapter for the manual catalog sweep trigger
func HandleAdminCatalogSweep(c *fiber.Ctx) error {
	return GetAdminController().HandleCatalogSweep(c)
}

// HandleAdminSyncPlan - Adapter for a single plan sync trigger
func HandleAdminSyncPlan(c *fiber.Ctx) error {
	return GetAdminController().HandleSyncPlan(c)
}
