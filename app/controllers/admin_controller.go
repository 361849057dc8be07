package controllers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/salonluxe/SalonLuxe/app/models"
	"github.com/salonluxe/SalonLuxe/app/repository"
	"github.com/salonluxe/SalonLuxe/internal/pkg/jobqueue"
	metrics "github.com/salonluxe/SalonLuxe/internal/pkg/metrics/counter"
)

// AdminController handles admin-related HTTP requests using repository pattern
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{
		repos: repos,
	}
}

// HandleDashboard returns the operational overview: account counts,
// subscription mirror counts per status and the billing counters.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get user count", err)
	}

	totalPlans, err := ac.repos.Plan.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get plan count", err)
	}

	subscriptionCounts := fiber.Map{}
	for _, status := range []string{
		models.BillingStatusActive,
		models.BillingStatusTrialing,
		models.BillingStatusPastDue,
		models.BillingStatusPaused,
		models.BillingStatusCanceled,
	} {
		count, err := ac.repos.Subscription.CountByStatus(status)
		if err != nil {
			return ac.handleError(c, "Failed to count subscriptions", err)
		}
		subscriptionCounts[status] = count
	}

	counters, err := metrics.Snapshot()
	if err != nil {
		log.Warnf("admin: billing counter snapshot failed: %v", err)
		counters = nil
	}

	queueStats, err := jobqueue.GetManager().GetQueue().GetJobStats(context.Background())
	if err != nil {
		log.Warnf("admin: job stats unavailable: %v", err)
	}

	return c.JSON(fiber.Map{
		"total_users":   totalUsers,
		"total_plans":   totalPlans,
		"subscriptions": subscriptionCounts,
		"counters":      counters,
		"job_stats":     queueStats,
	})
}

// HandleWebhookEvents lists the most recently received webhook deliveries.
func (ac *AdminController) HandleWebhookEvents(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	events, err := ac.repos.Subscription.RecentWebhookEvents(limit)
	if err != nil {
		return ac.handleError(c, "Failed to load webhook events", err)
	}

	out := make([]fiber.Map, 0, len(events))
	for _, ev := range events {
		out = append(out, fiber.Map{
			"id":              ev.ID,
			"stripe_event_id": ev.StripeEventID,
			"event_type":      ev.EventType,
			"signature_valid": ev.SignatureValid,
			"processed_at":    formatTimePtr(ev.ProcessedAt),
			"processing_err":  ev.ProcessingError,
			"received_at":     ev.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"events": out})
}

// HandleCreatePlan creates a plan and enqueues its catalog sync.
func (ac *AdminController) HandleCreatePlan(c *fiber.Ctx) error {
	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan"})
	}
	if err := plan.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan", "message": err.Error()})
	}

	if err := ac.repos.Plan.Create(&plan); err != nil {
		return ac.handleError(c, "Failed to create plan", err)
	}
	InvalidatePricingCache()

	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypePlanSync, jobqueue.PlanSyncJobPayload{PlanID: plan.ID}.ToMap()); err != nil {
		log.Errorf("admin: failed to enqueue plan sync for plan %d: %v", plan.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleDeactivatePlan retires a plan from sale. Running subscriptions stay
// untouched and the Stripe objects are never deleted.
func (ac *AdminController) HandleDeactivatePlan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}
	if err := ac.repos.Plan.Deactivate(uint(id)); err != nil {
		return ac.handleError(c, "Failed to deactivate plan", err)
	}
	InvalidatePricingCache()
	return c.JSON(fiber.Map{"ok": true})
}

// HandleCreateCreditPackage creates a credit package and enqueues its sync.
func (ac *AdminController) HandleCreateCreditPackage(c *fiber.Ctx) error {
	var pkg models.CreditPackage
	if err := c.BodyParser(&pkg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_package"})
	}
	if err := pkg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_package", "message": err.Error()})
	}

	if err := ac.repos.CreditPackage.Create(&pkg); err != nil {
		return ac.handleError(c, "Failed to create credit package", err)
	}
	InvalidatePricingCache()

	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypePackageSync, jobqueue.PackageSyncJobPayload{PackageID: pkg.ID}.ToMap()); err != nil {
		log.Errorf("admin: failed to enqueue package sync for package %d: %v", pkg.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(pkg)
}

// HandleCatalogSweep manually triggers the catalog sweep that re-enqueues
// sync jobs for every unsynced plan and package.
func (ac *AdminController) HandleCatalogSweep(c *fiber.Ctx) error {
	if err := jobqueue.GetManager().RunCatalogSweepOnce(); err != nil {
		return ac.handleError(c, "Catalog sweep failed", err)
	}
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Catalog sweep triggered"}).Redirect("/admin/billing")
}

// HandleSyncPlan enqueues a sync job for one plan.
func (ac *AdminController) HandleSyncPlan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypePlanSync, jobqueue.PlanSyncJobPayload{PlanID: uint(id)}.ToMap()); err != nil {
		return ac.handleError(c, "Failed to enqueue plan sync", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ok": true})
}

// handleError logs and returns a consistent JSON error
func (ac *AdminController) handleError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("admin: %s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": message})
}
