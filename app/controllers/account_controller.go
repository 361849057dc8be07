package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/salonluxe/SalonLuxe/app/models"
	"github.com/salonluxe/SalonLuxe/app/repository"
	"github.com/salonluxe/SalonLuxe/internal/pkg/database"
	"github.com/salonluxe/SalonLuxe/internal/pkg/entitlements"
	"github.com/salonluxe/SalonLuxe/internal/pkg/usercontext"
)

// HandleGetAccount returns account information for the authenticated user:
// profile, effective plan with its entitlements, credit balance and the
// mirrored subscriptions.
func HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}

	plan := entitlements.NormalizePlan(settings.Plan)

	subscriptions := make([]fiber.Map, 0, len(subs))
	for _, sub := range subs {
		subscriptions = append(subscriptions, fiber.Map{
			"stripe_subscription_id": sub.StripeSubscriptionID,
			"status":                 sub.Status,
			"interval":               sub.BillingInterval,
			"plan_id":                sub.PlanID,
			"cancel_at_period_end":   sub.CancelAtPeriodEnd,
			"current_period_end":     formatTimePtr(sub.CurrentPeriodEnd),
		})
	}

	response := fiber.Map{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"salon_name":    account.SalonName,
		"status":        account.Status,
		"plan":          string(plan),
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"credits": fiber.Map{
			"balance": settings.CreditBalance,
		},
		"entitlements": fiber.Map{
			"max_staff_seats":   entitlements.MaxStaffSeats(plan),
			"social_scheduling": entitlements.AllowsSocialScheduling(plan),
		},
		"preferences": fiber.Map{
			"reminder_emails": settings.PrefReminderEmails,
			"weekly_report":   settings.PrefWeeklyReport,
		},
		"subscriptions": subscriptions,
	}

	return c.JSON(response)
}

type accountSettingsRequest struct {
	ReminderEmails string `form:"reminder_emails"`
	WeeklyReport   string `form:"weekly_report"`
}

// HandleUpdateAccountSettings stores notification preferences. Plan and
// credit balance are deliberately not editable here; those belong to the
// billing reconciler.
func HandleUpdateAccountSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	var req accountSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid settings"}).Redirect("/account")
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Settings could not be loaded"}).Redirect("/account")
	}

	settings.PrefReminderEmails = req.ReminderEmails == "on" || req.ReminderEmails == "true"
	settings.PrefWeeklyReport = req.WeeklyReport == "on" || req.WeeklyReport == "true"

	if err := db.Save(settings).Error; err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Settings could not be saved"}).Redirect("/account")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Settings saved"}).Redirect("/account")
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
