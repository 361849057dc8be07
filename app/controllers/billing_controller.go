package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/salonluxe/SalonLuxe/app/models"
	"github.com/salonluxe/SalonLuxe/app/repository"
	"github.com/salonluxe/SalonLuxe/internal/pkg/billing"
	"github.com/salonluxe/SalonLuxe/internal/pkg/database"
	"github.com/salonluxe/SalonLuxe/internal/pkg/env"
	"github.com/salonluxe/SalonLuxe/internal/pkg/jobqueue"
	"github.com/salonluxe/SalonLuxe/internal/pkg/mail"
	metrics "github.com/salonluxe/SalonLuxe/internal/pkg/metrics/counter"
	"github.com/salonluxe/SalonLuxe/internal/pkg/session"
	"github.com/salonluxe/SalonLuxe/internal/pkg/usercontext"
)

const billingRequestTimeout = 15 * time.Second

var validate = validator.New()

func billingService() *billing.Service {
	return billing.NewServiceFromDB(database.GetDB(), billing.NewStripeGatewayFromEnv())
}

func billingBaseURL() string {
	return strings.TrimRight(env.GetEnv("APP_BASE_URL", "http://localhost:4000"), "/")
}

type subscriptionCheckoutRequest struct {
	PlanID   uint   `form:"plan_id" validate:"required,gt=0"`
	Interval string `form:"interval" validate:"required"`
}

// HandleSubscriptionCheckout starts a Stripe-hosted checkout for a plan and
// interval and redirects the browser to the gateway.
func HandleSubscriptionCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	var req subscriptionCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid checkout request"}).Redirect("/pricing")
	}
	if err := validate.Struct(&req); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please choose a plan and billing interval"}).Redirect("/pricing")
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	customerID, err := svc.GetOrCreateCustomer(ctx, userCtx.UserID)
	if err != nil {
		log.Errorf("billing: customer resolution for user %d failed: %v", userCtx.UserID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Billing account could not be prepared"}).Redirect("/pricing")
	}

	sessionOut, err := svc.CreateSubscriptionCheckout(ctx, billing.SubscriptionCheckoutInput{
		UserID:     userCtx.UserID,
		CustomerID: customerID,
		PlanID:     req.PlanID,
		Interval:   billing.ParseInterval(req.Interval),
		SuccessURL: billingBaseURL() + "/billing/success",
		CancelURL:  billingBaseURL() + "/billing/cancelled",
	})
	if err != nil {
		log.Errorf("billing: subscription checkout for user %d failed: %v", userCtx.UserID, err)
		msg := "Checkout could not be started"
		if errors.Is(err, billing.ErrNotSynced) || errors.Is(err, billing.ErrNoPrice) {
			msg = "This plan is not available for purchase right now"
		}
		return flash.WithError(c, fiber.Map{"type": "error", "message": msg}).Redirect("/pricing")
	}

	_ = metrics.AddCheckoutSession("subscription")
	return c.Redirect(sessionOut.URL, fiber.StatusSeeOther)
}

type creditCheckoutRequest struct {
	PackageID uint `form:"package_id" validate:"required,gt=0"`
}

// HandleCreditCheckout starts a one-time checkout for a credit package.
func HandleCreditCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	var req creditCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid checkout request"}).Redirect("/account")
	}
	if err := validate.Struct(&req); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please choose a credit package"}).Redirect("/account")
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	customerID, err := svc.GetOrCreateCustomer(ctx, userCtx.UserID)
	if err != nil {
		log.Errorf("billing: customer resolution for user %d failed: %v", userCtx.UserID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Billing account could not be prepared"}).Redirect("/account")
	}

	sessionOut, err := svc.CreateCreditCheckout(ctx, billing.CreditCheckoutInput{
		UserID:     userCtx.UserID,
		CustomerID: customerID,
		PackageID:  req.PackageID,
		SuccessURL: billingBaseURL() + "/billing/success",
		CancelURL:  billingBaseURL() + "/billing/cancelled",
	})
	if err != nil {
		log.Errorf("billing: credit checkout for user %d failed: %v", userCtx.UserID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Checkout could not be started"}).Redirect("/account")
	}

	_ = metrics.AddCheckoutSession("payment")
	return c.Redirect(sessionOut.URL, fiber.StatusSeeOther)
}

// HandleBillingPortal redirects to the Stripe self-service billing portal.
func HandleBillingPortal(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	customerID, err := svc.GetOrCreateCustomer(ctx, userCtx.UserID)
	if err != nil {
		log.Errorf("billing: customer resolution for user %d failed: %v", userCtx.UserID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Billing account could not be prepared"}).Redirect("/account")
	}

	portal, err := svc.CreatePortalSession(ctx, customerID, billingBaseURL()+"/account")
	if err != nil {
		log.Errorf("billing: portal session for user %d failed: %v", userCtx.UserID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Billing portal is unavailable right now"}).Redirect("/account")
	}
	return c.Redirect(portal.URL, fiber.StatusSeeOther)
}

// ownedSubscription loads a mirrored subscription and verifies it belongs to
// the logged-in user. Lifecycle operations must never act on foreign rows.
func ownedSubscription(userID uint, subscriptionID string) (*models.BillingSubscription, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, errors.New("subscription id is required")
	}
	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByStripeID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, errors.New("subscription does not belong to this account")
	}
	return sub, nil
}

func handleLifecycleAction(c *fiber.Ctx, operation string, action func(ctx context.Context, svc *billing.Service, sub *models.BillingSubscription) error) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	sub, err := ownedSubscription(userCtx.UserID, c.FormValue("subscription_id"))
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Subscription not found"}).Redirect("/account")
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	if err := action(ctx, svc, sub); err != nil {
		log.Errorf("billing: %s for subscription %s failed: %v", operation, sub.StripeSubscriptionID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "The request could not be completed"}).Redirect("/account")
	}

	_ = metrics.AddLifecycleRequest(operation)
	// The local mirror updates when Stripe echoes the change back as a
	// webhook event, not here.
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Request submitted. Your subscription will update shortly."}).Redirect("/account")
}

// HandleSubscriptionCancel schedules a cancellation at the period boundary.
func HandleSubscriptionCancel(c *fiber.Ctx) error {
	return handleLifecycleAction(c, "cancel", func(ctx context.Context, svc *billing.Service, sub *models.BillingSubscription) error {
		return svc.CancelSubscription(ctx, sub.StripeSubscriptionID)
	})
}

// HandleSubscriptionCancelNow terminates a subscription immediately.
func HandleSubscriptionCancelNow(c *fiber.Ctx) error {
	return handleLifecycleAction(c, "cancel_now", func(ctx context.Context, svc *billing.Service, sub *models.BillingSubscription) error {
		return svc.CancelSubscriptionImmediately(ctx, sub.StripeSubscriptionID)
	})
}

// HandleSubscriptionPause suspends invoicing for a subscription.
func HandleSubscriptionPause(c *fiber.Ctx) error {
	return handleLifecycleAction(c, "pause", func(ctx context.Context, svc *billing.Service, sub *models.BillingSubscription) error {
		return svc.PauseSubscription(ctx, sub.StripeSubscriptionID)
	})
}

// HandleSubscriptionResume clears a pause and resumes invoicing.
func HandleSubscriptionResume(c *fiber.Ctx) error {
	return handleLifecycleAction(c, "resume", func(ctx context.Context, svc *billing.Service, sub *models.BillingSubscription) error {
		return svc.ResumeSubscription(ctx, sub.StripeSubscriptionID)
	})
}

// HandleSubscriptionChangePlan swaps a subscription to another plan or
// interval with proration.
func HandleSubscriptionChangePlan(c *fiber.Ctx) error {
	priceID, err := resolvePriceRef(c.FormValue("plan_id"), c.FormValue("interval"))
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "The selected plan is not available"}).Redirect("/account")
	}
	return handleLifecycleAction(c, "change_plan", func(ctx context.Context, svc *billing.Service, sub *models.BillingSubscription) error {
		return svc.ChangePlan(ctx, sub.StripeSubscriptionID, priceID)
	})
}

// HandleProrationPreview returns the simulated cost of a plan change as JSON.
// Preview is advisory; failures degrade to available=false instead of an
// error so the plan-change form still works without the number.
func HandleProrationPreview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	sub, err := ownedSubscription(userCtx.UserID, c.Query("subscription_id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription_not_found"})
	}
	priceID, err := resolvePriceRef(c.Query("plan_id"), c.Query("interval"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "plan_not_available"})
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	preview, err := svc.PreviewProration(ctx, sub.StripeSubscriptionID, priceID)
	if err != nil {
		log.Warnf("billing: proration preview for subscription %s failed: %v", sub.StripeSubscriptionID, err)
		return c.JSON(fiber.Map{"available": false})
	}
	return c.JSON(fiber.Map{
		"available":          true,
		"immediate_cents":    preview.ImmediateCents,
		"next_invoice_cents": preview.NextInvoiceCents,
		"cutover_at":         preview.CutoverAt,
	})
}

func resolvePriceRef(planIDRaw, intervalRaw string) (string, error) {
	planID, err := parseUintField(planIDRaw)
	if err != nil {
		return "", err
	}
	plan, err := repository.GetGlobalFactory().GetPlanRepository().GetByID(planID)
	if err != nil {
		return "", err
	}
	if !plan.IsActive {
		return "", errors.New("plan is not active")
	}
	ref := billing.PlanPriceRef(plan, billing.ParseInterval(intervalRaw))
	if !ref.IsSynced() {
		return "", billing.ErrNotSynced
	}
	return ref.ID(), nil
}

func parseUintField(raw string) (uint, error) {
	var id uint
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &id); err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// HandleUserBillingResync recomputes the effective plan from the local mirror
// and refreshes the session copy.
func HandleUserBillingResync(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	effectivePlan, err := svc.ReconcileUserPlan(ctx, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Plan re-sync failed"}).Redirect("/account")
	}

	_ = session.SetSessionValue(c, "user_plan", effectivePlan)
	msg := fmt.Sprintf("Plan recalculated. Active plan: %s", effectivePlan)
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect("/account")
}

// HandleStripeWebhook ingests gateway webhook events: verify the signature,
// persist the delivery exactly once, then dispatch to the reconciler.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), billingRequestTimeout)
	defer cancel()

	event, verifyErr := billing.VerifyWebhook(rawBody, signature, secret)
	if verifyErr != nil {
		// Keep the rejected delivery for the audit trail, then refuse it.
		if _, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
			PayloadJSON:    string(rawBody),
			SignatureValid: false,
		}); err == nil && stored != nil {
			_ = svc.MarkWebhookProcessed(ctx, stored.ID, verifyErr)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		StripeEventID:  event.ID,
		EventType:      string(event.Type),
		PayloadJSON:    string(rawBody),
		SignatureValid: true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && !stored.FailedProcessing() {
		// Clean duplicates are acknowledged without work. A redelivery whose
		// first dispatch failed falls through and gets processed again.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	procErr := newBillingDispatcher(svc).Dispatch(ctx, event)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, procErr)
	if procErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
	}

	_ = metrics.AddWebhookEvent(string(event.Type))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// newBillingDispatcher wires the webhook event kinds the engine reacts to.
func newBillingDispatcher(svc *billing.Service) *billing.Dispatcher {
	d := billing.NewDispatcher()

	applySubscription := func(ctx context.Context, event stripe.Event) error {
		norm, err := billing.ParseSubscriptionEvent(event)
		if err != nil {
			return err
		}
		_, _, err = svc.ApplySubscriptionEvent(ctx, norm)
		return err
	}
	d.Register(billing.EventSubscriptionCreated, applySubscription)
	d.Register(billing.EventSubscriptionUpdated, applySubscription)
	d.Register(billing.EventSubscriptionDeleted, applySubscription)

	d.Register(billing.EventCheckoutCompleted, func(ctx context.Context, event stripe.Event) error {
		return handleCheckoutCompleted(ctx, svc, event)
	})

	d.Register(billing.EventInvoicePaid, func(ctx context.Context, event stripe.Event) error {
		log.Infof("billing: invoice paid, event %s", event.ID)
		return nil
	})
	d.Register(billing.EventInvoicePaymentFailed, func(ctx context.Context, event stripe.Event) error {
		return handleInvoicePaymentFailed(event)
	})

	return d
}

// handleCheckoutCompleted grants purchased credits for payment-mode sessions.
// Subscription-mode sessions carry no work here; the subscription events that
// follow drive the mirror.
func handleCheckoutCompleted(ctx context.Context, svc *billing.Service, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}
	if sess.Mode != stripe.CheckoutSessionModePayment {
		return nil
	}

	userID, err := parseUintField(sess.Metadata["user_id"])
	if err != nil {
		return errors.New("checkout session metadata is missing user_id")
	}
	var credits int64
	if _, err := fmt.Sscanf(sess.Metadata["credits"], "%d", &credits); err != nil || credits <= 0 {
		return errors.New("checkout session metadata is missing credits")
	}

	if err := svc.GrantPackageCredits(ctx, userID, credits); err != nil {
		return err
	}
	_ = metrics.AddCreditsGranted(credits)
	log.Infof("billing: granted %d credits to user %d from checkout %s", credits, userID, sess.ID)
	return nil
}

// handleInvoicePaymentFailed notifies the salon owner via a background email.
func handleInvoicePaymentFailed(event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}
	if invoice.Customer == nil || invoice.Customer.ID == "" {
		log.Warnf("billing: payment-failed event %s has no customer", event.ID)
		return nil
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByStripeCustomerID(invoice.Customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("billing: payment-failed event %s for unknown customer %s", event.ID, invoice.Customer.ID)
			return nil
		}
		return err
	}

	payload := jobqueue.BillingEmailJobPayload{
		To:      user.Email,
		Subject: "SalonLuxe: payment failed",
		Body:    mail.PaymentFailedBody(user.Name),
	}
	_, err = jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeBillingEmail, payload.ToMap())
	return err
}
