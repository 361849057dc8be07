package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/salonluxe/SalonLuxe/app/models"
)

// EventKind is a webhook event type the engine knows how to handle.
type EventKind string

const (
	EventCheckoutCompleted    EventKind = "checkout.session.completed"
	EventSubscriptionCreated  EventKind = "customer.subscription.created"
	EventSubscriptionUpdated  EventKind = "customer.subscription.updated"
	EventSubscriptionDeleted  EventKind = "customer.subscription.deleted"
	EventInvoicePaid          EventKind = "invoice.paid"
	EventInvoicePaymentFailed EventKind = "invoice.payment_failed"
)

// VerifyWebhook authenticates a raw webhook payload against the shared
// signing secret. It fails closed: any mismatch or malformed payload is
// rejected and must never be processed.
func VerifyWebhook(payload []byte, signatureHeader, secret string) (stripe.Event, error) {
	if len(payload) == 0 || strings.TrimSpace(signatureHeader) == "" || secret == "" {
		return stripe.Event{}, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, ErrInvalidSignature
	}
	return event, nil
}

// EventHandler processes one verified webhook event.
type EventHandler func(ctx context.Context, event stripe.Event) error

// Dispatcher routes verified events over a closed set of known kinds.
// Unknown kinds are logged and dropped, never an error and never a crash.
type Dispatcher struct {
	handlers map[EventKind]EventHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind]EventHandler)}
}

func (d *Dispatcher) Register(kind EventKind, handler EventHandler) {
	d.handlers[kind] = handler
}

func (d *Dispatcher) Dispatch(ctx context.Context, event stripe.Event) error {
	handler, ok := d.handlers[EventKind(event.Type)]
	if !ok {
		log.Debugf("billing: dropping webhook event %s of unhandled kind %s", event.ID, event.Type)
		return nil
	}
	return handler(ctx, event)
}

// RecordWebhookEvent persists a webhook payload idempotently. The bool result
// is false for redeliveries, which callers treat as already-processed.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.StripeEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		StripeEventID:  eventID,
		EventType:      strings.TrimSpace(in.EventType),
		PayloadJSON:    in.PayloadJSON,
		SignatureValid: in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("billing: webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ParseSubscriptionEvent normalizes a customer.subscription.* event payload.
// The owning user is resolved from the subscription metadata written at
// checkout; EventAt is the gateway's event timestamp, which drives the
// last-write-wins guard during reconciliation.
func ParseSubscriptionEvent(event stripe.Event) (NormalizedSubscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return NormalizedSubscription{}, err
	}

	norm := NormalizedSubscription{
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		EventAt:              time.Unix(event.Created, 0),
		RawPayloadJSON:       string(event.Data.Raw),
	}
	if sub.PauseCollection != nil && sub.PauseCollection.Behavior != "" {
		norm.Status = models.BillingStatusPaused
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0)
		norm.CurrentPeriodEnd = &end
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		norm.StripePriceID = sub.Items.Data[0].Price.ID
	}
	if raw, ok := sub.Metadata["user_id"]; ok {
		if userID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			norm.UserID = uint(userID)
		}
	}
	return norm, nil
}
