package models

import "time"

// BillingWebhookEvent stores Stripe webhook payloads with deduplication
// metadata for idempotent processing. The unique index on StripeEventID makes
// redeliveries no-ops at the persistence layer.
type BillingWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StripeEventID   string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_billing_webhook_events_event_id" json:"stripe_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// FailedProcessing reports whether the event was dispatched and left an
// error. A redelivery of such an event is dispatched again instead of being
// acknowledged as a duplicate.
func (e *BillingWebhookEvent) FailedProcessing() bool {
	return e.ProcessedAt != nil && e.ProcessingError != ""
}
