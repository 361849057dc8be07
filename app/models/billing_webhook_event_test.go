package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillingWebhookEventFailedProcessing(t *testing.T) {
	now := time.Now()
	event := &BillingWebhookEvent{StripeEventID: "evt_1", EventType: "invoice.paid"}

	assert.False(t, event.FailedProcessing(), "pending event is not a failed one")

	event.ProcessedAt = &now
	assert.False(t, event.FailedProcessing(), "cleanly processed event stays a duplicate")

	event.ProcessingError = "plan lookup failed"
	assert.True(t, event.FailedProcessing(), "processed with error must be retried on redelivery")
}
