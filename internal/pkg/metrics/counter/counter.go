package counter

import (
	"context"
	"strconv"

	"github.com/salonluxe/SalonLuxe/internal/pkg/cache"
)

const (
	webhookEventsKey     = "billing:counters:webhook_events"
	checkoutSessionsKey  = "billing:counters:checkout_sessions"
	creditsGrantedKey    = "billing:counters:credits_granted"
	lifecycleRequestsKey = "billing:counters:lifecycle_requests"
)

// AddWebhookEvent increments the processed-webhook counter for an event type
func AddWebhookEvent(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookEventsKey, eventType, 1).Err()
}

// AddCheckoutSession increments the created-checkout counter for a mode
func AddCheckoutSession(mode string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, checkoutSessionsKey, mode, 1).Err()
}

// AddCreditsGranted adds granted credits to the running total
func AddCreditsGranted(credits int64) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, creditsGrantedKey, "total", credits).Err()
}

// AddLifecycleRequest increments the counter for a lifecycle operation
func AddLifecycleRequest(operation string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, lifecycleRequestsKey, operation, 1).Err()
}

// Snapshot reads all billing counters for the admin stats endpoint
func Snapshot() (map[string]map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	out := make(map[string]map[string]int64)
	keys := map[string]string{
		"webhook_events":     webhookEventsKey,
		"checkout_sessions":  checkoutSessionsKey,
		"credits_granted":    creditsGrantedKey,
		"lifecycle_requests": lifecycleRequestsKey,
	}
	for name, key := range keys {
		data, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		section := make(map[string]int64, len(data))
		for field, raw := range data {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				section[field] = v
			}
		}
		out[name] = section
	}
	return out, nil
}
