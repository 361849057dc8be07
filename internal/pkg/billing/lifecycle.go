package billing

import "context"

// Lifecycle operations are request/response against Stripe only. The local
// mirror never changes here; Stripe echoes every transition back as a webhook
// event, and only the reconciler writes local state.

// CancelSubscription marks the subscription to cancel at the period boundary.
// It keeps serving until then; Stripe emits the terminal event at the cutoff.
func (s *Service) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return s.gateway.CancelSubscriptionAtPeriodEnd(ctx, subscriptionID)
}

// CancelSubscriptionImmediately terminates the subscription now.
func (s *Service) CancelSubscriptionImmediately(ctx context.Context, subscriptionID string) error {
	return s.gateway.CancelSubscriptionNow(ctx, subscriptionID)
}

// PauseSubscription suspends invoicing without terminating the subscription.
func (s *Service) PauseSubscription(ctx context.Context, subscriptionID string) error {
	return s.gateway.PauseSubscription(ctx, subscriptionID)
}

// ResumeSubscription clears a pause and resumes regular invoicing.
func (s *Service) ResumeSubscription(ctx context.Context, subscriptionID string) error {
	return s.gateway.ResumeSubscription(ctx, subscriptionID)
}

// ChangePlan swaps the subscription's single item to the new price with
// proration: unused time on the old price is credited and the remainder of
// the period on the new price is charged. When the charge lands is gateway
// configuration, not decided here.
func (s *Service) ChangePlan(ctx context.Context, subscriptionID, newPriceID string) error {
	if newPriceID == "" {
		return ErrNotSynced
	}
	return s.gateway.ChangeSubscriptionPrice(ctx, subscriptionID, newPriceID)
}
