package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/salonluxe/SalonLuxe/app/models"
	"github.com/salonluxe/SalonLuxe/internal/pkg/entitlements"
)

// ApplySubscriptionEvent reconciles one normalized subscription event into
// the local mirror. Application is idempotent and ordered by event timestamp:
// a redelivered or stale event leaves state untouched. Returns the stored
// mirror row and the user's effective plan after reconciliation.
func (s *Service) ApplySubscriptionEvent(ctx context.Context, in NormalizedSubscription) (*models.BillingSubscription, string, error) {
	if strings.TrimSpace(in.StripeSubscriptionID) == "" {
		return nil, "", errors.New("billing: stripe subscription id is required")
	}

	userID := in.UserID
	if userID == 0 {
		// Metadata can be absent on subscriptions created outside checkout;
		// fall back to the mirror row if we have seen this subscription.
		if existing, err := s.repo.GetSubscriptionByStripeID(in.StripeSubscriptionID); err == nil {
			userID = existing.UserID
		}
	}
	if userID == 0 {
		return nil, "", errors.New("billing: cannot resolve local user for subscription")
	}

	sub := &models.BillingSubscription{
		UserID:               userID,
		StripeSubscriptionID: strings.TrimSpace(in.StripeSubscriptionID),
		StripePriceID:        strings.TrimSpace(in.StripePriceID),
		BillingInterval:      models.BillingIntervalUnknown,
		Status:               normalizeStatus(in.Status),
		CurrentPeriodEnd:     in.CurrentPeriodEnd,
		CancelAtPeriodEnd:    in.CancelAtPeriodEnd,
		RawPayloadJSON:       in.RawPayloadJSON,
	}
	if plan, iv, err := s.repo.FindPlanByStripePriceID(sub.StripePriceID); err == nil {
		sub.PlanID = plan.ID
		sub.BillingInterval = string(iv)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	if _, stored, err := s.repo.UpsertSubscriptionIfNewer(sub, in.EventAt); err != nil {
		return nil, "", err
	} else {
		sub = stored
	}

	effectivePlan, err := s.ReconcileUserPlan(ctx, userID)
	if err != nil {
		return sub, "", err
	}
	return sub, effectivePlan, nil
}

// ReconcileUserPlan computes and writes the best effective plan for a user
// across all entitling subscriptions.
func (s *Service) ReconcileUserPlan(ctx context.Context, userID uint) (string, error) {
	_ = ctx
	if userID == 0 {
		return "", errors.New("billing: user id is required")
	}

	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return "", err
	}

	best := entitlements.PlanStarter
	for _, sub := range subs {
		if !entitlements.IsEntitlingStatus(sub.Status) {
			continue
		}
		candidate := entitlements.PlanStarter
		if plan, err := s.repo.GetPlan(sub.PlanID); err == nil {
			candidate = entitlements.PlanForCategory(plan.Category)
		}
		if entitlements.PlanRank(candidate) > entitlements.PlanRank(best) {
			best = candidate
		}
	}

	us, err := s.repo.GetOrCreateUserSettings(userID)
	if err != nil {
		return "", err
	}
	if entitlements.NormalizePlan(us.Plan) == best {
		return string(best), nil
	}
	us.Plan = string(best)
	if err := s.repo.SaveUserSettings(us); err != nil {
		return "", err
	}
	return string(best), nil
}

// GrantPackageCredits adds the purchased credits to the user's balance.
// Callers guard idempotence via RecordWebhookEvent dedup, so a redelivered
// checkout event never grants twice.
func (s *Service) GrantPackageCredits(ctx context.Context, userID uint, credits int64) error {
	_ = ctx
	if userID == 0 || credits <= 0 {
		return errors.New("billing: user id and positive credits are required")
	}
	return s.repo.AddCredits(userID, credits)
}

func normalizeStatus(status string) string {
	st := strings.ToLower(strings.TrimSpace(status))
	switch st {
	case models.BillingStatusTrialing, models.BillingStatusActive, models.BillingStatusPastDue,
		models.BillingStatusPaused, models.BillingStatusCanceled, models.BillingStatusIncomplete,
		models.BillingStatusIncompleteExpired, models.BillingStatusUnpaid:
		return st
	default:
		return models.BillingStatusIncomplete
	}
}
