package billing

import (
	"context"
	"strconv"
)

// SubscriptionCheckoutInput describes a recurring-subscription checkout.
// CustomerID must already be resolved via GetOrCreateCustomer.
type SubscriptionCheckoutInput struct {
	UserID     uint
	CustomerID string
	PlanID     uint
	Interval   Interval
	SuccessURL string
	CancelURL  string
}

// CreditCheckoutInput describes a one-time credit package checkout.
type CreditCheckoutInput struct {
	UserID     uint
	CustomerID string
	PackageID  uint
	SuccessURL string
	CancelURL  string
}

// CreateSubscriptionCheckout builds a Stripe checkout session for one unit of
// the plan's price for the requested interval. The plan must have been
// synchronized first; this never synchronizes implicitly, so the side effect
// stays explicit and testable.
func (s *Service) CreateSubscriptionCheckout(ctx context.Context, in SubscriptionCheckoutInput) (*CheckoutSession, error) {
	plan, err := s.repo.GetPlan(in.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrNotFound
	}

	iv := ParseInterval(string(in.Interval))
	if PriceForInterval(plan, iv) <= 0 {
		return nil, ErrNoPrice
	}
	ref := PlanPriceRef(plan, iv)
	if !ref.IsSynced() {
		return nil, ErrNotSynced
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutSessionInput{
		Mode:       CheckoutModeSubscription,
		CustomerID: in.CustomerID,
		PriceID:    ref.ID(),
		TrialDays:  int64(plan.TrialDays),
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
		Metadata: map[string]string{
			"user_id":  strconv.FormatUint(uint64(in.UserID), 10),
			"plan_id":  strconv.FormatUint(uint64(plan.ID), 10),
			"interval": string(iv),
		},
	})
}

// CreateCreditCheckout builds a one-time payment session for a credit
// package. Metadata carries the total grantable credits so the webhook
// reconciler can grant them without a second lookup.
func (s *Service) CreateCreditCheckout(ctx context.Context, in CreditCheckoutInput) (*CheckoutSession, error) {
	pkg, err := s.repo.GetCreditPackage(in.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.StripePriceID == "" {
		return nil, ErrNotSynced
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutSessionInput{
		Mode:       CheckoutModePayment,
		CustomerID: in.CustomerID,
		PriceID:    pkg.StripePriceID,
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
		Metadata: map[string]string{
			"user_id":    strconv.FormatUint(uint64(in.UserID), 10),
			"package_id": strconv.FormatUint(uint64(pkg.ID), 10),
			"credits":    strconv.FormatInt(pkg.TotalCredits(), 10),
		},
	})
}

// CreatePortalSession builds a self-service billing portal session.
func (s *Service) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	return s.gateway.CreatePortalSession(ctx, customerID, returnURL)
}
