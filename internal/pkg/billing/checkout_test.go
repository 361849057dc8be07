package billing

import (
	"context"
	"errors"
	"testing"
)

func TestCreateSubscriptionCheckout(t *testing.T) {
	svc, gw, repo := newTestService()
	seedUser(repo)
	seedPlan(repo)
	if _, err := svc.SyncPlan(context.Background(), 1); err != nil {
		t.Fatalf("SyncPlan: %v", err)
	}

	session, err := svc.CreateSubscriptionCheckout(context.Background(), SubscriptionCheckoutInput{
		UserID:     7,
		CustomerID: "cus_1",
		PlanID:     1,
		Interval:   IntervalYearly,
		SuccessURL: "https://salonluxe.test/billing/success",
		CancelURL:  "https://salonluxe.test/billing/cancel",
	})
	if err != nil {
		t.Fatalf("CreateSubscriptionCheckout: %v", err)
	}
	if session.URL == "" {
		t.Fatal("expected a redirect url")
	}

	in := gw.checkouts[len(gw.checkouts)-1]
	if in.Mode != CheckoutModeSubscription {
		t.Fatalf("mode = %q, want subscription", in.Mode)
	}
	if in.TrialDays != 14 {
		t.Fatalf("trial days = %d, want 14", in.TrialDays)
	}
	if in.Metadata["user_id"] != "7" || in.Metadata["plan_id"] != "1" || in.Metadata["interval"] != "yearly" {
		t.Fatalf("checkout metadata = %v", in.Metadata)
	}

	plan, _ := repo.GetPlan(1)
	if in.PriceID != PlanPriceRef(plan, IntervalYearly).ID() {
		t.Fatalf("checkout price %q is not the yearly reference", in.PriceID)
	}
}

func TestCreateSubscriptionCheckoutRequiresSync(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	seedPlan(repo)

	_, err := svc.CreateSubscriptionCheckout(context.Background(), SubscriptionCheckoutInput{
		UserID: 7, CustomerID: "cus_1", PlanID: 1, Interval: IntervalMonthly,
	})
	if !errors.Is(err, ErrNotSynced) {
		t.Fatalf("err = %v, want ErrNotSynced", err)
	}
}

func TestCreateSubscriptionCheckoutInactivePlan(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	plan := seedPlan(repo)
	plan.IsActive = false

	_, err := svc.CreateSubscriptionCheckout(context.Background(), SubscriptionCheckoutInput{
		UserID: 7, CustomerID: "cus_1", PlanID: 1, Interval: IntervalMonthly,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateSubscriptionCheckoutUnpricedInterval(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	plan := seedPlan(repo)
	plan.PriceYearlyCents = 0

	_, err := svc.CreateSubscriptionCheckout(context.Background(), SubscriptionCheckoutInput{
		UserID: 7, CustomerID: "cus_1", PlanID: 1, Interval: IntervalYearly,
	})
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("err = %v, want ErrNoPrice", err)
	}
}

func TestCreateCreditCheckout(t *testing.T) {
	svc, gw, repo := newTestService()
	seedUser(repo)
	seedPackage(repo)
	if _, err := svc.SyncCreditPackage(context.Background(), 3); err != nil {
		t.Fatalf("SyncCreditPackage: %v", err)
	}

	if _, err := svc.CreateCreditCheckout(context.Background(), CreditCheckoutInput{
		UserID:     7,
		CustomerID: "cus_1",
		PackageID:  3,
		SuccessURL: "https://salonluxe.test/credits/success",
		CancelURL:  "https://salonluxe.test/credits/cancel",
	}); err != nil {
		t.Fatalf("CreateCreditCheckout: %v", err)
	}

	in := gw.checkouts[len(gw.checkouts)-1]
	if in.Mode != CheckoutModePayment {
		t.Fatalf("mode = %q, want payment", in.Mode)
	}
	// 500 base + 50 bonus, so the webhook can grant without a lookup.
	if in.Metadata["credits"] != "550" {
		t.Fatalf("credits metadata = %q, want 550", in.Metadata["credits"])
	}
}

func TestCreateCreditCheckoutRequiresSync(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	seedPackage(repo)

	_, err := svc.CreateCreditCheckout(context.Background(), CreditCheckoutInput{
		UserID: 7, CustomerID: "cus_1", PackageID: 3,
	})
	if !errors.Is(err, ErrNotSynced) {
		t.Fatalf("err = %v, want ErrNotSynced", err)
	}
}
