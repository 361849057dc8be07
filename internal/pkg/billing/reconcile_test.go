package billing

import (
	"context"
	"testing"
	"time"

	"github.com/salonluxe/SalonLuxe/app/models"
)

func syncedTestPlan(t *testing.T, svc *Service, repo *memRepo) *models.Plan {
	t.Helper()
	seedPlan(repo)
	plan, err := svc.SyncPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("SyncPlan: %v", err)
	}
	return plan
}

func TestApplySubscriptionEventCreatesMirrorAndEntitles(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	plan := syncedTestPlan(t, svc, repo)

	end := time.Now().Add(30 * 24 * time.Hour)
	sub, effective, err := svc.ApplySubscriptionEvent(context.Background(), NormalizedSubscription{
		UserID:               7,
		StripeSubscriptionID: "sub_1",
		StripePriceID:        PlanPriceRef(plan, IntervalMonthly).ID(),
		Status:               "active",
		CurrentPeriodEnd:     &end,
		EventAt:              time.Now(),
	})
	if err != nil {
		t.Fatalf("ApplySubscriptionEvent: %v", err)
	}
	if sub.PlanID != plan.ID || sub.BillingInterval != "monthly" {
		t.Fatalf("mirror row = %+v", sub)
	}
	// Individual category plan entitles the studio tier.
	if effective != "studio" {
		t.Fatalf("effective plan = %q, want studio", effective)
	}
	us, _ := repo.GetOrCreateUserSettings(7)
	if us.Plan != "studio" {
		t.Fatalf("persisted plan = %q, want studio", us.Plan)
	}
}

func TestApplySubscriptionEventStaleEventIgnored(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	syncedTestPlan(t, svc, repo)

	newer := time.Now()
	older := newer.Add(-time.Minute)

	if _, _, err := svc.ApplySubscriptionEvent(context.Background(), NormalizedSubscription{
		UserID: 7, StripeSubscriptionID: "sub_1", Status: "canceled", EventAt: newer,
	}); err != nil {
		t.Fatalf("newer event: %v", err)
	}

	// A redelivered older event must not resurrect the subscription.
	sub, _, err := svc.ApplySubscriptionEvent(context.Background(), NormalizedSubscription{
		UserID: 7, StripeSubscriptionID: "sub_1", Status: "active", EventAt: older,
	})
	if err != nil {
		t.Fatalf("older event: %v", err)
	}
	if sub.Status != "canceled" {
		t.Fatalf("stale event overwrote status: %q", sub.Status)
	}
	us, _ := repo.GetOrCreateUserSettings(7)
	if us.Plan != "starter" {
		t.Fatalf("effective plan = %q, want starter after cancel", us.Plan)
	}
}

func TestApplySubscriptionEventIdempotentRedelivery(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	syncedTestPlan(t, svc, repo)

	in := NormalizedSubscription{
		UserID: 7, StripeSubscriptionID: "sub_1", Status: "active", EventAt: time.Now(),
	}
	first, _, err := svc.ApplySubscriptionEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	second, _, err := svc.ApplySubscriptionEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if second.ID != first.ID || second.Status != first.Status {
		t.Fatalf("redelivery changed mirror: %+v vs %+v", first, second)
	}
	subs, _ := repo.ListSubscriptionsByUser(7)
	if len(subs) != 1 {
		t.Fatalf("mirror has %d rows, want 1", len(subs))
	}
}

func TestApplySubscriptionEventResolvesUserFromMirror(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	syncedTestPlan(t, svc, repo)

	if _, _, err := svc.ApplySubscriptionEvent(context.Background(), NormalizedSubscription{
		UserID: 7, StripeSubscriptionID: "sub_1", Status: "active", EventAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	// Later events can lack the metadata, e.g. edited in the Stripe dashboard.
	sub, _, err := svc.ApplySubscriptionEvent(context.Background(), NormalizedSubscription{
		StripeSubscriptionID: "sub_1", Status: "past_due", EventAt: time.Now().Add(time.Second),
	})
	if err != nil {
		t.Fatalf("metadata-less event: %v", err)
	}
	if sub.UserID != 7 {
		t.Fatalf("user id = %d, want 7", sub.UserID)
	}
	if sub.Status != "past_due" {
		t.Fatalf("status = %q, want past_due", sub.Status)
	}
}

func TestApplySubscriptionEventUnresolvableUser(t *testing.T) {
	svc, _, _ := newTestService()
	if _, _, err := svc.ApplySubscriptionEvent(context.Background(), NormalizedSubscription{
		StripeSubscriptionID: "sub_orphan", Status: "active", EventAt: time.Now(),
	}); err == nil {
		t.Fatal("expected error for unresolvable user")
	}
}

func TestReconcileUserPlanEntitlingStatuses(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	plan := syncedTestPlan(t, svc, repo)

	cases := []struct {
		status string
		want   string
	}{
		{status: "active", want: "studio"},
		{status: "trialing", want: "studio"},
		{status: "past_due", want: "studio"},
		{status: "paused", want: "starter"},
		{status: "canceled", want: "starter"},
		{status: "unpaid", want: "starter"},
	}
	for i, tc := range cases {
		sub := testSubscription("sub_1", 7, tc.status)
		sub.PlanID = plan.ID
		if _, _, err := repo.UpsertSubscriptionIfNewer(sub, time.Now().Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("%s: upsert: %v", tc.status, err)
		}
		got, err := svc.ReconcileUserPlan(context.Background(), 7)
		if err != nil {
			t.Fatalf("%s: ReconcileUserPlan: %v", tc.status, err)
		}
		if got != tc.want {
			t.Fatalf("status %s: effective plan = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestReconcileUserPlanPicksBestAcrossSubscriptions(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)
	studioPlan := syncedTestPlan(t, svc, repo)

	chainPlan := testPlan()
	chainPlan.ID = 2
	chainPlan.Name = "Chain"
	chainPlan.Category = models.PlanCategoryOrganization
	chainPlan.IsActive = true
	repo.plans[chainPlan.ID] = chainPlan

	a := testSubscription("sub_a", 7, "active")
	a.PlanID = studioPlan.ID
	b := testSubscription("sub_b", 7, "trialing")
	b.PlanID = chainPlan.ID
	now := time.Now()
	if _, _, err := repo.UpsertSubscriptionIfNewer(a, now); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if _, _, err := repo.UpsertSubscriptionIfNewer(b, now); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	got, err := svc.ReconcileUserPlan(context.Background(), 7)
	if err != nil {
		t.Fatalf("ReconcileUserPlan: %v", err)
	}
	if got != "chain" {
		t.Fatalf("effective plan = %q, want chain", got)
	}
}

func TestGrantPackageCredits(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)

	if err := svc.GrantPackageCredits(context.Background(), 7, 550); err != nil {
		t.Fatalf("GrantPackageCredits: %v", err)
	}
	if err := svc.GrantPackageCredits(context.Background(), 7, 100); err != nil {
		t.Fatalf("second grant: %v", err)
	}
	us, _ := repo.GetOrCreateUserSettings(7)
	if us.CreditBalance != 650 {
		t.Fatalf("credit balance = %d, want 650", us.CreditBalance)
	}

	if err := svc.GrantPackageCredits(context.Background(), 7, 0); err == nil {
		t.Fatal("expected error for non-positive credits")
	}
	if err := svc.GrantPackageCredits(context.Background(), 0, 10); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "active", want: "active"},
		{in: " Trialing ", want: "trialing"},
		{in: "paused", want: "paused"},
		{in: "something_new", want: "incomplete"},
		{in: "", want: "incomplete"},
	}
	for _, tc := range cases {
		if got := normalizeStatus(tc.in); got != tc.want {
			t.Fatalf("normalizeStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
