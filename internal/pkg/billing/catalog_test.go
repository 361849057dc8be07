package billing

import (
	"context"
	"testing"
)

func TestSyncPlanCreatesProductAndPrices(t *testing.T) {
	svc, gw, repo := newTestService()
	seedPlan(repo)

	plan, err := svc.SyncPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("SyncPlan: %v", err)
	}
	if plan.StripeProductID == "" {
		t.Fatal("product reference not persisted")
	}
	for _, iv := range Intervals() {
		if !PlanPriceRef(plan, iv).IsSynced() {
			t.Fatalf("interval %s not synced", iv)
		}
	}
	if gw.products != 1 {
		t.Fatalf("created %d products, want 1", gw.products)
	}
	if len(gw.recurring) != 4 {
		t.Fatalf("created %d prices, want 4", len(gw.recurring))
	}
}

func TestSyncPlanIdempotent(t *testing.T) {
	svc, gw, repo := newTestService()
	seedPlan(repo)

	first, err := svc.SyncPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("first SyncPlan: %v", err)
	}
	second, err := svc.SyncPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("second SyncPlan: %v", err)
	}

	if gw.products != 1 || len(gw.recurring) != 4 {
		t.Fatalf("second sync created remote objects: %d products, %d prices", gw.products, len(gw.recurring))
	}
	for _, iv := range Intervals() {
		if PlanPriceRef(first, iv).ID() != PlanPriceRef(second, iv).ID() {
			t.Fatalf("interval %s reference changed on resync", iv)
		}
	}
}

func TestSyncPlanSkipsUnpricedIntervals(t *testing.T) {
	svc, gw, repo := newTestService()
	plan := seedPlan(repo)
	plan.PriceQuarterlyCents = 0
	plan.PriceSixMonthsCents = 0

	synced, err := svc.SyncPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("SyncPlan: %v", err)
	}
	if len(gw.recurring) != 2 {
		t.Fatalf("created %d prices, want 2", len(gw.recurring))
	}
	if PlanPriceRef(synced, IntervalQuarterly).IsSynced() {
		t.Fatal("quarterly reference set despite zero local price")
	}
	if !PlanPriceRef(synced, IntervalYearly).IsSynced() {
		t.Fatal("yearly reference missing")
	}
}

func TestSyncPlanResumesAfterPartialFailure(t *testing.T) {
	svc, gw, repo := newTestService()
	seedPlan(repo)
	gw.failRecurringFor = IntervalSixMonths

	if _, err := svc.SyncPlan(context.Background(), 1); err == nil {
		t.Fatal("expected price-create failure")
	}

	// The product and the prices created before the failure stayed persisted.
	stored, err := repo.GetPlan(1)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.StripeProductID == "" {
		t.Fatal("product reference lost on partial failure")
	}
	if !PlanPriceRef(stored, IntervalMonthly).IsSynced() || !PlanPriceRef(stored, IntervalQuarterly).IsSynced() {
		t.Fatal("earlier interval references lost on partial failure")
	}

	gw.failRecurringFor = ""
	resumed, err := svc.SyncPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("resumed SyncPlan: %v", err)
	}
	if gw.products != 1 {
		t.Fatalf("resume recreated the product, %d products", gw.products)
	}
	if len(gw.recurring) != 4 {
		t.Fatalf("resume created %d prices total, want 4", len(gw.recurring))
	}
	for _, iv := range Intervals() {
		if !PlanPriceRef(resumed, iv).IsSynced() {
			t.Fatalf("interval %s still unsynced after resume", iv)
		}
	}
}

func TestSyncCreditPackageIdempotent(t *testing.T) {
	svc, gw, repo := newTestService()
	seedPackage(repo)

	first, err := svc.SyncCreditPackage(context.Background(), 3)
	if err != nil {
		t.Fatalf("first SyncCreditPackage: %v", err)
	}
	if first.StripePriceID == "" {
		t.Fatal("price reference not persisted")
	}

	second, err := svc.SyncCreditPackage(context.Background(), 3)
	if err != nil {
		t.Fatalf("second SyncCreditPackage: %v", err)
	}
	if second.StripePriceID != first.StripePriceID {
		t.Fatalf("price reference changed on resync: %q then %q", first.StripePriceID, second.StripePriceID)
	}
	if len(gw.oneTime) != 1 {
		t.Fatalf("created %d one-time prices, want 1", len(gw.oneTime))
	}
}

func TestSyncCreditPackageMetadataCarriesCredits(t *testing.T) {
	svc, gw, repo := newTestService()
	seedPackage(repo)

	if _, err := svc.SyncCreditPackage(context.Background(), 3); err != nil {
		t.Fatalf("SyncCreditPackage: %v", err)
	}
	meta := gw.oneTime[0].Metadata
	if meta["credits"] != "500" || meta["bonus_credits"] != "50" {
		t.Fatalf("price metadata = %v", meta)
	}
}
