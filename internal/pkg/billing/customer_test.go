package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestGetOrCreateCustomerStable(t *testing.T) {
	svc, gw, repo := newTestService()
	seedUser(repo)

	first, err := svc.GetOrCreateCustomer(context.Background(), 7)
	if err != nil {
		t.Fatalf("first GetOrCreateCustomer: %v", err)
	}
	if first == "" {
		t.Fatal("expected a customer id")
	}

	second, err := svc.GetOrCreateCustomer(context.Background(), 7)
	if err != nil {
		t.Fatalf("second GetOrCreateCustomer: %v", err)
	}
	if second != first {
		t.Fatalf("customer id changed between calls: %q then %q", first, second)
	}
	if gw.customers != 1 {
		t.Fatalf("created %d stripe customers, want 1", gw.customers)
	}
}

func TestGetOrCreateCustomerUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.GetOrCreateCustomer(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetOrCreateCustomerConcurrentFirstCalls(t *testing.T) {
	svc, _, repo := newTestService()
	seedUser(repo)

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.GetOrCreateCustomer(context.Background(), 7)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	// All callers agree on the one persisted id; losers adopted the winner's.
	u, err := repo.GetUser(7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	for i, id := range ids {
		if id != u.StripeCustomerID {
			t.Fatalf("caller %d got %q, persisted id is %q", i, id, u.StripeCustomerID)
		}
	}
}
