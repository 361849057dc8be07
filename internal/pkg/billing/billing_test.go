package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salonluxe/SalonLuxe/app/models"
)

// memRepo is an in-memory Repository with the same compare-and-set semantics
// as the GORM implementation, usable from concurrent tests.
type memRepo struct {
	mu            sync.Mutex
	users         map[uint]*models.User
	plans         map[uint]*models.Plan
	packages      map[uint]*models.CreditPackage
	subscriptions map[string]*models.BillingSubscription
	settings      map[uint]*models.UserSettings
	events        map[string]*models.BillingWebhookEvent
	nextEventID   uint
	nextSubID     uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:         make(map[uint]*models.User),
		plans:         make(map[uint]*models.Plan),
		packages:      make(map[uint]*models.CreditPackage),
		subscriptions: make(map[string]*models.BillingSubscription),
		settings:      make(map[uint]*models.UserSettings),
		events:        make(map[string]*models.BillingWebhookEvent),
	}
}

func (r *memRepo) GetUser(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetPlan(id uint) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetCreditPackage(id uint) (*models.CreditPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.packages[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) FindPlanByStripePriceID(priceID string) (*models.Plan, Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if priceID == "" {
		return nil, IntervalMonthly, ErrNotFound
	}
	for _, p := range r.plans {
		for _, iv := range Intervals() {
			if PlanPriceRef(p, iv).ID() == priceID {
				cp := *p
				return &cp, iv, nil
			}
		}
	}
	return nil, IntervalMonthly, ErrNotFound
}

func (r *memRepo) SetUserStripeCustomerID(userID uint, customerID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return "", ErrNotFound
	}
	if u.StripeCustomerID == "" {
		u.StripeCustomerID = customerID
	}
	return u.StripeCustomerID, nil
}

func (r *memRepo) SetPlanProductRef(planID uint, productID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return "", ErrNotFound
	}
	if p.StripeProductID == "" {
		p.StripeProductID = productID
	}
	return p.StripeProductID, nil
}

func (r *memRepo) SetPlanPriceRef(planID uint, iv Interval, priceID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return "", ErrNotFound
	}
	if !PlanPriceRef(p, iv).IsSynced() {
		setPlanPriceRef(p, iv, priceID)
	}
	return PlanPriceRef(p, iv).ID(), nil
}

func (r *memRepo) SetCreditPackagePriceRef(packageID uint, priceID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.packages[packageID]
	if !ok {
		return "", ErrNotFound
	}
	if p.StripePriceID == "" {
		p.StripePriceID = priceID
	}
	return p.StripePriceID, nil
}

func (r *memRepo) UpsertSubscriptionIfNewer(sub *models.BillingSubscription, eventAt time.Time) (bool, *models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subscriptions[sub.StripeSubscriptionID]
	if ok && existing.LastEventAt != nil && !eventAt.After(*existing.LastEventAt) {
		cp := *existing
		return false, &cp, nil
	}
	stored := *sub
	if ok {
		stored.ID = existing.ID
	} else {
		r.nextSubID++
		stored.ID = r.nextSubID
	}
	at := eventAt
	stored.LastEventAt = &at
	r.subscriptions[sub.StripeSubscriptionID] = &stored
	cp := stored
	return true, &cp, nil
}

func (r *memRepo) ListSubscriptionsByUser(userID uint) ([]models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var subs []models.BillingSubscription
	for _, s := range r.subscriptions {
		if s.UserID == userID {
			subs = append(subs, *s)
		}
	}
	return subs, nil
}

func (r *memRepo) GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subscriptions[stripeSubscriptionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) GetOrCreateUserSettings(userID uint) (*models.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	us, ok := r.settings[userID]
	if !ok {
		us = &models.UserSettings{ID: userID, UserID: userID, Plan: "starter"}
		r.settings[userID] = us
	}
	cp := *us
	return &cp, nil
}

func (r *memRepo) SaveUserSettings(us *models.UserSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *us
	r.settings[us.UserID] = &cp
	return nil
}

func (r *memRepo) AddCredits(userID uint, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	us, ok := r.settings[userID]
	if !ok {
		us = &models.UserSettings{ID: userID, UserID: userID, Plan: "starter"}
		r.settings[userID] = us
	}
	us.CreditBalance += delta
	return nil
}

func (r *memRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.events[event.StripeEventID]; ok {
		cp := *stored
		return false, &cp, nil
	}
	r.nextEventID++
	event.ID = r.nextEventID
	cp := *event
	r.events[event.StripeEventID] = &cp
	out := cp
	return true, &out, nil
}

func (r *memRepo) MarkWebhookProcessed(id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, e := range r.events {
		if e.ID == id {
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return ErrNotFound
}

// fakeGateway counts object creations and records the last inputs. Failure
// modes are injected per method.
type fakeGateway struct {
	mu sync.Mutex

	customers int
	products  int
	recurring []RecurringPriceInput
	oneTime   []OneTimePriceInput
	checkouts []CheckoutSessionInput

	failRecurringFor Interval
	preview          *ProrationPreview
	previewErr       error

	lifecycleCalls []string
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, in CustomerInput) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers++
	return fmt.Sprintf("cus_%d", g.customers), nil
}

func (g *fakeGateway) CreateProduct(ctx context.Context, in ProductInput) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products++
	return fmt.Sprintf("prod_%d", g.products), nil
}

func (g *fakeGateway) CreateRecurringPrice(ctx context.Context, in RecurringPriceInput) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRecurringFor != "" && in.Metadata["interval"] == string(g.failRecurringFor) {
		return "", &RemoteError{Op: "price create", Err: context.DeadlineExceeded}
	}
	g.recurring = append(g.recurring, in)
	return fmt.Sprintf("price_%d", len(g.recurring)), nil
}

func (g *fakeGateway) CreateOneTimePrice(ctx context.Context, in OneTimePriceInput) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.oneTime = append(g.oneTime, in)
	return fmt.Sprintf("price_ot_%d", len(g.oneTime)), nil
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkouts = append(g.checkouts, in)
	return &CheckoutSession{ID: fmt.Sprintf("cs_%d", len(g.checkouts)), URL: "https://checkout.example/session"}, nil
}

func (g *fakeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	return &PortalSession{ID: "bps_1", URL: "https://portal.example/" + customerID}, nil
}

func (g *fakeGateway) CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	g.record("cancel_at_period_end:" + subscriptionID)
	return nil
}

func (g *fakeGateway) CancelSubscriptionNow(ctx context.Context, subscriptionID string) error {
	g.record("cancel_now:" + subscriptionID)
	return nil
}

func (g *fakeGateway) PauseSubscription(ctx context.Context, subscriptionID string) error {
	g.record("pause:" + subscriptionID)
	return nil
}

func (g *fakeGateway) ResumeSubscription(ctx context.Context, subscriptionID string) error {
	g.record("resume:" + subscriptionID)
	return nil
}

func (g *fakeGateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, newPriceID string) error {
	g.record("change:" + subscriptionID + ":" + newPriceID)
	return nil
}

func (g *fakeGateway) PreviewPriceChange(ctx context.Context, subscriptionID, newPriceID string, at time.Time) (*ProrationPreview, error) {
	if g.previewErr != nil {
		return nil, g.previewErr
	}
	if g.preview != nil {
		p := *g.preview
		p.CutoverAt = at
		return &p, nil
	}
	return &ProrationPreview{CutoverAt: at}, nil
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lifecycleCalls = append(g.lifecycleCalls, call)
}

func newTestService() (*Service, *fakeGateway, *memRepo) {
	gw := &fakeGateway{}
	repo := newMemRepo()
	return NewService(gw, repo), gw, repo
}

func seedUser(repo *memRepo) *models.User {
	u := &models.User{
		ID:        7,
		Name:      "Mara Vogel",
		Email:     "mara@salonluxe.test",
		SalonName: "Salon Mara",
	}
	repo.users[u.ID] = u
	return u
}

func seedPlan(repo *memRepo) *models.Plan {
	p := testPlan()
	p.Category = models.PlanCategoryIndividual
	p.IsActive = true
	p.TrialDays = 14
	repo.plans[p.ID] = p
	return p
}

func testSubscription(stripeID string, userID uint, status string) *models.BillingSubscription {
	return &models.BillingSubscription{
		UserID:               userID,
		StripeSubscriptionID: stripeID,
		Status:               status,
		BillingInterval:      models.BillingIntervalMonthly,
	}
}

func seedPackage(repo *memRepo) *models.CreditPackage {
	pkg := &models.CreditPackage{
		ID:           3,
		Name:         "Booster 500",
		Credits:      500,
		BonusCredits: 50,
		PriceCents:   1900,
	}
	repo.packages[pkg.ID] = pkg
	return pkg
}
