package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/salonluxe/SalonLuxe/internal/pkg/env"
)

// CustomerInput describes a Stripe customer to create.
type CustomerInput struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// ProductInput describes a Stripe catalog product to create.
type ProductInput struct {
	Name     string
	Metadata map[string]string
}

// RecurringPriceInput describes a recurring Stripe price to create.
type RecurringPriceInput struct {
	ProductID       string
	UnitAmountCents int64
	Currency        string
	IntervalUnit    string
	IntervalCount   int64
	Metadata        map[string]string
}

// OneTimePriceInput describes a non-recurring Stripe price to create. The
// product is created inline; only the price id is persisted locally.
type OneTimePriceInput struct {
	ProductName     string
	UnitAmountCents int64
	Currency        string
	Metadata        map[string]string
}

const (
	CheckoutModeSubscription = "subscription"
	CheckoutModePayment      = "payment"
)

// CheckoutSessionInput describes a checkout session to create.
type CheckoutSessionInput struct {
	Mode       string
	CustomerID string
	PriceID    string
	TrialDays  int64
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Gateway is the payment gateway surface the billing engine depends on. It is
// injected so tests can substitute a fake; the process bootstrap owns the
// Stripe client lifecycle.
type Gateway interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (string, error)
	CreateProduct(ctx context.Context, in ProductInput) (string, error)
	CreateRecurringPrice(ctx context.Context, in RecurringPriceInput) (string, error)
	CreateOneTimePrice(ctx context.Context, in OneTimePriceInput) (string, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
	CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error
	CancelSubscriptionNow(ctx context.Context, subscriptionID string) error
	PauseSubscription(ctx context.Context, subscriptionID string) error
	ResumeSubscription(ctx context.Context, subscriptionID string) error
	ChangeSubscriptionPrice(ctx context.Context, subscriptionID, newPriceID string) error
	PreviewPriceChange(ctx context.Context, subscriptionID, newPriceID string, at time.Time) (*ProrationPreview, error)
}

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway with its own client instance, so no
// global Stripe state is shared between tenants or tests.
func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api}
}

// NewStripeGatewayFromEnv builds a gateway from STRIPE_SECRET_KEY.
func NewStripeGatewayFromEnv() *StripeGateway {
	return NewStripeGateway(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, in CustomerInput) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(in.Email),
	}
	if in.Name != "" {
		params.Name = stripe.String(in.Name)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", remoteErr("customer create", err)
	}
	return c.ID, nil
}

func (g *StripeGateway) CreateProduct(ctx context.Context, in ProductInput) (string, error) {
	params := &stripe.ProductParams{
		Name: stripe.String(in.Name),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	p, err := g.api.Products.New(params)
	if err != nil {
		return "", remoteErr("product create", err)
	}
	return p.ID, nil
}

func (g *StripeGateway) CreateRecurringPrice(ctx context.Context, in RecurringPriceInput) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(in.ProductID),
		UnitAmount: stripe.Int64(in.UnitAmountCents),
		Currency:   stripe.String(in.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval:      stripe.String(in.IntervalUnit),
			IntervalCount: stripe.Int64(in.IntervalCount),
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	p, err := g.api.Prices.New(params)
	if err != nil {
		return "", remoteErr("price create", err)
	}
	return p.ID, nil
}

func (g *StripeGateway) CreateOneTimePrice(ctx context.Context, in OneTimePriceInput) (string, error) {
	params := &stripe.PriceParams{
		UnitAmount: stripe.Int64(in.UnitAmountCents),
		Currency:   stripe.String(in.Currency),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(in.ProductName),
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	p, err := g.api.Prices.New(params)
	if err != nil {
		return "", remoteErr("one-time price create", err)
	}
	return p.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(in.Mode),
		Customer:   stripe.String(in.CustomerID),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		// Tax and address collection are pass-through gateway configuration so
		// later invoices are jurisdiction-correct.
		AutomaticTax: &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(true),
		},
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		CustomerUpdate: &stripe.CheckoutSessionCustomerUpdateParams{
			Address: stripe.String("auto"),
		},
		Metadata: in.Metadata,
	}
	if in.Mode == CheckoutModeSubscription {
		sub := &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: in.Metadata,
		}
		if in.TrialDays > 0 {
			sub.TrialPeriodDays = stripe.Int64(in.TrialDays)
		}
		params.SubscriptionData = sub
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, remoteErr("checkout session create", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, remoteErr("portal session create", err)
	}
	return &PortalSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	_, err := g.api.Subscriptions.Update(subscriptionID, params)
	return remoteErr("subscription cancel at period end", err)
}

func (g *StripeGateway) CancelSubscriptionNow(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	_, err := g.api.Subscriptions.Cancel(subscriptionID, params)
	return remoteErr("subscription cancel", err)
}

func (g *StripeGateway) PauseSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		PauseCollection: &stripe.SubscriptionPauseCollectionParams{
			Behavior: stripe.String("void"),
		},
	}
	params.Context = ctx

	_, err := g.api.Subscriptions.Update(subscriptionID, params)
	return remoteErr("subscription pause", err)
}

func (g *StripeGateway) ResumeSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{}
	// Clearing pause_collection requires sending an explicit empty value.
	params.AddExtra("pause_collection", "")
	params.Context = ctx

	_, err := g.api.Subscriptions.Update(subscriptionID, params)
	return remoteErr("subscription resume", err)
}

func (g *StripeGateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, newPriceID string) error {
	itemID, _, err := g.subscriptionItem(ctx, subscriptionID)
	if err != nil {
		return err
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(newPriceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx

	_, err = g.api.Subscriptions.Update(subscriptionID, params)
	return remoteErr("subscription price change", err)
}

func (g *StripeGateway) PreviewPriceChange(ctx context.Context, subscriptionID, newPriceID string, at time.Time) (*ProrationPreview, error) {
	itemID, customerID, err := g.subscriptionItem(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	params := &stripe.InvoiceUpcomingParams{
		Customer:     stripe.String(customerID),
		Subscription: stripe.String(subscriptionID),
		SubscriptionItems: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(newPriceID),
			},
		},
		SubscriptionProrationDate:     stripe.Int64(at.Unix()),
		SubscriptionProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx

	inv, err := g.api.Invoices.Upcoming(params)
	if err != nil {
		return nil, remoteErr("invoice preview", err)
	}

	preview := &ProrationPreview{CutoverAt: at}
	for _, line := range inv.Lines.Data {
		if line.Proration {
			preview.ImmediateCents += line.Amount
		} else {
			preview.NextInvoiceCents += line.Amount
		}
	}
	return preview, nil
}

// subscriptionItem resolves the single item and customer of a subscription.
func (g *StripeGateway) subscriptionItem(ctx context.Context, subscriptionID string) (itemID, customerID string, err error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return "", "", remoteErr("subscription get", err)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return "", "", errors.New("billing: subscription has no items")
	}
	if sub.Customer == nil {
		return "", "", errors.New("billing: subscription has no customer")
	}
	return sub.Items.Data[0].ID, sub.Customer.ID, nil
}
