package billing

import (
	"strings"
	"time"

	"github.com/salonluxe/SalonLuxe/app/models"
)

// Interval is a billing interval of a recurring plan price.
type Interval string

const (
	IntervalMonthly   Interval = models.BillingIntervalMonthly
	IntervalQuarterly Interval = models.BillingIntervalQuarterly
	IntervalSixMonths Interval = models.BillingIntervalSixMonths
	IntervalYearly    Interval = models.BillingIntervalYearly
)

// Intervals lists all supported billing intervals in ascending length.
func Intervals() []Interval {
	return []Interval{IntervalMonthly, IntervalQuarterly, IntervalSixMonths, IntervalYearly}
}

// ParseInterval normalizes an interval string. Unrecognized values map to
// monthly, mirroring the pricing fallback.
func ParseInterval(raw string) Interval {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.BillingIntervalMonthly:
		return IntervalMonthly
	case models.BillingIntervalQuarterly:
		return IntervalQuarterly
	case models.BillingIntervalSixMonths:
		return IntervalSixMonths
	case models.BillingIntervalYearly:
		return IntervalYearly
	default:
		return IntervalMonthly
	}
}

// ExternalRef is the synchronization state of a local catalog object against
// Stripe: either unsynced or synced with the returned Stripe identifier.
type ExternalRef struct {
	id string
}

// SyncedRef wraps a Stripe identifier. An empty id yields the unsynced state.
func SyncedRef(id string) ExternalRef {
	return ExternalRef{id: strings.TrimSpace(id)}
}

// UnsyncedRef is the zero synchronization state.
func UnsyncedRef() ExternalRef {
	return ExternalRef{}
}

// IsSynced reports whether a Stripe identifier has been persisted.
func (r ExternalRef) IsSynced() bool {
	return r.id != ""
}

// ID returns the Stripe identifier, or an empty string when unsynced.
func (r ExternalRef) ID() string {
	return r.id
}

// PlanPriceRef returns the plan's external price reference for an interval.
func PlanPriceRef(p *models.Plan, iv Interval) ExternalRef {
	switch iv {
	case IntervalQuarterly:
		return SyncedRef(p.StripePriceQuarterlyID)
	case IntervalSixMonths:
		return SyncedRef(p.StripePriceSixMonthsID)
	case IntervalYearly:
		return SyncedRef(p.StripePriceYearlyID)
	default:
		return SyncedRef(p.StripePriceMonthlyID)
	}
}

func setPlanPriceRef(p *models.Plan, iv Interval, id string) {
	switch iv {
	case IntervalQuarterly:
		p.StripePriceQuarterlyID = id
	case IntervalSixMonths:
		p.StripePriceSixMonthsID = id
	case IntervalYearly:
		p.StripePriceYearlyID = id
	default:
		p.StripePriceMonthlyID = id
	}
}

// CheckoutSession is a single-use, gateway-hosted checkout flow. It is not
// persisted beyond its redirect lifetime.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PortalSession is a single-use self-service billing portal session.
type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProrationPreview is the simulated billing impact of a price change. Amounts
// are euro cents; Immediate may be negative when the unused-time credit
// exceeds the charge for the remainder of the period.
type ProrationPreview struct {
	ImmediateCents   int64     `json:"immediate_cents"`
	NextInvoiceCents int64     `json:"next_invoice_cents"`
	CutoverAt        time.Time `json:"cutover_at"`
}

// NormalizedSubscription is the provider-agnostic shape used when reconciling
// Stripe subscription state into the local mirror.
type NormalizedSubscription struct {
	UserID               uint
	StripeSubscriptionID string
	StripePriceID        string
	Status               string
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	EventAt              time.Time
	RawPayloadJSON       string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	StripeEventID  string
	EventType      string
	PayloadJSON    string
	SignatureValid bool
}
