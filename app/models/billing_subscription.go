package models

import "time"

const (
	BillingIntervalMonthly   = "monthly"
	BillingIntervalQuarterly = "quarterly"
	BillingIntervalSixMonths = "six_months"
	BillingIntervalYearly    = "yearly"
	BillingIntervalUnknown   = "unknown"
)

const (
	BillingStatusTrialing          = "trialing"
	BillingStatusActive            = "active"
	BillingStatusPastDue           = "past_due"
	BillingStatusPaused            = "paused"
	BillingStatusCanceled          = "canceled"
	BillingStatusIncomplete        = "incomplete"
	BillingStatusIncompleteExpired = "incomplete_expired"
	BillingStatusUnpaid            = "unpaid"
)

// BillingSubscription is the local mirror of a Stripe subscription. Stripe is
// the source of truth; rows are only written from verified webhook events,
// guarded by LastEventAt so a redelivered stale event cannot regress state.
type BillingSubscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_billing_subscriptions_stripe_id" json:"stripe_subscription_id"`
	StripePriceID        string     `gorm:"type:varchar(191);not null;index" json:"stripe_price_id"`
	PlanID               uint       `gorm:"index" json:"plan_id"`
	BillingInterval      string     `gorm:"type:varchar(16);not null;default:'unknown'" json:"billing_interval"`
	Status               string     `gorm:"type:varchar(32);not null;default:'incomplete';index" json:"status"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	LastEventAt          *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	RawPayloadJSON       string     `gorm:"type:longtext" json:"-"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
