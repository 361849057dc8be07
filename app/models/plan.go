package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PlanCategoryIndividual   = "individual"
	PlanCategoryOrganization = "organization"
)

// Plan is a locally owned subscription offering with one price per billing
// interval. Stripe references are filled in by the catalog synchronizer and
// are never overwritten once set; repricing means creating a new plan.
type Plan struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Name                string `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=3,max=100"`
	Category            string `gorm:"type:varchar(20);not null;default:'individual'" json:"category" validate:"oneof=individual organization"`
	PriceMonthlyCents   int64  `gorm:"not null;default:0" json:"price_monthly_cents" validate:"gte=0"`
	PriceQuarterlyCents int64  `gorm:"not null;default:0" json:"price_quarterly_cents" validate:"gte=0"`
	PriceSixMonthsCents int64  `gorm:"not null;default:0" json:"price_six_months_cents" validate:"gte=0"`
	PriceYearlyCents    int64  `gorm:"not null;default:0" json:"price_yearly_cents" validate:"gte=0"`
	TrialDays           int    `gorm:"not null;default:0" json:"trial_days" validate:"gte=0"`
	IsActive            bool   `gorm:"default:true;index" json:"is_active"`

	StripeProductID        string `gorm:"type:varchar(191);not null;default:''" json:"-"`
	StripePriceMonthlyID   string `gorm:"type:varchar(191);not null;default:''" json:"-"`
	StripePriceQuarterlyID string `gorm:"type:varchar(191);not null;default:''" json:"-"`
	StripePriceSixMonthsID string `gorm:"type:varchar(191);not null;default:''" json:"-"`
	StripePriceYearlyID    string `gorm:"type:varchar(191);not null;default:''" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Plan) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// Deactivate soft-disables the plan. Plans with paying subscribers are never
// hard-deleted.
func (p *Plan) Deactivate() {
	p.IsActive = false
}
