package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreditPackage is a one-time purchasable bundle of marketing credits.
// StripePriceID is created at most once by the catalog synchronizer.
type CreditPackage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=3,max=100"`
	Credits      int64  `gorm:"not null" json:"credits" validate:"gt=0"`
	BonusCredits int64  `gorm:"not null;default:0" json:"bonus_credits" validate:"gte=0"`
	PriceCents   int64  `gorm:"not null" json:"price_cents" validate:"gt=0"`

	StripePriceID string `gorm:"type:varchar(191);not null;default:''" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (cp *CreditPackage) Validate() error {
	v := validator.New()
	return v.Struct(cp)
}

// TotalCredits is the amount granted on purchase (base plus bonus).
func (cp *CreditPackage) TotalCredits() int64 {
	return cp.Credits + cp.BonusCredits
}
