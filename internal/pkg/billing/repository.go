package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salonluxe/SalonLuxe/app/models"
)

// Repository provides DB operations used by the billing service.
//
// The Set*Ref methods are compare-and-set: they only write when the column is
// still empty and always return the value that ended up persisted, so a lost
// race surfaces as "someone else's id" rather than an error.
type Repository interface {
	GetUser(id uint) (*models.User, error)
	GetPlan(id uint) (*models.Plan, error)
	GetCreditPackage(id uint) (*models.CreditPackage, error)
	FindPlanByStripePriceID(priceID string) (*models.Plan, Interval, error)

	SetUserStripeCustomerID(userID uint, customerID string) (string, error)
	SetPlanProductRef(planID uint, productID string) (string, error)
	SetPlanPriceRef(planID uint, iv Interval, priceID string) (string, error)
	SetCreditPackagePriceRef(packageID uint, priceID string) (string, error)

	UpsertSubscriptionIfNewer(sub *models.BillingSubscription, eventAt time.Time) (bool, *models.BillingSubscription, error)
	ListSubscriptionsByUser(userID uint) ([]models.BillingSubscription, error)
	GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error)

	GetOrCreateUserSettings(userID uint) (*models.UserSettings, error)
	SaveUserSettings(us *models.UserSettings) error
	AddCredits(userID uint, delta int64) error

	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUser(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) GetPlan(id uint) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetCreditPackage(id uint) (*models.CreditPackage, error) {
	var cp models.CreditPackage
	if err := r.db.First(&cp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

func (r *gormRepository) FindPlanByStripePriceID(priceID string) (*models.Plan, Interval, error) {
	if priceID == "" {
		return nil, IntervalMonthly, ErrNotFound
	}
	var p models.Plan
	err := r.db.
		Where("stripe_price_monthly_id = ? OR stripe_price_quarterly_id = ? OR stripe_price_six_months_id = ? OR stripe_price_yearly_id = ?",
			priceID, priceID, priceID, priceID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, IntervalMonthly, ErrNotFound
		}
		return nil, IntervalMonthly, err
	}
	for _, iv := range Intervals() {
		if PlanPriceRef(&p, iv).ID() == priceID {
			return &p, iv, nil
		}
	}
	return &p, IntervalMonthly, nil
}

// SetUserStripeCustomerID writes the customer id only if the column is still
// empty. The unique index plus the guarded UPDATE close the concurrent
// first-purchase race; the stored value is returned either way.
func (r *gormRepository) SetUserStripeCustomerID(userID uint, customerID string) (string, error) {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND (stripe_customer_id IS NULL OR stripe_customer_id = '')", userID).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return "", res.Error
	}

	u, err := r.GetUser(userID)
	if err != nil {
		return "", err
	}
	if u.StripeCustomerID == "" {
		return "", errors.New("billing: stripe customer id not persisted")
	}
	return u.StripeCustomerID, nil
}

func (r *gormRepository) SetPlanProductRef(planID uint, productID string) (string, error) {
	res := r.db.Model(&models.Plan{}).
		Where("id = ? AND stripe_product_id = ''", planID).
		Update("stripe_product_id", productID)
	if res.Error != nil {
		return "", res.Error
	}

	p, err := r.GetPlan(planID)
	if err != nil {
		return "", err
	}
	if p.StripeProductID == "" {
		return "", errors.New("billing: stripe product id not persisted")
	}
	return p.StripeProductID, nil
}

func (r *gormRepository) SetPlanPriceRef(planID uint, iv Interval, priceID string) (string, error) {
	column := map[Interval]string{
		IntervalMonthly:   "stripe_price_monthly_id",
		IntervalQuarterly: "stripe_price_quarterly_id",
		IntervalSixMonths: "stripe_price_six_months_id",
		IntervalYearly:    "stripe_price_yearly_id",
	}[iv]
	if column == "" {
		column = "stripe_price_monthly_id"
	}

	res := r.db.Model(&models.Plan{}).
		Where("id = ? AND "+column+" = ''", planID).
		Update(column, priceID)
	if res.Error != nil {
		return "", res.Error
	}

	p, err := r.GetPlan(planID)
	if err != nil {
		return "", err
	}
	stored := PlanPriceRef(p, iv).ID()
	if stored == "" {
		return "", errors.New("billing: stripe price id not persisted")
	}
	return stored, nil
}

func (r *gormRepository) SetCreditPackagePriceRef(packageID uint, priceID string) (string, error) {
	res := r.db.Model(&models.CreditPackage{}).
		Where("id = ? AND stripe_price_id = ''", packageID).
		Update("stripe_price_id", priceID)
	if res.Error != nil {
		return "", res.Error
	}

	cp, err := r.GetCreditPackage(packageID)
	if err != nil {
		return "", err
	}
	if cp.StripePriceID == "" {
		return "", errors.New("billing: stripe price id not persisted")
	}
	return cp.StripePriceID, nil
}

// UpsertSubscriptionIfNewer writes the mirror row only when the event is
// newer than the last applied one, making redelivered and out-of-order
// webhooks no-ops. Returns whether the row was written plus the stored row.
func (r *gormRepository) UpsertSubscriptionIfNewer(sub *models.BillingSubscription, eventAt time.Time) (bool, *models.BillingSubscription, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.BillingSubscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub.LastEventAt = &eventAt
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
			applied = true
			return nil
		}
		if err != nil {
			return err
		}

		if existing.LastEventAt != nil && !eventAt.After(*existing.LastEventAt) {
			// Stale or duplicate delivery. Keep the newer state.
			*sub = existing
			return nil
		}

		updates := map[string]interface{}{
			"user_id":              sub.UserID,
			"stripe_price_id":      sub.StripePriceID,
			"plan_id":              sub.PlanID,
			"billing_interval":     sub.BillingInterval,
			"status":               sub.Status,
			"current_period_end":   sub.CurrentPeriodEnd,
			"cancel_at_period_end": sub.CancelAtPeriodEnd,
			"last_event_at":        &eventAt,
			"raw_payload_json":     sub.RawPayloadJSON,
		}
		if err := tx.Model(&models.BillingSubscription{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		sub.ID = existing.ID
		sub.LastEventAt = &eventAt
		applied = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return applied, sub, nil
}

func (r *gormRepository) ListSubscriptionsByUser(userID uint) ([]models.BillingSubscription, error) {
	var subs []models.BillingSubscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (r *gormRepository) GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error) {
	var sub models.BillingSubscription
	err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetOrCreateUserSettings(userID uint) (*models.UserSettings, error) {
	return models.GetOrCreateUserSettings(r.db, userID)
}

func (r *gormRepository) SaveUserSettings(us *models.UserSettings) error {
	return r.db.Save(us).Error
}

func (r *gormRepository) AddCredits(userID uint, delta int64) error {
	us, err := r.GetOrCreateUserSettings(userID)
	if err != nil {
		return err
	}
	return r.db.Model(&models.UserSettings{}).
		Where("id = ?", us.ID).
		Update("credit_balance", gorm.Expr("credit_balance + ?", delta)).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
