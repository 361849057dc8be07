package repository

import (
	"github.com/salonluxe/SalonLuxe/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByStripeID retrieves a mirrored subscription by its Stripe id
func (r *subscriptionRepository) GetByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error) {
	var sub models.BillingSubscription
	err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserID retrieves all mirrored subscriptions of a user
func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.BillingSubscription, error) {
	var subs []models.BillingSubscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// CountByStatus returns how many mirrored subscriptions carry the given status
func (r *subscriptionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.BillingSubscription{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// RecentWebhookEvents returns the most recently received webhook events
func (r *subscriptionRepository) RecentWebhookEvents(limit int) ([]models.BillingWebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.BillingWebhookEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
