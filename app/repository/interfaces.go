package repository

import (
	"github.com/salonluxe/SalonLuxe/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByStripeCustomerID(customerID string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// PlanRepository defines the interface for plan catalog operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetByName(name string) (*models.Plan, error)
	GetActive() ([]models.Plan, error)
	GetAll() ([]models.Plan, error)
	Update(plan *models.Plan) error
	Deactivate(id uint) error
	Count() (int64, error)
}

// CreditPackageRepository defines the interface for credit package operations
type CreditPackageRepository interface {
	Create(pkg *models.CreditPackage) error
	GetByID(id uint) (*models.CreditPackage, error)
	GetAll() ([]models.CreditPackage, error)
	Update(pkg *models.CreditPackage) error
	Delete(id uint) error
}

// SubscriptionRepository defines read access to the local subscription mirror.
// Writes go through the billing engine only, which enforces event ordering.
type SubscriptionRepository interface {
	GetByStripeID(stripeSubscriptionID string) (*models.BillingSubscription, error)
	GetByUserID(userID uint) ([]models.BillingSubscription, error)
	CountByStatus(status string) (int64, error)
	RecentWebhookEvents(limit int) ([]models.BillingWebhookEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Plan          PlanRepository
	CreditPackage CreditPackageRepository
	Subscription  SubscriptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Plan:          NewPlanRepository(db),
		CreditPackage: NewCreditPackageRepository(db),
		Subscription:  NewSubscriptionRepository(db),
	}
}
