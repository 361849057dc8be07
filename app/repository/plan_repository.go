package repository

import (
	"github.com/salonluxe/SalonLuxe/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan in the database
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByName retrieves a plan by its unique name
func (r *planRepository) GetByName(name string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("name = ?", name).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetActive retrieves all plans currently offered for sale
func (r *planRepository) GetActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("is_active = ?", true).Order("price_monthly_cents ASC").Find(&plans).Error
	return plans, err
}

// GetAll retrieves every plan including deactivated ones
func (r *planRepository) GetAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("price_monthly_cents ASC").Find(&plans).Error
	return plans, err
}

// Update updates an existing plan in the database
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Deactivate retires a plan from sale. Existing subscriptions keep running;
// the Stripe product and prices are never deleted.
func (r *planRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Plan{}).Where("id = ?", id).Update("is_active", false).Error
}

// Count returns the total number of plans
func (r *planRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Plan{}).Count(&count).Error
	return count, err
}
