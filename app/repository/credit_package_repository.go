package repository

import (
	"github.com/salonluxe/SalonLuxe/app/models"
	"gorm.io/gorm"
)

// creditPackageRepository implements the CreditPackageRepository interface
type creditPackageRepository struct {
	db *gorm.DB
}

// NewCreditPackageRepository creates a new credit package repository instance
func NewCreditPackageRepository(db *gorm.DB) CreditPackageRepository {
	return &creditPackageRepository{db: db}
}

// Create creates a new credit package in the database
func (r *creditPackageRepository) Create(pkg *models.CreditPackage) error {
	return r.db.Create(pkg).Error
}

// GetByID retrieves a credit package by its ID
func (r *creditPackageRepository) GetByID(id uint) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	err := r.db.First(&pkg, id).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// GetAll retrieves all credit packages ordered by price
func (r *creditPackageRepository) GetAll() ([]models.CreditPackage, error) {
	var packages []models.CreditPackage
	err := r.db.Order("price_cents ASC").Find(&packages).Error
	return packages, err
}

// Update updates an existing credit package in the database
func (r *creditPackageRepository) Update(pkg *models.CreditPackage) error {
	return r.db.Save(pkg).Error
}

// Delete soft deletes a credit package by its ID
func (r *creditPackageRepository) Delete(id uint) error {
	return r.db.Delete(&models.CreditPackage{}, id).Error
}
