package billing

import (
	"gorm.io/gorm"
)

const defaultCurrency = "eur"

// Service drives catalog synchronization, checkout, subscription lifecycle
// and webhook reconciliation against an injected gateway and repository.
type Service struct {
	gateway  Gateway
	repo     Repository
	currency string
}

// NewService creates a billing service from an injected gateway and repository.
func NewService(gateway Gateway, repo Repository) *Service {
	return &Service{gateway: gateway, repo: repo, currency: defaultCurrency}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gateway Gateway) *Service {
	return NewService(gateway, NewRepository(db))
}
