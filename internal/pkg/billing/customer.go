package billing

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
)

// GetOrCreateCustomer resolves a local user to exactly one Stripe customer,
// creating it on first use. Repeated calls return the same id.
//
// The persist step is compare-and-set on a unique column: when two first
// purchases race, one write wins and the loser adopts the winner's id. The
// loser's freshly created Stripe customer is left as an orphan; that is an
// accepted operational cost of at most one object per true race or persist
// failure, not a correctness bug.
func (s *Service) GetOrCreateCustomer(ctx context.Context, userID uint) (string, error) {
	user, err := s.repo.GetUser(userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	name := user.SalonName
	if name == "" {
		name = user.Name
	}
	created, err := s.gateway.CreateCustomer(ctx, CustomerInput{
		Email: user.Email,
		Name:  name,
		Metadata: map[string]string{
			"user_id": strconv.FormatUint(uint64(userID), 10),
		},
	})
	if err != nil {
		return "", err
	}

	stored, err := s.repo.SetUserStripeCustomerID(userID, created)
	if err != nil {
		return "", err
	}
	if stored != created {
		log.Infof("billing: user %d lost customer-create race, discarding stripe customer %s for %s", userID, created, stored)
	}
	return stored, nil
}
