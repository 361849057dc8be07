package billing

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2/log"

	"github.com/salonluxe/SalonLuxe/app/models"
)

// SyncPlan ensures the plan has a Stripe product and one recurring price per
// interval with a positive local price. Safe to call any number of times:
// populated references are never recreated or overwritten, and a partial
// earlier failure resumes from wherever it stopped.
func (s *Service) SyncPlan(ctx context.Context, planID uint) (*models.Plan, error) {
	plan, err := s.repo.GetPlan(planID)
	if err != nil {
		return nil, err
	}

	if plan.StripeProductID == "" {
		productID, err := s.gateway.CreateProduct(ctx, ProductInput{
			Name: plan.Name,
			Metadata: map[string]string{
				"plan_id":  strconv.FormatUint(uint64(plan.ID), 10),
				"category": plan.Category,
			},
		})
		if err != nil {
			return nil, err
		}
		stored, err := s.repo.SetPlanProductRef(plan.ID, productID)
		if err != nil {
			return nil, err
		}
		if stored != productID {
			log.Infof("billing: plan %d lost product-create race, using %s over %s", plan.ID, stored, productID)
		}
		plan.StripeProductID = stored
	}

	for _, iv := range Intervals() {
		amount := PriceForInterval(plan, iv)
		if amount <= 0 {
			continue
		}
		if PlanPriceRef(plan, iv).IsSynced() {
			continue
		}

		// Re-check right before the remote create: a concurrent sync may have
		// written the reference since we loaded the plan.
		fresh, err := s.repo.GetPlan(plan.ID)
		if err != nil {
			return nil, err
		}
		if ref := PlanPriceRef(fresh, iv); ref.IsSynced() {
			setPlanPriceRef(plan, iv, ref.ID())
			continue
		}

		unit, count := stripeRecurring(iv)
		priceID, err := s.gateway.CreateRecurringPrice(ctx, RecurringPriceInput{
			ProductID:       plan.StripeProductID,
			UnitAmountCents: amount,
			Currency:        s.currency,
			IntervalUnit:    unit,
			IntervalCount:   count,
			Metadata: map[string]string{
				"plan_id":  strconv.FormatUint(uint64(plan.ID), 10),
				"interval": string(iv),
			},
		})
		if err != nil {
			return nil, err
		}

		stored, err := s.repo.SetPlanPriceRef(plan.ID, iv, priceID)
		if err != nil {
			return nil, err
		}
		if stored != priceID {
			// Lost the persist race; the just-created price stays unused.
			log.Infof("billing: plan %d interval %s lost price-create race, using %s over %s", plan.ID, iv, stored, priceID)
		}
		setPlanPriceRef(plan, iv, stored)
	}

	return plan, nil
}

// SyncCreditPackage ensures the package has exactly one Stripe one-time
// price. A populated reference short-circuits, so repeated syncs are no-ops.
func (s *Service) SyncCreditPackage(ctx context.Context, packageID uint) (*models.CreditPackage, error) {
	pkg, err := s.repo.GetCreditPackage(packageID)
	if err != nil {
		return nil, err
	}
	if pkg.StripePriceID != "" {
		return pkg, nil
	}

	priceID, err := s.gateway.CreateOneTimePrice(ctx, OneTimePriceInput{
		ProductName:     pkg.Name,
		UnitAmountCents: pkg.PriceCents,
		Currency:        s.currency,
		Metadata: map[string]string{
			"package_id":    strconv.FormatUint(uint64(pkg.ID), 10),
			"credits":       strconv.FormatInt(pkg.Credits, 10),
			"bonus_credits": strconv.FormatInt(pkg.BonusCredits, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.SetCreditPackagePriceRef(pkg.ID, priceID)
	if err != nil {
		return nil, err
	}
	if stored != priceID {
		log.Infof("billing: package %d lost price-create race, using %s over %s", pkg.ID, stored, priceID)
	}
	pkg.StripePriceID = stored
	return pkg, nil
}
