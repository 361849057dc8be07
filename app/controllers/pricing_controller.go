package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/salonluxe/SalonLuxe/app/repository"
	"github.com/salonluxe/SalonLuxe/internal/pkg/billing"
	"github.com/salonluxe/SalonLuxe/internal/pkg/cache"
)

const (
	pricingCacheKey = "pricing:catalog"
	pricingCacheTTL = 5 * time.Minute
)

type pricingInterval struct {
	Interval          string `json:"interval"`
	PriceCents        int64  `json:"price_cents"`
	MonthlyEquivalent int64  `json:"monthly_equivalent_cents"`
	SavingsPercent    int    `json:"savings_percent"`
}

type pricingPlan struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	TrialDays int               `json:"trial_days"`
	Intervals []pricingInterval `json:"intervals"`
}

type pricingCatalog struct {
	Plans    []pricingPlan       `json:"plans"`
	Packages []pricingCreditPack `json:"credit_packages"`
}

type pricingCreditPack struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Credits      int64  `json:"credits"`
	BonusCredits int64  `json:"bonus_credits"`
	PriceCents   int64  `json:"price_cents"`
}

// HandlePricing lists the purchasable catalog: active plans with all priced
// intervals plus credit packages. The response is cached in Redis because the
// catalog only changes on admin edits.
func HandlePricing(c *fiber.Ctx) error {
	if cached, err := cache.Get(pricingCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	catalog, err := buildPricingCatalog()
	if err != nil {
		log.Errorf("pricing: catalog load failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "catalog_unavailable"})
	}

	if data, err := json.Marshal(catalog); err == nil {
		if err := cache.Set(pricingCacheKey, string(data), pricingCacheTTL); err != nil {
			log.Warnf("pricing: cache write failed: %v", err)
		}
	}

	return c.JSON(catalog)
}

func buildPricingCatalog() (*pricingCatalog, error) {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().GetActive()
	if err != nil {
		return nil, err
	}
	packages, err := repository.GetGlobalFactory().GetCreditPackageRepository().GetAll()
	if err != nil {
		return nil, err
	}

	catalog := &pricingCatalog{
		Plans:    make([]pricingPlan, 0, len(plans)),
		Packages: make([]pricingCreditPack, 0, len(packages)),
	}

	for i := range plans {
		plan := &plans[i]
		entry := pricingPlan{
			ID:        plan.ID,
			Name:      plan.Name,
			Category:  plan.Category,
			TrialDays: plan.TrialDays,
		}
		for _, iv := range billing.Intervals() {
			price := billing.PriceForInterval(plan, iv)
			if price <= 0 {
				continue
			}
			entry.Intervals = append(entry.Intervals, pricingInterval{
				Interval:          string(iv),
				PriceCents:        price,
				MonthlyEquivalent: billing.MonthlyEquivalentCents(plan, iv),
				SavingsPercent:    billing.SavingsPercent(plan, iv),
			})
		}
		catalog.Plans = append(catalog.Plans, entry)
	}

	for _, pkg := range packages {
		catalog.Packages = append(catalog.Packages, pricingCreditPack{
			ID:           pkg.ID,
			Name:         pkg.Name,
			Credits:      pkg.Credits,
			BonusCredits: pkg.BonusCredits,
			PriceCents:   pkg.PriceCents,
		})
	}

	return catalog, nil
}

// InvalidatePricingCache drops the cached catalog after admin edits.
func InvalidatePricingCache() {
	if err := cache.Delete(pricingCacheKey); err != nil {
		log.Warnf("pricing: cache invalidation failed: %v", err)
	}
}
