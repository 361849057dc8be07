package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanValidate(t *testing.T) {
	plan := &Plan{
		Name:              "Studio",
		Category:          PlanCategoryIndividual,
		PriceMonthlyCents: 2900,
		PriceYearlyCents:  29000,
		TrialDays:         14,
	}
	assert.NoError(t, plan.Validate())

	plan.Category = "enterprise"
	assert.Error(t, plan.Validate(), "unknown category must be rejected")

	plan.Category = PlanCategoryOrganization
	plan.PriceMonthlyCents = -1
	assert.Error(t, plan.Validate(), "negative prices must be rejected")
}

func TestPlanDeactivate(t *testing.T) {
	plan := &Plan{Name: "Studio", Category: PlanCategoryIndividual, IsActive: true}
	plan.Deactivate()
	assert.False(t, plan.IsActive)
}

func TestCreditPackageTotalCredits(t *testing.T) {
	pkg := &CreditPackage{Name: "Booster 500", Credits: 500, BonusCredits: 50, PriceCents: 1900}
	assert.NoError(t, pkg.Validate())
	assert.Equal(t, int64(550), pkg.TotalCredits())

	pkg.Credits = 0
	assert.Error(t, pkg.Validate(), "packages without credits must be rejected")
}
