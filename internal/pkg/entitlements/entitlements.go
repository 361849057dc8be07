package entitlements

import (
	"strings"

	"github.com/salonluxe/SalonLuxe/app/models"
)

type Plan string

const (
	PlanStarter Plan = "starter"
	PlanStudio  Plan = "studio"
	PlanChain   Plan = "chain"
)

// NormalizePlan maps arbitrary input to a known plan, defaulting to starter.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanStudio):
		return PlanStudio
	case string(PlanChain):
		return PlanChain
	default:
		return PlanStarter
	}
}

// PlanRank orders plans so the reconciler can pick the best entitlement.
func PlanRank(plan Plan) int {
	switch NormalizePlan(string(plan)) {
	case PlanChain:
		return 2
	case PlanStudio:
		return 1
	default:
		return 0
	}
}

// PlanForCategory maps a subscription plan category to the entitlement plan.
func PlanForCategory(category string) Plan {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case models.PlanCategoryOrganization:
		return PlanChain
	case models.PlanCategoryIndividual:
		return PlanStudio
	default:
		return PlanStarter
	}
}

// IsEntitlingStatus reports whether a subscription status grants access.
// past_due keeps entitlement during the dunning window.
func IsEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.BillingStatusActive, models.BillingStatusTrialing, models.BillingStatusPastDue:
		return true
	default:
		return false
	}
}

// MaxStaffSeats returns how many staff members a salon may manage per plan.
func MaxStaffSeats(plan Plan) int {
	switch NormalizePlan(string(plan)) {
	case PlanChain:
		return 50
	case PlanStudio:
		return 5
	default:
		return 1
	}
}

// AllowsSocialScheduling reports whether the plan includes the social
// post scheduler.
func AllowsSocialScheduling(plan Plan) bool {
	return PlanRank(plan) >= PlanRank(PlanStudio)
}
