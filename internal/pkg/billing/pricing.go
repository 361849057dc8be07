package billing

import "github.com/salonluxe/SalonLuxe/app/models"

// PriceForInterval returns the plan's stored price for the interval in euro
// cents. Unknown intervals fall back to the monthly price.
func PriceForInterval(p *models.Plan, iv Interval) int64 {
	switch iv {
	case IntervalQuarterly:
		return p.PriceQuarterlyCents
	case IntervalSixMonths:
		return p.PriceSixMonthsCents
	case IntervalYearly:
		return p.PriceYearlyCents
	default:
		return p.PriceMonthlyCents
	}
}

// MonthsForInterval returns the number of months covered by one billing cycle.
func MonthsForInterval(iv Interval) int64 {
	switch iv {
	case IntervalQuarterly:
		return 3
	case IntervalSixMonths:
		return 6
	case IntervalYearly:
		return 12
	default:
		return 1
	}
}

// MonthlyEquivalentCents is the per-month cost of the interval price, rounded
// to the nearest cent.
func MonthlyEquivalentCents(p *models.Plan, iv Interval) int64 {
	months := MonthsForInterval(iv)
	return (PriceForInterval(p, iv) + months/2) / months
}

// SavingsPercent is the rounded percentage saved by paying for the interval
// upfront instead of monthly. Clamped to 0: a price increase or a zero
// monthly baseline never yields negative displayed savings.
func SavingsPercent(p *models.Plan, iv Interval) int {
	base := p.PriceMonthlyCents * MonthsForInterval(iv)
	if base <= 0 {
		return 0
	}
	diff := base - PriceForInterval(p, iv)
	if diff <= 0 {
		return 0
	}
	return int((100*diff + base/2) / base)
}

// stripeRecurring maps an interval to Stripe's recurring price unit and count.
func stripeRecurring(iv Interval) (unit string, count int64) {
	switch iv {
	case IntervalQuarterly:
		return "month", 3
	case IntervalSixMonths:
		return "month", 6
	case IntervalYearly:
		return "year", 1
	default:
		return "month", 1
	}
}
