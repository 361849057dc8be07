package billing

import (
	"testing"

	"github.com/salonluxe/SalonLuxe/app/models"
)

func testPlan() *models.Plan {
	return &models.Plan{
		ID:                  1,
		Name:                "Studio",
		PriceMonthlyCents:   2900,
		PriceQuarterlyCents: 8100,
		PriceSixMonthsCents: 15000,
		PriceYearlyCents:    29000,
	}
}

func TestPriceForInterval(t *testing.T) {
	p := testPlan()

	tests := []struct {
		iv   Interval
		want int64
	}{
		{iv: IntervalMonthly, want: 2900},
		{iv: IntervalQuarterly, want: 8100},
		{iv: IntervalSixMonths, want: 15000},
		{iv: IntervalYearly, want: 29000},
		{iv: Interval("weekly"), want: 2900},
		{iv: Interval(""), want: 2900},
	}

	for _, tt := range tests {
		if got := PriceForInterval(p, tt.iv); got != tt.want {
			t.Fatalf("PriceForInterval(%q) = %d, want %d", tt.iv, got, tt.want)
		}
	}
}

func TestMonthsForInterval(t *testing.T) {
	tests := []struct {
		iv   Interval
		want int64
	}{
		{iv: IntervalMonthly, want: 1},
		{iv: IntervalQuarterly, want: 3},
		{iv: IntervalSixMonths, want: 6},
		{iv: IntervalYearly, want: 12},
		{iv: Interval("bogus"), want: 1},
	}

	for _, tt := range tests {
		if got := MonthsForInterval(tt.iv); got != tt.want {
			t.Fatalf("MonthsForInterval(%q) = %d, want %d", tt.iv, got, tt.want)
		}
	}
}

func TestMonthlyEquivalentCents(t *testing.T) {
	p := testPlan()
	if got := MonthlyEquivalentCents(p, IntervalYearly); got != 2417 {
		t.Fatalf("MonthlyEquivalentCents(yearly) = %d, want 2417", got)
	}
	if got := MonthlyEquivalentCents(p, IntervalMonthly); got != 2900 {
		t.Fatalf("MonthlyEquivalentCents(monthly) = %d, want 2900", got)
	}
}

func TestSavingsPercent(t *testing.T) {
	// 29.00 monthly vs 290.00 yearly: round(100*58/348) = 17.
	p := testPlan()
	if got := SavingsPercent(p, IntervalYearly); got != 17 {
		t.Fatalf("SavingsPercent(yearly) = %d, want 17", got)
	}
}

func TestSavingsPercentNeverNegative(t *testing.T) {
	p := testPlan()
	p.PriceQuarterlyCents = 9000 // more expensive than 3x monthly
	if got := SavingsPercent(p, IntervalQuarterly); got != 0 {
		t.Fatalf("SavingsPercent on price increase = %d, want 0", got)
	}

	p.PriceMonthlyCents = 0
	if got := SavingsPercent(p, IntervalYearly); got != 0 {
		t.Fatalf("SavingsPercent with zero baseline = %d, want 0", got)
	}
}

func TestSavingsPercentEqualPricing(t *testing.T) {
	p := testPlan()
	p.PriceYearlyCents = p.PriceMonthlyCents * 12
	if got := SavingsPercent(p, IntervalYearly); got != 0 {
		t.Fatalf("SavingsPercent with no discount = %d, want 0", got)
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{in: "monthly", want: IntervalMonthly},
		{in: "QUARTERLY", want: IntervalQuarterly},
		{in: " six_months ", want: IntervalSixMonths},
		{in: "yearly", want: IntervalYearly},
		{in: "weekly", want: IntervalMonthly},
		{in: "", want: IntervalMonthly},
	}

	for _, tt := range tests {
		if got := ParseInterval(tt.in); got != tt.want {
			t.Fatalf("ParseInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
