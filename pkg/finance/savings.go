package finance

import (
	"math"

	"github.com/iwvelando/dream-calculator/pkg/mathutil"
)

// ContributionPlan describes a recurring savings plan.
type ContributionPlan struct {
	AmountPerPeriod     float64   `json:"amountPerPeriod" yaml:"amountPerPeriod"`
	AnnualRatePercent   float64   `json:"annualRatePercent" yaml:"annualRatePercent"`
	TermYears           int       `json:"termYears" yaml:"termYears"`
	CompoundingEnabled  bool      `json:"compoundingEnabled" yaml:"compoundingEnabled"`
	Frequency           Frequency `json:"frequency" yaml:"frequency"`
	AnnualGrowthPercent float64   `json:"annualGrowthPercent" yaml:"annualGrowthPercent"`
}

// ProjectionResult holds the outcome of a savings plan.
type ProjectionResult struct {
	FutureValue    float64 `json:"futureValue"`
	TotalInvested  float64 `json:"totalInvested"`
	InterestEarned float64 `json:"interestEarned"`
}

// periodRate is the growth applied once per period, zero without compounding.
func (p ContributionPlan) periodRate() float64 {
	if !p.CompoundingEnabled {
		return 0
	}
	return mathutil.PercentToDecimal(p.AnnualRatePercent) / float64(PeriodsPerYear(p.Frequency))
}

// contributionForYear returns the per-period contribution during the given
// zero-based plan year.
func (p ContributionPlan) contributionForYear(yearIndex int) float64 {
	return p.AmountPerPeriod * math.Pow(1+mathutil.PercentToDecimal(p.AnnualGrowthPercent), float64(yearIndex))
}

// accumulator runs the per-period recurrence shared by ComputeFutureValue
// and YearlySeries. Each contribution posts at the start of its period and
// then the whole balance grows by one period of interest.
type accumulator struct {
	plan       ContributionPlan
	perYear    int
	rate       float64
	balance    float64
	invested   float64
	nextPeriod int
}

func newAccumulator(plan ContributionPlan) *accumulator {
	return &accumulator{
		plan:    plan,
		perYear: PeriodsPerYear(plan.Frequency),
		rate:    plan.periodRate(),
	}
}

// step applies one period and returns the amount contributed in it.
func (a *accumulator) step() float64 {
	contribution := a.plan.contributionForYear(a.nextPeriod / a.perYear)
	a.balance += contribution
	a.invested += contribution
	if a.rate > 0 {
		a.balance *= 1 + a.rate
	}
	a.nextPeriod++
	return contribution
}

// ComputeFutureValue returns the accumulated value of a savings plan.
//
// Contributions are annuity-due: each one is added before that period's
// interest is applied, and no profit is ever withdrawn. The term is clamped
// to the supported range; a negative rate applies no growth.
func ComputeFutureValue(plan ContributionPlan) ProjectionResult {
	acc := newAccumulator(plan)
	total := TotalPeriods(plan.TermYears, plan.Frequency)
	for p := 0; p < total; p++ {
		acc.step()
	}

	return ProjectionResult{
		FutureValue:    acc.balance,
		TotalInvested:  acc.invested,
		InterestEarned: acc.balance - acc.invested,
	}
}
