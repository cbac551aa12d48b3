package finance

import (
	"math"

	"github.com/iwvelando/dream-calculator/pkg/mathutil"
)

// GoalPlan describes a savings target to reach within a number of years.
type GoalPlan struct {
	TargetAmount       float64   `json:"targetAmount" yaml:"targetAmount"`
	AnnualRatePercent  float64   `json:"annualRatePercent" yaml:"annualRatePercent"`
	TermYears          int       `json:"termYears" yaml:"termYears"`
	CompoundingEnabled bool      `json:"compoundingEnabled" yaml:"compoundingEnabled"`
	Frequency          Frequency `json:"frequency" yaml:"frequency"`
}

// ComputeRequiredPayment returns the deposit needed every period to reach
// the target.
//
// With interest it is the ordinary annuity sinking-fund payment, i.e. each
// deposit lands at the end of its period. This is deliberately the opposite
// timing of ComputeFutureValue. Contribution growth is not modelled.
func ComputeRequiredPayment(plan GoalPlan) float64 {
	n := TotalPeriods(plan.TermYears, plan.Frequency)
	if n <= 0 {
		return plan.TargetAmount
	}
	if !plan.CompoundingEnabled || plan.AnnualRatePercent <= 0 {
		return plan.TargetAmount / float64(n)
	}

	r := mathutil.PercentToDecimal(plan.AnnualRatePercent) / float64(PeriodsPerYear(plan.Frequency))
	denom := math.Pow(1+r, float64(n)) - 1
	if denom <= 0 {
		return plan.TargetAmount / float64(n)
	}
	return plan.TargetAmount * r / denom
}
