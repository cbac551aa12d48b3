package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRequiredPaymentWithoutInterest(t *testing.T) {
	tests := []struct {
		name     string
		plan     GoalPlan
		expected float64
	}{
		{"Monthly no compounding", GoalPlan{TargetAmount: 1200, TermYears: 1, Frequency: Monthly}, 100},
		{"Compounding with zero rate", GoalPlan{TargetAmount: 1200, TermYears: 1, CompoundingEnabled: true, Frequency: Monthly}, 100},
		{"Negative rate falls back to equal shares", GoalPlan{TargetAmount: 2600, AnnualRatePercent: -5, TermYears: 1, CompoundingEnabled: true, Frequency: Biweekly}, 100},
		{"Rate ignored without compounding", GoalPlan{TargetAmount: 3650, AnnualRatePercent: 8, TermYears: 1, Frequency: Daily}, 10},
		{"Term clamped up", GoalPlan{TargetAmount: 1200, TermYears: -3, Frequency: Monthly}, 100},
		{"Zero target", GoalPlan{TargetAmount: 0, AnnualRatePercent: 8, TermYears: 5, CompoundingEnabled: true, Frequency: Monthly}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ComputeRequiredPayment(tt.plan), 1e-9)
		})
	}
}

func TestComputeRequiredPaymentInvertsOrdinaryAnnuity(t *testing.T) {
	r := 0.12 / 12
	goal := 100 * (math.Pow(1+r, 12) - 1) / r

	got := ComputeRequiredPayment(GoalPlan{
		TargetAmount:       goal,
		AnnualRatePercent:  12,
		TermYears:          1,
		CompoundingEnabled: true,
		Frequency:          Monthly,
	})

	assert.InDelta(t, 100, got, 1e-4)
}

func TestComputeRequiredPaymentTimingDiffersFromFutureValue(t *testing.T) {
	goal := GoalPlan{
		TargetAmount:       20000,
		AnnualRatePercent:  8,
		TermYears:          5,
		CompoundingEnabled: true,
		Frequency:          Monthly,
	}
	payment := ComputeRequiredPayment(goal)

	saved := ComputeFutureValue(ContributionPlan{
		AmountPerPeriod:    payment,
		AnnualRatePercent:  goal.AnnualRatePercent,
		TermYears:          goal.TermYears,
		CompoundingEnabled: true,
		Frequency:          goal.Frequency,
	})

	// Saving the end-of-period payment at the start of each period
	// overshoots the goal by exactly one period of growth.
	r := 0.08 / 12
	assert.InDelta(t, goal.TargetAmount*(1+r), saved.FutureValue, 1e-6)
	assert.Less(t, payment, goal.TargetAmount/60)
}
