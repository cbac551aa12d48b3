package finance

import (
	"math"

	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/mathutil"
	"gonum.org/v1/gonum/floats/scalar"
)

// SelfTestResult is the outcome of one analytic check.
type SelfTestResult struct {
	Name     string  `json:"name"`
	Pass     bool    `json:"pass"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
}

// SelfTestReport summarizes a RunSelfTests run.
type SelfTestReport struct {
	Results     []SelfTestResult `json:"results"`
	PassedCount int              `json:"passedCount"`
	TotalCount  int              `json:"totalCount"`
}

// AllPassed reports whether every check passed.
func (r SelfTestReport) AllPassed() bool {
	return r.PassedCount == r.TotalCount
}

// Failed returns the checks that did not pass.
func (r SelfTestReport) Failed() []SelfTestResult {
	var failed []SelfTestResult
	for _, result := range r.Results {
		if !result.Pass {
			failed = append(failed, result)
		}
	}
	return failed
}

// RunSelfTests cross-checks the engines against closed-form annuity
// formulas. A failing check means the arithmetic is broken; it is reported,
// not returned as an error.
func RunSelfTests() SelfTestReport {
	checks := []func() SelfTestResult{
		checkGoalWithoutInterest,
		checkGoalInvertsAnnuity,
		checkFutureValueWithoutInterest,
		checkFutureValueAnnuityDue,
	}

	report := SelfTestReport{Results: make([]SelfTestResult, 0, len(checks))}
	for _, check := range checks {
		result := check()
		if result.Pass {
			report.PassedCount++
		}
		report.Results = append(report.Results, result)
	}
	report.TotalCount = len(report.Results)
	return report
}

func checkGoalWithoutInterest() SelfTestResult {
	got := ComputeRequiredPayment(GoalPlan{
		TargetAmount: 1200,
		TermYears:    1,
		Frequency:    Monthly,
	})
	return SelfTestResult{
		Name:     "goal(no interest) 1200 / 12 = 100",
		Pass:     scalar.EqualWithinAbs(got, 100, constants.ExactTolerance),
		Expected: 100,
		Actual:   mathutil.Round(got),
	}
}

func checkGoalInvertsAnnuity() SelfTestResult {
	const payment = 100.0
	r := 0.12 / float64(PeriodsPerYear(Monthly))
	n := float64(PeriodsPerYear(Monthly))
	goal := payment * (math.Pow(1+r, n) - 1) / r

	got := ComputeRequiredPayment(GoalPlan{
		TargetAmount:       goal,
		AnnualRatePercent:  12,
		TermYears:          1,
		CompoundingEnabled: true,
		Frequency:          Monthly,
	})
	return SelfTestResult{
		Name:     "goal(interest) invert to payment≈100",
		Pass:     scalar.EqualWithinAbsOrRel(got, payment, constants.CompoundTolerance, constants.CompoundTolerance),
		Expected: mathutil.Round4(payment),
		Actual:   mathutil.Round4(got),
	}
}

func checkFutureValueWithoutInterest() SelfTestResult {
	res := ComputeFutureValue(ContributionPlan{
		AmountPerPeriod: 100,
		TermYears:       1,
		Frequency:       Monthly,
	})
	return SelfTestResult{
		Name:     "FV no interest: 100*12 = 1200",
		Pass:     scalar.EqualWithinAbs(res.FutureValue, 1200, constants.ExactTolerance),
		Expected: 1200,
		Actual:   mathutil.Round(res.FutureValue),
	}
}

func checkFutureValueAnnuityDue() SelfTestResult {
	const payment = 100.0
	r := 0.12 / float64(PeriodsPerYear(Monthly))
	n := float64(PeriodsPerYear(Monthly))
	expected := payment * ((math.Pow(1+r, n) - 1) / r) * (1 + r)

	res := ComputeFutureValue(ContributionPlan{
		AmountPerPeriod:    payment,
		AnnualRatePercent:  12,
		TermYears:          1,
		CompoundingEnabled: true,
		Frequency:          Monthly,
	})
	return SelfTestResult{
		Name:     "FV with interest (annuity-due)",
		Pass:     scalar.EqualWithinAbsOrRel(res.FutureValue, expected, constants.CompoundTolerance, constants.CompoundTolerance),
		Expected: mathutil.Round4(expected),
		Actual:   mathutil.Round4(res.FutureValue),
	}
}
