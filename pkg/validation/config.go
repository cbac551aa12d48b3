// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/mathutil"
)

// ValidateTermYears warns when a plan term will be clamped by the engine.
func ValidateTermYears(planName string, years int) string {
	clamped := mathutil.ClampInt(years, constants.MinTermYears, constants.MaxTermYears)
	if clamped != years {
		return fmt.Sprintf("%s term of %d years is outside %d-%d and will be treated as %d years",
			planName, years, constants.MinTermYears, constants.MaxTermYears, clamped)
	}
	return ""
}

// ValidatePercent warns when a percentage input is outside 0-100. Such values
// are still computed but give degenerate results.
func ValidatePercent(planName, field string, value float64) string {
	if mathutil.Clamp(value, 0, constants.MaxPercent) != value {
		return fmt.Sprintf("%s %s of %.2f%% is outside 0-%.0f%%", planName, field, value, constants.MaxPercent)
	}
	return ""
}

// ValidateAmount warns about negative money amounts.
func ValidateAmount(planName, field string, value float64) string {
	if value < 0 {
		return fmt.Sprintf("%s %s of %.2f is negative", planName, field, value)
	}
	return ""
}

// ValidateFrequency warns about frequencies the engine does not know; those
// are computed as monthly.
func ValidateFrequency(planName, frequency string) string {
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case "daily", "biweekly", "monthly":
		return ""
	}
	return fmt.Sprintf("%s frequency %q is unknown and will be treated as monthly", planName, frequency)
}

// ValidateRates warns about exchange rates that produce odd conversions.
func ValidateRates(rates map[string]float64) []string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var warnings []string
	for _, code := range codes {
		rate := rates[code]
		switch {
		case rate == 0:
			warnings = append(warnings, fmt.Sprintf("exchange rate for %s is zero and will be treated as 1", strings.ToUpper(code)))
		case rate < 0:
			warnings = append(warnings, fmt.Sprintf("exchange rate for %s is negative (%.4f), conversions will change sign", strings.ToUpper(code), rate))
		}
	}
	return warnings
}

// ConfigValidator collects the user-editable inputs that are worth checking
// before a calculation.
type ConfigValidator struct {
	Savings PlanConfig
	Goal    PlanConfig
	Display string
	Codes   []string
	Rates   map[string]float64
}

// PlanConfig is the subset of a plan that validation looks at.
type PlanConfig struct {
	Name       string
	Amount     float64
	AmountName string
	Rate       float64
	Growth     float64
	TermYears  int
	Frequency  string
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, plan := range []PlanConfig{cv.Savings, cv.Goal} {
		checks := []string{
			ValidateAmount(plan.Name, plan.AmountName, plan.Amount),
			ValidatePercent(plan.Name, "annual rate", plan.Rate),
			ValidatePercent(plan.Name, "annual growth", plan.Growth),
			ValidateTermYears(plan.Name, plan.TermYears),
			ValidateFrequency(plan.Name, plan.Frequency),
		}
		for _, warning := range checks {
			if warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}

	warnings = append(warnings, ValidateRates(cv.Rates)...)

	if cv.Display != "" {
		found := false
		for _, code := range cv.Codes {
			if strings.EqualFold(code, cv.Display) {
				found = true
				break
			}
		}
		if !found {
			warnings = append(warnings, fmt.Sprintf("display currency %s is not in the configured currencies %v",
				strings.ToUpper(cv.Display), cv.Codes))
		}
	}

	return warnings
}
