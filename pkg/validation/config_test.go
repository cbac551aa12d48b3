package validation

import (
	"strings"
	"testing"
)

func TestValidateTermYears(t *testing.T) {
	tests := []struct {
		name        string
		years       int
		wantWarning bool
	}{
		{"Lower bound", 1, false},
		{"Upper bound", 50, false},
		{"Zero years", 0, true},
		{"Negative years", -4, true},
		{"Too many years", 51, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateTermYears("savings", tt.years)
			if (warning != "") != tt.wantWarning {
				t.Errorf("ValidateTermYears(%d) = %q, wantWarning %v", tt.years, warning, tt.wantWarning)
			}
		})
	}

	if warning := ValidateTermYears("goal", 60); !strings.Contains(warning, "treated as 50 years") {
		t.Errorf("expected clamped value in warning, got %q", warning)
	}
}

func TestValidatePercent(t *testing.T) {
	if warning := ValidatePercent("savings", "annual rate", 8); warning != "" {
		t.Errorf("unexpected warning for 8%%: %s", warning)
	}
	if warning := ValidatePercent("savings", "annual rate", 100); warning != "" {
		t.Errorf("unexpected warning for 100%%: %s", warning)
	}
	if warning := ValidatePercent("savings", "annual rate", -1); warning == "" {
		t.Error("expected warning for negative rate")
	}
	if warning := ValidatePercent("savings", "annual growth", 150); warning == "" {
		t.Error("expected warning for growth above 100%")
	}
}

func TestValidateAmount(t *testing.T) {
	if warning := ValidateAmount("goal", "target amount", 0); warning != "" {
		t.Errorf("unexpected warning for zero amount: %s", warning)
	}
	if warning := ValidateAmount("goal", "target amount", -10); warning == "" {
		t.Error("expected warning for negative amount")
	}
}

func TestValidateFrequency(t *testing.T) {
	for _, frequency := range []string{"daily", "Biweekly", " monthly "} {
		if warning := ValidateFrequency("savings", frequency); warning != "" {
			t.Errorf("unexpected warning for %q: %s", frequency, warning)
		}
	}
	if warning := ValidateFrequency("savings", "weekly"); !strings.Contains(warning, "monthly") {
		t.Errorf("expected monthly fallback warning, got %q", warning)
	}
}

func TestValidateRates(t *testing.T) {
	warnings := ValidateRates(map[string]float64{"usd": 1, "eur": 0, "rub": -90})
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "EUR") || !strings.Contains(warnings[0], "treated as 1") {
		t.Errorf("unexpected first warning: %s", warnings[0])
	}
	if !strings.Contains(warnings[1], "RUB") {
		t.Errorf("unexpected second warning: %s", warnings[1])
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	valid := ConfigValidator{
		Savings: PlanConfig{Name: "savings", AmountName: "amount per period", Amount: 100, Rate: 8, TermYears: 10, Frequency: "monthly"},
		Goal:    PlanConfig{Name: "goal", AmountName: "target amount", Amount: 20000, Rate: 8, TermYears: 5, Frequency: "monthly"},
		Display: "eur",
		Codes:   []string{"USD", "EUR"},
		Rates:   map[string]float64{"usd": 1, "eur": 0.92},
	}
	if warnings := valid.ValidateAll(); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	invalid := valid
	invalid.Savings.TermYears = 70
	invalid.Goal.Frequency = "hourly"
	invalid.Display = "JPY"
	warnings := invalid.ValidateAll()
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
}
