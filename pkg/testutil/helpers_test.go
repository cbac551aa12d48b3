package testutil

import (
	"os"
	"testing"

	"github.com/iwvelando/dream-calculator/pkg/finance"
)

func TestFindSelfTest(t *testing.T) {
	results := []finance.SelfTestResult{
		{Name: "check A", Pass: true, Expected: 1, Actual: 1},
		{Name: "check B", Pass: false, Expected: 2, Actual: 3},
	}

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
		expectPass  bool
	}{
		{name: "Find passing check", searchName: "check A", expectFound: true, expectPass: true},
		{name: "Find failing check", searchName: "check B", expectFound: true, expectPass: false},
		{name: "Search for non-existent check", searchName: "check C", expectFound: false},
		{name: "Search with empty name", searchName: "", expectFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindSelfTest(results, tt.searchName)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("expected nil, got %+v", result)
				}
				return
			}
			if result == nil {
				t.Fatalf("expected to find %q", tt.searchName)
			}
			if result.Pass != tt.expectPass {
				t.Errorf("Pass = %v, expected %v", result.Pass, tt.expectPass)
			}
		})
	}

	// The returned pointer refers to the slice element
	FindSelfTest(results, "check B").Pass = true
	if !results[1].Pass {
		t.Error("expected modification through pointer to update the slice")
	}
}

func TestFindYear(t *testing.T) {
	points := finance.YearlySeries(finance.ContributionPlan{
		AmountPerPeriod: 100,
		TermYears:       3,
		Frequency:       finance.Monthly,
	})

	if got := FindYear(points, 2); got == nil || got.CumulativeInvested != 2400 {
		t.Errorf("unexpected year 2 point %+v", got)
	}
	if got := FindYear(points, 4); got != nil {
		t.Errorf("expected nil for a year past the term, got %+v", got)
	}
	if got := FindYear(nil, 0); got != nil {
		t.Errorf("expected nil for empty series, got %+v", got)
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "config.yaml", "a: 1\n")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back %s: %v", path, err)
	}
	if string(data) != "a: 1\n" {
		t.Errorf("unexpected contents %q", data)
	}
}
