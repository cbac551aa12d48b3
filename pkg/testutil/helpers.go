// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/dream-calculator/pkg/finance"
)

// FindSelfTest finds a self-test check by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindSelfTest(results []finance.SelfTestResult, name string) *finance.SelfTestResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindYear returns the series point for the given plan year, or nil.
func FindYear(points []finance.YearPoint, year int) *finance.YearPoint {
	for i := range points {
		if points[i].Year == year {
			return &points[i]
		}
	}
	return nil
}

// WriteFile writes contents to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t testing.TB, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
