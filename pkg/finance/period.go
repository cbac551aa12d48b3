// Package finance provides the savings and goal arithmetic behind the dream
// calculator: future value of recurring contributions, the payment required
// to reach a target, and the year-by-year schedule derived from both.
package finance

import (
	"fmt"
	"strings"

	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/mathutil"
)

// Frequency is how often a contribution is made.
type Frequency int

// Supported contribution frequencies. The zero value is not a valid
// frequency and is treated as monthly by PeriodsPerYear.
const (
	Daily Frequency = iota + 1
	Biweekly
	Monthly
)

// String returns the configuration name of the frequency.
func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Biweekly:
		return "biweekly"
	case Monthly:
		return "monthly"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// ParseFrequency maps a name such as "daily" to a Frequency. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseFrequency(name string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "daily":
		return Daily, nil
	case "biweekly":
		return Biweekly, nil
	case "monthly":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("unknown frequency %q, expected daily, biweekly or monthly", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// PeriodsPerYear returns the number of contribution periods in one year.
// Unknown frequencies count as monthly.
func PeriodsPerYear(f Frequency) int {
	switch f {
	case Daily:
		return constants.DaysPerYear
	case Biweekly:
		return constants.BiweeklyPeriodsPerYear
	default:
		return constants.MonthsPerYear
	}
}

// ClampTermYears bounds a plan term to the supported range of years.
func ClampTermYears(years int) int {
	return mathutil.ClampInt(years, constants.MinTermYears, constants.MaxTermYears)
}

// TotalPeriods returns the number of contribution periods in a plan of the
// given length after clamping the term.
func TotalPeriods(termYears int, f Frequency) int {
	return ClampTermYears(termYears) * PeriodsPerYear(f)
}
