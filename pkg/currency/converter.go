// Package currency converts amounts between a small set of currencies using
// user-edited exchange rates expressed against a pivot currency.
package currency

import (
	"fmt"
	"strings"

	xcurrency "golang.org/x/text/currency"
)

// RateTable maps a currency code to the number of units of that currency
// per one unit of the pivot currency.
type RateTable map[string]float64

// Rate returns the table entry for code. A missing or zero entry counts as 1
// so a half-edited table never divides by zero. Negative entries are returned
// as is.
func (t RateTable) Rate(code string) float64 {
	rate := t[code]
	if rate == 0 {
		return 1
	}
	return rate
}

// Clone returns an independent copy of the table.
func (t RateTable) Clone() RateTable {
	clone := make(RateTable, len(t))
	for code, rate := range t {
		clone[code] = rate
	}
	return clone
}

// ToPivot expresses amount, given in code, in the pivot currency.
func ToPivot(amount float64, code string, table RateTable) float64 {
	return amount / table.Rate(code)
}

// FromPivot expresses a pivot-currency amount in code.
func FromPivot(amountPivot float64, code string, table RateTable) float64 {
	return amountPivot * table.Rate(code)
}

// Convert moves amount from one currency to another through the pivot.
// No rounding is applied.
func Convert(amount float64, from, to string, table RateTable) float64 {
	return FromPivot(ToPivot(amount, from, table), to, table)
}

// NormalizeCode upper-cases and validates an ISO 4217 currency code.
func NormalizeCode(code string) (string, error) {
	unit, err := xcurrency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid currency code %q: %w", code, err)
	}
	return unit.String(), nil
}

// Symbol returns the narrow display symbol for code, e.g. "$" for USD, or the
// code itself when it is not a known ISO currency.
func Symbol(code string) string {
	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		return code
	}
	return fmt.Sprint(xcurrency.NarrowSymbol(unit))
}
