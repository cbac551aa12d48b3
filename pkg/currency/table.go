package currency

import (
	"fmt"
	"sync"
)

// Table is a live, editable set of exchange rates shared by concurrent
// readers. Conversions run on snapshots so a rate edit never changes the
// inputs of a calculation already in progress.
type Table struct {
	mu    sync.RWMutex
	pivot string
	codes []string
	rates RateTable
}

// NewTable builds a table for the given currencies. The pivot is always part
// of the set and always has rate 1.
func NewTable(pivot string, codes []string, rates RateTable) (*Table, error) {
	pivotCode, err := NormalizeCode(pivot)
	if err != nil {
		return nil, err
	}

	t := &Table{pivot: pivotCode, rates: RateTable{pivotCode: 1}}
	t.codes = append(t.codes, pivotCode)
	seen := map[string]struct{}{pivotCode: {}}

	for _, code := range codes {
		normalized, err := NormalizeCode(code)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		t.codes = append(t.codes, normalized)
	}
	if len(t.codes) < 2 {
		return nil, fmt.Errorf("currency table needs at least two currencies, got %d", len(t.codes))
	}

	if err := t.Replace(rates); err != nil {
		return nil, err
	}
	return t, nil
}

// Pivot returns the pivot currency code.
func (t *Table) Pivot() string {
	return t.pivot
}

// Codes returns the configured currencies, pivot first.
func (t *Table) Codes() []string {
	return append([]string(nil), t.codes...)
}

// Has reports whether code is one of the configured currencies.
func (t *Table) Has(code string) bool {
	for _, c := range t.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current rates.
func (t *Table) Snapshot() RateTable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rates.Clone()
}

// Set edits the rate of one configured currency. The pivot rate is fixed.
func (t *Table) Set(code string, rate float64) error {
	if !t.Has(code) {
		return fmt.Errorf("currency %s is not configured", code)
	}
	if code == t.pivot && rate != 1 {
		return fmt.Errorf("pivot currency %s must keep rate 1", code)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[code] = rate
	return nil
}

// Replace swaps in a new set of rates, e.g. after a config reload. Codes that
// are not configured are rejected; configured codes missing from rates keep
// rate 1.
func (t *Table) Replace(rates RateTable) error {
	next := RateTable{t.pivot: 1}
	for code, rate := range rates {
		normalized, err := NormalizeCode(code)
		if err != nil {
			return err
		}
		if !t.Has(normalized) {
			return fmt.Errorf("rate given for unconfigured currency %s", normalized)
		}
		if normalized == t.pivot {
			continue
		}
		next[normalized] = rate
	}
	for _, code := range t.codes {
		if _, ok := next[code]; !ok {
			next[code] = 1
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates = next
	return nil
}

// Convert converts amount between two configured currencies using the
// current rates.
func (t *Table) Convert(amount float64, from, to string) (float64, error) {
	if !t.Has(from) {
		return 0, fmt.Errorf("currency %s is not configured", from)
	}
	if !t.Has(to) {
		return 0, fmt.Errorf("currency %s is not configured", to)
	}
	return Convert(amount, from, to, t.Snapshot()), nil
}
