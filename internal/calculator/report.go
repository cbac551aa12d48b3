// Package calculator runs complete savings and goal calculations: engine
// calls, currency conversion for display, memoization and self-tests.
package calculator

import (
	"github.com/iwvelando/dream-calculator/pkg/currency"
	"github.com/iwvelando/dream-calculator/pkg/finance"
)

// SavingsRequest asks how much a recurring deposit grows into. Amounts are in
// the pivot currency; Currency selects the display currency of the report.
type SavingsRequest struct {
	Plan     finance.ContributionPlan `json:"plan"`
	Currency string                   `json:"currency,omitempty"`
}

// GoalRequest asks how much to deposit each period to afford a dream.
type GoalRequest struct {
	DreamName string           `json:"dreamName,omitempty"`
	Plan      finance.GoalPlan `json:"plan"`
	Currency  string           `json:"currency,omitempty"`
}

// SavingsReport is everything a savings view shows. Money fields are in
// Currency; PivotResult keeps the totals in the pivot currency.
type SavingsReport struct {
	ID             string                   `json:"id"`
	Plan           finance.ContributionPlan `json:"plan"`
	PeriodsPerYear int                      `json:"periodsPerYear"`
	TotalPeriods   int                      `json:"totalPeriods"`
	Currency       string                   `json:"currency"`
	Pivot          string                   `json:"pivot"`
	Rate           float64                  `json:"rate"`
	Result         finance.ProjectionResult `json:"result"`
	PivotResult    finance.ProjectionResult `json:"pivotResult"`
	Series         []finance.YearPoint      `json:"series"`
	Table          []finance.YearRow        `json:"table"`
}

// GoalReport is everything a goal view shows.
type GoalReport struct {
	ID             string           `json:"id"`
	DreamName      string           `json:"dreamName,omitempty"`
	Plan           finance.GoalPlan `json:"plan"`
	PeriodsPerYear int              `json:"periodsPerYear"`
	TotalPeriods   int              `json:"totalPeriods"`
	Currency       string           `json:"currency"`
	Pivot          string           `json:"pivot"`
	Rate           float64          `json:"rate"`
	Payment        float64          `json:"payment"`
	PivotPayment   float64          `json:"pivotPayment"`
	TotalDeposited float64          `json:"totalDeposited"`
	TargetAmount   float64          `json:"targetAmount"`
}

// Conversion is the result of a single currency conversion.
type Conversion struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Converted float64 `json:"converted"`
}

// RatesView describes the live exchange-rate table.
type RatesView struct {
	Pivot string             `json:"pivot"`
	Codes []string           `json:"codes"`
	Rates currency.RateTable `json:"rates"`
}

// converter expresses pivot amounts in a display currency.
type converter struct {
	pivot string
	code  string
	rates currency.RateTable
}

func (c converter) amount(v float64) float64 {
	return currency.Convert(v, c.pivot, c.code, c.rates)
}

func (c converter) result(r finance.ProjectionResult) finance.ProjectionResult {
	converted := finance.ProjectionResult{
		FutureValue:   c.amount(r.FutureValue),
		TotalInvested: c.amount(r.TotalInvested),
	}
	converted.InterestEarned = converted.FutureValue - converted.TotalInvested
	return converted
}

func (c converter) series(points []finance.YearPoint) []finance.YearPoint {
	out := make([]finance.YearPoint, len(points))
	for i, p := range points {
		out[i] = finance.YearPoint{
			Year:               p.Year,
			CumulativeTotal:    c.amount(p.CumulativeTotal),
			CumulativeInvested: c.amount(p.CumulativeInvested),
		}
	}
	return out
}

func (c converter) table(rows []finance.YearRow) []finance.YearRow {
	out := make([]finance.YearRow, len(rows))
	for i, row := range rows {
		out[i] = finance.YearRow{
			Year:                  row.Year,
			PerPeriodContribution: c.amount(row.PerPeriodContribution),
			DeltaFromYearOne:      c.amount(row.DeltaFromYearOne),
			InvestedThisYear:      c.amount(row.InvestedThisYear),
		}
	}
	return out
}
