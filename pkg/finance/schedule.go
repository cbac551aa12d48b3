package finance

// YearPoint is one sample of the yearly growth series.
type YearPoint struct {
	Year               int     `json:"year"`
	CumulativeTotal    float64 `json:"cumulativeTotal"`
	CumulativeInvested float64 `json:"cumulativeInvested"`
}

// YearRow is one row of the contribution table.
type YearRow struct {
	Year                  int     `json:"year"`
	PerPeriodContribution float64 `json:"perPeriodContribution"`
	DeltaFromYearOne      float64 `json:"deltaFromYearOne"`
	InvestedThisYear      float64 `json:"investedThisYear"`
}

// YearlySeries samples the ComputeFutureValue recurrence at every year
// boundary. The first point is the year 0 baseline of zero.
func YearlySeries(plan ContributionPlan) []YearPoint {
	years := ClampTermYears(plan.TermYears)
	acc := newAccumulator(plan)

	series := make([]YearPoint, 0, years+1)
	series = append(series, YearPoint{})
	for year := 1; year <= years; year++ {
		investedYear := 0.0
		for i := 0; i < acc.perYear; i++ {
			investedYear += acc.step()
		}
		series = append(series, YearPoint{
			Year:               year,
			CumulativeTotal:    acc.balance,
			CumulativeInvested: series[year-1].CumulativeInvested + investedYear,
		})
	}
	return series
}

// ContributionTable lists the per-period contribution for every plan year
// and how it compares with the first year.
//
// InvestedThisYear assumes the contribution is constant within a year, so it
// is an estimate and can differ slightly from the YearlySeries totals.
func ContributionTable(plan ContributionPlan) []YearRow {
	years := ClampTermYears(plan.TermYears)
	perYear := float64(PeriodsPerYear(plan.Frequency))

	rows := make([]YearRow, 0, years)
	for year := 1; year <= years; year++ {
		perPeriod := plan.contributionForYear(year - 1)
		rows = append(rows, YearRow{
			Year:                  year,
			PerPeriodContribution: perPeriod,
			DeltaFromYearOne:      perPeriod - plan.AmountPerPeriod,
			InvestedThisYear:      perPeriod * perYear,
		})
	}
	return rows
}
