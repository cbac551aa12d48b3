// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/dream-calculator/internal/calculator"
	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"github.com/iwvelando/dream-calculator/pkg/format"
	"github.com/iwvelando/dream-calculator/pkg/mathutil"
	"github.com/iwvelando/dream-calculator/pkg/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Writer renders reports in one output format.
type Writer struct {
	w      *errWriter
	format string
	tag    language.Tag
	p      *message.Printer
}

// NewWriter returns a Writer for format (pretty, csv or json). lang picks
// the labels and number style of pretty output.
func NewWriter(w io.Writer, outputFormat, lang string) (*Writer, error) {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return nil, err
	}
	tag := format.Language(lang)
	return &Writer{w: &errWriter{w: w}, format: outputFormat, tag: tag, p: message.NewPrinter(tag)}, nil
}

// errWriter remembers the first write error and refuses later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	if err != nil {
		e.err = fmt.Errorf("failed to write output: %w", err)
	}
	return n, e.err
}

// Savings writes a savings report.
func (o *Writer) Savings(report *calculator.SavingsReport) error {
	switch o.format {
	case constants.OutputFormatJSON:
		return o.json(report)
	case constants.OutputFormatCSV:
		return o.savingsCSV(report)
	}
	return o.prettySavings(report)
}

// Goal writes a goal report.
func (o *Writer) Goal(report *calculator.GoalReport) error {
	switch o.format {
	case constants.OutputFormatJSON:
		return o.json(report)
	case constants.OutputFormatCSV:
		return o.csv([][]string{
			{"dream", "currency", "target", "years", "frequency", "periods", "payment", "total deposited"},
			{
				report.DreamName,
				report.Currency,
				decimal(report.TargetAmount),
				strconv.Itoa(finance.ClampTermYears(report.Plan.TermYears)),
				report.Plan.Frequency.String(),
				strconv.Itoa(report.TotalPeriods),
				decimal(report.Payment),
				decimal(report.TotalDeposited),
			},
		})
	}
	return o.prettyGoal(report)
}

// Conversion writes a single currency conversion.
func (o *Writer) Conversion(c *calculator.Conversion) error {
	switch o.format {
	case constants.OutputFormatJSON:
		return o.json(c)
	case constants.OutputFormatCSV:
		return o.csv([][]string{
			{"amount", "from", "to", "converted"},
			{decimal(c.Amount), c.From, c.To, decimal(c.Converted)},
		})
	}
	o.line(labelConversion, format.Number(o.tag, c.Amount), c.From, format.Number(o.tag, c.Converted), c.To)
	return o.w.err
}

// Rates writes the exchange-rate table.
func (o *Writer) Rates(view calculator.RatesView) error {
	switch o.format {
	case constants.OutputFormatJSON:
		return o.json(view)
	case constants.OutputFormatCSV:
		records := [][]string{{"currency", "rate"}}
		for _, code := range view.Codes {
			records = append(records, []string{code, rate(view.Rates.Rate(code))})
		}
		return o.csv(records)
	}
	o.line(labelRatesHeading, view.Pivot)
	for _, code := range view.Codes {
		_, _ = o.p.Fprintf(o.w, "%s | %.4f\n", code, view.Rates.Rate(code))
	}
	return o.w.err
}

// SelfTest writes a self-test report.
func (o *Writer) SelfTest(report finance.SelfTestReport) error {
	switch o.format {
	case constants.OutputFormatJSON:
		return o.json(report)
	case constants.OutputFormatCSV:
		records := [][]string{{"name", "pass", "expected", "actual"}}
		for _, r := range report.Results {
			records = append(records, []string{r.Name, strconv.FormatBool(r.Pass), rate(r.Expected), rate(r.Actual)})
		}
		return o.csv(records)
	}
	for _, r := range report.Results {
		status := o.p.Sprintf(labelFail)
		if r.Pass {
			status = o.p.Sprintf(labelPass)
		}
		o.line(labelSelfTestRow, status, r.Name, o.p.Sprintf("%.4f", r.Expected), o.p.Sprintf("%.4f", r.Actual))
	}
	o.line(labelSelfTestSummary, report.PassedCount, report.TotalCount)
	return o.w.err
}

// SelfTestSummary writes the one-line self-test result shown under pretty
// reports. Machine-readable formats get nothing.
func (o *Writer) SelfTestSummary(report finance.SelfTestReport) error {
	if o.format != constants.OutputFormatPretty {
		return nil
	}
	fmt.Fprintln(o.w)
	o.line(labelSelfTestSummary, report.PassedCount, report.TotalCount)
	return o.w.err
}

func (o *Writer) prettySavings(report *calculator.SavingsReport) error {
	plan := report.Plan
	money := func(v float64) string { return format.Money(o.tag, report.Currency, v) }

	o.line(labelSavingsHeading)
	o.line(labelDeposit,
		money(plan.AmountPerPeriod*report.Rate),
		o.p.Sprintf(frequencyLabel(plan.Frequency)),
		finance.ClampTermYears(plan.TermYears),
		report.TotalPeriods,
	)
	o.line(labelRate, plan.AnnualRatePercent, o.interestLabel(plan.CompoundingEnabled))
	if !mathutil.IsZero(plan.AnnualGrowthPercent) {
		o.line(labelGrowth, plan.AnnualGrowthPercent)
	}
	o.exchangeRate(report.Pivot, report.Currency, report.Rate)
	o.line(labelFutureValue, money(report.Result.FutureValue))
	o.line(labelTotalInvested, money(report.Result.TotalInvested))
	o.line(labelInterestEarned, money(report.Result.InterestEarned))

	fmt.Fprintln(o.w)
	o.line(labelSeriesHeader)
	o.line(labelSeriesRule)
	for _, point := range report.Series {
		fmt.Fprintf(o.w, "%4d | %s | %s\n", point.Year, money(point.CumulativeTotal), money(point.CumulativeInvested))
	}

	fmt.Fprintln(o.w)
	o.line(labelTableHeader)
	o.line(labelTableRule)
	for _, row := range report.Table {
		fmt.Fprintf(o.w, "%4d | %s | %s | %s\n", row.Year,
			money(row.PerPeriodContribution), money(row.DeltaFromYearOne), money(row.InvestedThisYear))
	}
	return o.w.err
}

func (o *Writer) prettyGoal(report *calculator.GoalReport) error {
	plan := report.Plan
	money := func(v float64) string { return format.Money(o.tag, report.Currency, v) }

	if report.DreamName != "" {
		o.line(labelDreamHeading, report.DreamName)
	} else {
		o.line(labelGoalHeading)
	}
	o.line(labelTarget, money(report.TargetAmount), finance.ClampTermYears(plan.TermYears))
	o.line(labelRate, plan.AnnualRatePercent, o.interestLabel(plan.CompoundingEnabled))
	o.exchangeRate(report.Pivot, report.Currency, report.Rate)
	o.line(labelPayment, money(report.Payment), o.p.Sprintf(frequencyLabel(plan.Frequency)), report.TotalPeriods)
	o.line(labelTotalDeposited, money(report.TotalDeposited))
	return o.w.err
}

func (o *Writer) interestLabel(compounding bool) string {
	if compounding {
		return o.p.Sprintf(labelCompound)
	}
	return o.p.Sprintf(labelSimple)
}

func (o *Writer) exchangeRate(pivot, code string, r float64) {
	if pivot == code {
		return
	}
	o.line(labelExchangeRate, pivot, r, code)
}

func (o *Writer) line(key message.Reference, args ...interface{}) {
	_, _ = o.p.Fprintf(o.w, key, args...)
	fmt.Fprintln(o.w)
}

func (o *Writer) json(v interface{}) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *Writer) csv(records [][]string) error {
	w := csv.NewWriter(o.w)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (o *Writer) savingsCSV(report *calculator.SavingsReport) error {
	records := [][]string{{"year", "saved so far", "invested so far", "per deposit", "increase since year 1", "invested this year"}}
	for _, point := range report.Series {
		record := []string{strconv.Itoa(point.Year), decimal(point.CumulativeTotal), decimal(point.CumulativeInvested), "", "", ""}
		if point.Year >= 1 && point.Year <= len(report.Table) {
			row := report.Table[point.Year-1]
			record[3] = decimal(row.PerPeriodContribution)
			record[4] = decimal(row.DeltaFromYearOne)
			record[5] = decimal(row.InvestedThisYear)
		}
		records = append(records, record)
	}
	return o.csv(records)
}

func decimal(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', 2, 64)
}

func rate(v float64) string {
	return strconv.FormatFloat(mathutil.Round4(v), 'f', 4, 64)
}
