package calculator

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/dream-calculator/internal/cache"
	"github.com/iwvelando/dream-calculator/internal/config"
	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/currency"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"github.com/iwvelando/dream-calculator/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingObserver struct {
	mu           sync.Mutex
	computed     map[string]int
	cached       map[string]int
	hits, misses int
	selfTests    int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{computed: map[string]int{}, cached: map[string]int{}}
}

func (o *countingObserver) ObserveCalculation(kind string, _ time.Duration, cached bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cached {
		o.cached[kind]++
		return
	}
	o.computed[kind]++
}

func (o *countingObserver) ObserveCacheLookup(_ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *countingObserver) ObserveSelfTest(finance.SelfTestReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selfTests++
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	table, err := currency.NewTable("USD", []string{"USD", "EUR", "RUB"}, currency.RateTable{"EUR": 0.5, "RUB": 90})
	require.NoError(t, err)
	svc, err := NewService(zap.NewNop(), table, opts...)
	require.NoError(t, err)
	return svc
}

func monthlyPlan() finance.ContributionPlan {
	return finance.ContributionPlan{
		AmountPerPeriod:    100,
		AnnualRatePercent:  0,
		TermYears:          1,
		CompoundingEnabled: false,
		Frequency:          finance.Monthly,
	}
}

func TestNewServiceErrors(t *testing.T) {
	_, err := NewService(zap.NewNop(), nil)
	assert.Error(t, err)

	table, err := currency.NewTable("USD", []string{"USD", "EUR"}, nil)
	require.NoError(t, err)
	_, err = NewService(nil, table, WithDefaultCurrency("JPY"))
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestSavingsInPivotCurrency(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.Savings(context.Background(), SavingsRequest{Plan: monthlyPlan()})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "USD", report.Currency)
	assert.Equal(t, 12, report.PeriodsPerYear)
	assert.Equal(t, 12, report.TotalPeriods)
	assert.Equal(t, 1.0, report.Rate)
	assert.InDelta(t, 1200, report.Result.FutureValue, 1e-9)
	assert.InDelta(t, 1200, report.Result.TotalInvested, 1e-9)
	assert.InDelta(t, 0, report.Result.InterestEarned, 1e-9)
	assert.Equal(t, report.Result, report.PivotResult)
	require.Len(t, report.Series, 2)
	require.Len(t, report.Table, 1)
}

func TestSavingsConvertsForDisplay(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.Savings(context.Background(), SavingsRequest{Plan: monthlyPlan(), Currency: "eur"})
	require.NoError(t, err)

	assert.Equal(t, "EUR", report.Currency)
	assert.Equal(t, 0.5, report.Rate)
	assert.InDelta(t, 600, report.Result.FutureValue, 1e-9)
	assert.InDelta(t, 1200, report.PivotResult.FutureValue, 1e-9)
	assert.InDelta(t, 600, report.Series[1].CumulativeTotal, 1e-9)
	assert.InDelta(t, 50, report.Table[0].PerPeriodContribution, 1e-9)
}

func TestSavingsUnknownCurrency(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Savings(context.Background(), SavingsRequest{Plan: monthlyPlan(), Currency: "JPY"})
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = svc.Savings(context.Background(), SavingsRequest{Plan: monthlyPlan(), Currency: "dollars"})
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestSavingsCacheHit(t *testing.T) {
	observer := newCountingObserver()
	svc := newTestService(t, WithCache(cache.NewMemoryCache(0)), WithObserver(observer))
	ctx := context.Background()

	first, err := svc.Savings(ctx, SavingsRequest{Plan: monthlyPlan()})
	require.NoError(t, err)
	second, err := svc.Savings(ctx, SavingsRequest{Plan: monthlyPlan()})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, observer.computed[KindSavings])
	assert.Equal(t, 1, observer.cached[KindSavings])
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, observer.misses)
}

func TestRateChangeInvalidatesCachedReport(t *testing.T) {
	svc := newTestService(t, WithCache(cache.NewMemoryCache(0)))
	ctx := context.Background()
	req := SavingsRequest{Plan: monthlyPlan(), Currency: "EUR"}

	before, err := svc.Savings(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.SetRate("eur", 2))
	after, err := svc.Savings(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, before.ID, after.ID)
	assert.InDelta(t, 2400, after.Result.FutureValue, 1e-9)
}

func TestGoal(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.Goal(context.Background(), GoalRequest{
		DreamName: "  Bicycle ",
		Plan: finance.GoalPlan{
			TargetAmount: 1200,
			TermYears:    1,
			Frequency:    finance.Monthly,
		},
		Currency: "RUB",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bicycle", report.DreamName)
	assert.Equal(t, 12, report.TotalPeriods)
	assert.InDelta(t, 100, report.PivotPayment, 1e-9)
	assert.InDelta(t, 9000, report.Payment, 1e-6)
	assert.InDelta(t, 108000, report.TotalDeposited, 1e-6)
	assert.InDelta(t, 108000, report.TargetAmount, 1e-6)
}

func TestGoalCacheKeyIncludesDreamName(t *testing.T) {
	svc := newTestService(t, WithCache(cache.NewMemoryCache(0)))
	ctx := context.Background()
	plan := finance.GoalPlan{TargetAmount: 500, TermYears: 2, Frequency: finance.Biweekly}

	a, err := svc.Goal(ctx, GoalRequest{DreamName: "Kite", Plan: plan})
	require.NoError(t, err)
	b, err := svc.Goal(ctx, GoalRequest{DreamName: "Puppy", Plan: plan})
	require.NoError(t, err)

	assert.Equal(t, "Kite", a.DreamName)
	assert.Equal(t, "Puppy", b.DreamName)
	assert.Equal(t, a.Payment, b.Payment)
}

func TestConvert(t *testing.T) {
	svc := newTestService(t)

	conv, err := svc.Convert(90, "rub", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "RUB", conv.From)
	assert.Equal(t, "EUR", conv.To)
	assert.InDelta(t, 0.5, conv.Converted, 1e-9)

	_, err = svc.Convert(1, "USD", "CHF")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestSetRate(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.SetRate("RUB", 100))
	assert.Equal(t, 100.0, svc.RatesView().Rates["RUB"])

	assert.ErrorIs(t, svc.SetRate("CHF", 1), ErrUnknownCurrency)
	assert.Error(t, svc.SetRate("USD", 2), "pivot rate is fixed")
}

func TestRatesView(t *testing.T) {
	svc := newTestService(t)

	view := svc.RatesView()
	assert.Equal(t, "USD", view.Pivot)
	assert.Equal(t, []string{"USD", "EUR", "RUB"}, view.Codes)
	assert.Equal(t, 90.0, view.Rates["RUB"])
}

func TestSelfTest(t *testing.T) {
	observer := newCountingObserver()
	svc := newTestService(t, WithObserver(observer))

	report := svc.SelfTest()
	assert.True(t, report.AllPassed())
	assert.Equal(t, 4, report.TotalCount)
	assert.Equal(t, 1, observer.selfTests)

	check := testutil.FindSelfTest(report.Results, "FV no interest: 100*12 = 1200")
	require.NotNil(t, check)
	assert.Equal(t, 1200.0, check.Expected)
}

func TestServiceFromExampleConfiguration(t *testing.T) {
	cfg, err := config.LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	require.NoError(t, err)

	table, err := cfg.RateTable()
	require.NoError(t, err)
	svc, err := NewService(zap.NewNop(), table, WithDefaultCurrency(cfg.Currency.Display))
	require.NoError(t, err)

	savings, err := svc.Savings(context.Background(), SavingsRequest{Plan: cfg.SavingsPlan()})
	require.NoError(t, err)
	assert.Equal(t, 120, savings.TotalPeriods)
	assert.InDelta(t, 12000, savings.Result.TotalInvested, 1e-6)
	year5 := testutil.FindYear(savings.Series, 5)
	require.NotNil(t, year5)
	assert.InDelta(t, 6000, year5.CumulativeInvested, 1e-6)
	assert.Greater(t, savings.Result.InterestEarned, 0.0)

	goal, err := svc.Goal(context.Background(), GoalRequest{DreamName: cfg.Goal.DreamName, Plan: cfg.GoalPlan()})
	require.NoError(t, err)
	assert.Equal(t, "Trip to Lapland", goal.DreamName)
	assert.Less(t, goal.Payment, 20000.0/60)
}

func TestUnsetFrequencyReportedAsMonthly(t *testing.T) {
	svc := newTestService(t, WithCache(cache.NewMemoryCache(0)))
	plan := monthlyPlan()
	plan.Frequency = 0

	first, err := svc.Savings(context.Background(), SavingsRequest{Plan: plan})
	require.NoError(t, err)
	assert.Equal(t, finance.Monthly, first.Plan.Frequency)

	second, err := svc.Savings(context.Background(), SavingsRequest{Plan: plan})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "served from cache")
}
