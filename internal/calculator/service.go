package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/dream-calculator/internal/cache"
	"github.com/iwvelando/dream-calculator/pkg/currency"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"go.uber.org/zap"
)

// ErrUnknownCurrency is returned for currency codes outside the configured set.
var ErrUnknownCurrency = errors.New("unknown currency")

// Calculation kinds used in cache keys and metrics.
const (
	KindSavings = "savings"
	KindGoal    = "goal"
	KindConvert = "convert"
)

// Observer receives calculation metrics. *metrics.Recorder satisfies it.
type Observer interface {
	ObserveCalculation(kind string, elapsed time.Duration, cached bool)
	ObserveCacheLookup(kind string, hit bool)
	ObserveSelfTest(report finance.SelfTestReport)
}

type nopObserver struct{}

func (nopObserver) ObserveCalculation(string, time.Duration, bool) {}
func (nopObserver) ObserveCacheLookup(string, bool)                {}
func (nopObserver) ObserveSelfTest(finance.SelfTestReport)         {}

// Option customizes a Service.
type Option func(*Service)

// WithCache memoizes reports in c.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithObserver reports metrics to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithDefaultCurrency sets the display currency used when a request names none.
func WithDefaultCurrency(code string) Option {
	return func(s *Service) {
		s.defaultCurrency = strings.ToUpper(strings.TrimSpace(code))
	}
}

// Service runs calculations against a live exchange-rate table.
type Service struct {
	logger          *zap.Logger
	rates           *currency.Table
	cache           cache.Cache
	observer        Observer
	defaultCurrency string
	newID           func() string
}

// NewService creates a Service. The table is shared and may be edited while
// the service runs.
func NewService(logger *zap.Logger, rates *currency.Table, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rates == nil {
		return nil, fmt.Errorf("exchange-rate table cannot be nil")
	}

	s := &Service{
		logger:   logger,
		rates:    rates,
		cache:    cache.NopCache{},
		observer: nopObserver{},
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultCurrency == "" {
		s.defaultCurrency = rates.Pivot()
	}
	if !rates.Has(s.defaultCurrency) {
		return nil, fmt.Errorf("default currency %s: %w", s.defaultCurrency, ErrUnknownCurrency)
	}
	return s, nil
}

// Rates returns the live exchange-rate table.
func (s *Service) Rates() *currency.Table {
	return s.rates
}

// RatesView returns a snapshot of the exchange-rate table.
func (s *Service) RatesView() RatesView {
	return RatesView{
		Pivot: s.rates.Pivot(),
		Codes: s.rates.Codes(),
		Rates: s.rates.Snapshot(),
	}
}

// SetRate edits one exchange rate.
func (s *Service) SetRate(code string, rate float64) error {
	normalized, err := s.resolveCurrency(code)
	if err != nil {
		return err
	}
	if err := s.rates.Set(normalized, rate); err != nil {
		return err
	}
	s.logger.Info("exchange rate updated",
		zap.String("op", "calculator.SetRate"),
		zap.String("currency", normalized),
		zap.Float64("rate", rate),
	)
	return nil
}

// Savings computes a savings report.
func (s *Service) Savings(ctx context.Context, req SavingsRequest) (*SavingsReport, error) {
	code, err := s.resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	req.Plan.Frequency = knownFrequency(req.Plan.Frequency)
	rates := s.rates.Snapshot()
	key := cacheKey(KindSavings, req.Plan, code, rates)

	var report SavingsReport
	if s.lookup(ctx, KindSavings, key, &report) {
		return &report, nil
	}

	start := time.Now()
	conv := converter{pivot: s.rates.Pivot(), code: code, rates: rates}
	pivotResult := finance.ComputeFutureValue(req.Plan)
	report = SavingsReport{
		ID:             s.newID(),
		Plan:           req.Plan,
		PeriodsPerYear: finance.PeriodsPerYear(req.Plan.Frequency),
		TotalPeriods:   finance.TotalPeriods(req.Plan.TermYears, req.Plan.Frequency),
		Currency:       code,
		Pivot:          conv.pivot,
		Rate:           conv.amount(1),
		Result:         conv.result(pivotResult),
		PivotResult:    pivotResult,
		Series:         conv.series(finance.YearlySeries(req.Plan)),
		Table:          conv.table(finance.ContributionTable(req.Plan)),
	}
	elapsed := time.Since(start)
	s.observer.ObserveCalculation(KindSavings, elapsed, false)

	s.logger.Debug("savings computed",
		zap.String("op", "calculator.Savings"),
		zap.String("id", report.ID),
		zap.String("currency", code),
		zap.Int("periods", report.TotalPeriods),
		zap.Float64("futureValue", report.Result.FutureValue),
		zap.Duration("duration", elapsed),
	)

	s.store(ctx, KindSavings, key, report)
	return &report, nil
}

// Goal computes the deposit needed per period to reach a dream.
func (s *Service) Goal(ctx context.Context, req GoalRequest) (*GoalReport, error) {
	code, err := s.resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	req.Plan.Frequency = knownFrequency(req.Plan.Frequency)
	rates := s.rates.Snapshot()
	key := cacheKey(KindGoal, struct {
		Name string
		Plan finance.GoalPlan
	}{req.DreamName, req.Plan}, code, rates)

	var report GoalReport
	if s.lookup(ctx, KindGoal, key, &report) {
		return &report, nil
	}

	start := time.Now()
	conv := converter{pivot: s.rates.Pivot(), code: code, rates: rates}
	payment := finance.ComputeRequiredPayment(req.Plan)
	periods := finance.TotalPeriods(req.Plan.TermYears, req.Plan.Frequency)
	report = GoalReport{
		ID:             s.newID(),
		DreamName:      strings.TrimSpace(req.DreamName),
		Plan:           req.Plan,
		PeriodsPerYear: finance.PeriodsPerYear(req.Plan.Frequency),
		TotalPeriods:   periods,
		Currency:       code,
		Pivot:          conv.pivot,
		Rate:           conv.amount(1),
		Payment:        conv.amount(payment),
		PivotPayment:   payment,
		TotalDeposited: conv.amount(payment * float64(periods)),
		TargetAmount:   conv.amount(req.Plan.TargetAmount),
	}
	elapsed := time.Since(start)
	s.observer.ObserveCalculation(KindGoal, elapsed, false)

	s.logger.Debug("goal computed",
		zap.String("op", "calculator.Goal"),
		zap.String("id", report.ID),
		zap.String("currency", code),
		zap.Int("periods", periods),
		zap.Float64("payment", report.Payment),
		zap.Duration("duration", elapsed),
	)

	s.store(ctx, KindGoal, key, report)
	return &report, nil
}

// Convert converts amount between two configured currencies.
func (s *Service) Convert(amount float64, from, to string) (*Conversion, error) {
	fromCode, err := s.resolveCurrency(from)
	if err != nil {
		return nil, err
	}
	toCode, err := s.resolveCurrency(to)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	converted, err := s.rates.Convert(amount, fromCode, toCode)
	if err != nil {
		return nil, err
	}
	s.observer.ObserveCalculation(KindConvert, time.Since(start), false)

	return &Conversion{Amount: amount, From: fromCode, To: toCode, Converted: converted}, nil
}

// SelfTest runs the engine self-checks and logs any failing check.
func (s *Service) SelfTest() finance.SelfTestReport {
	report := finance.RunSelfTests()
	s.observer.ObserveSelfTest(report)

	for _, failed := range report.Failed() {
		s.logger.Error("self-test failed",
			zap.String("op", "calculator.SelfTest"),
			zap.String("check", failed.Name),
			zap.Float64("expected", failed.Expected),
			zap.Float64("actual", failed.Actual),
		)
	}
	s.logger.Info("self-tests finished",
		zap.String("op", "calculator.SelfTest"),
		zap.Int("passed", report.PassedCount),
		zap.Int("total", report.TotalCount),
	)
	return report
}

func (s *Service) resolveCurrency(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return s.defaultCurrency, nil
	}
	normalized, err := currency.NormalizeCode(code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownCurrency, err)
	}
	if !s.rates.Has(normalized) {
		return "", fmt.Errorf("%w: %s is not one of %v", ErrUnknownCurrency, normalized, s.rates.Codes())
	}
	return normalized, nil
}

// knownFrequency reports an unset frequency as the monthly one the engine uses.
func knownFrequency(f finance.Frequency) finance.Frequency {
	switch f {
	case finance.Daily, finance.Biweekly, finance.Monthly:
		return f
	}
	return finance.Monthly
}

func (s *Service) lookup(ctx context.Context, kind, key string, dst interface{}) bool {
	cached, ok := s.cache.Get(ctx, key)
	if ok {
		if err := json.Unmarshal([]byte(cached), dst); err != nil {
			s.logger.Warn("discarding unreadable cache entry",
				zap.String("op", "calculator.lookup"),
				zap.String("kind", kind),
				zap.Error(err),
			)
			ok = false
		}
	}
	s.observer.ObserveCacheLookup(kind, ok)
	if ok {
		s.observer.ObserveCalculation(kind, 0, true)
	}
	return ok
}

func (s *Service) store(ctx context.Context, kind, key string, report interface{}) {
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("failed to encode report for cache",
			zap.String("op", "calculator.store"),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	if err := s.cache.Set(ctx, key, string(data)); err != nil {
		s.logger.Warn("failed to cache report",
			zap.String("op", "calculator.store"),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

// cacheKey identifies a report by everything it depends on: the plan, the
// display currency and the rates in effect.
func cacheKey(kind string, plan interface{}, code string, rates currency.RateTable) string {
	// json.Marshal sorts map keys, so equal rate tables encode identically.
	data, _ := json.Marshal(struct {
		Plan     interface{}        `json:"p"`
		Currency string             `json:"c"`
		Rates    currency.RateTable `json:"r"`
	}{plan, code, rates})
	return kind + ":" + string(data)
}
