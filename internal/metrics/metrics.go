// Package metrics exposes Prometheus metrics for calculations, self-tests,
// the report cache and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests and multiple servers in one
// process never collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	calculations    *prometheus.CounterVec
	calcDuration    *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	selfTestPassed  prometheus.Gauge
	selfTestTotal   prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder registers all metrics under namespace, or the default one
// when namespace is empty.
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = constants.MetricsNamespace
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Calculations served, by kind (savings, goal, convert).",
		}, []string{"kind"}),
		calcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent computing a report, cache hits excluded.",
			Buckets:   []float64{.00001, .0001, .001, .005, .01, .05, .1},
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups, by kind and result.",
		}, []string{"kind", "result"}),
		selfTestPassed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selftest_passed",
			Help:      "Self-test checks passing in the latest run.",
		}),
		selfTestTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selftest_total",
			Help:      "Self-test checks in the latest run.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.registry.MustRegister(
		r.calculations,
		r.calcDuration,
		r.cacheLookups,
		r.selfTestPassed,
		r.selfTestTotal,
		r.requests,
		r.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveCalculation records one computed or cached report.
func (r *Recorder) ObserveCalculation(kind string, elapsed time.Duration, cached bool) {
	r.calculations.WithLabelValues(kind).Inc()
	if !cached {
		r.calcDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

// ObserveCacheLookup records a cache hit or miss.
func (r *Recorder) ObserveCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

// ObserveSelfTest records the latest self-test run.
func (r *Recorder) ObserveSelfTest(report finance.SelfTestReport) {
	r.selfTestPassed.Set(float64(report.PassedCount))
	r.selfTestTotal.Set(float64(report.TotalCount))
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
