package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/testforge/hrm-e2e/internal/domain"
)

// Outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsActive  prometheus.Gauge

	// Page primitive metrics
	PrimitivesTotal     *prometheus.CounterVec
	PrimitiveDuration   *prometheus.HistogramVec
	AssertionsTotal     *prometheus.CounterVec
	SteadyStateTimeouts prometheus.Counter

	// Scenario metrics
	ScenariosTotal   *prometheus.CounterVec
	ScenarioDuration *prometheus.HistogramVec
	ScenarioAttempts *prometheus.HistogramVec
	RunsTotal        *prometheus.CounterVec

	// Infrastructure metrics
	BrowserLaunches  *prometheus.CounterVec
	ScreenshotsTotal *prometheus.CounterVec
	NameClaimsTotal  *prometheus.CounterVec
}

// NewMetrics creates a metrics set on its own registry, so several sets
// can coexist in one process (tests, parallel runs).
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hrm_e2e"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of active HTTP requests",
			},
		),

		// Page primitive metrics
		PrimitivesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "primitives_total",
				Help:      "Total number of page interaction primitives",
			},
			[]string{"action", "outcome", "code"},
		),
		PrimitiveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "primitive_duration_seconds",
				Help:      "Page interaction primitive duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"action"},
		),
		AssertionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assertions_total",
				Help:      "Total number of page assertions",
			},
			[]string{"assertion", "outcome"},
		),
		SteadyStateTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steady_state_timeouts_total",
				Help:      "Total number of steady-state waits that gave up",
			},
		),

		// Scenario metrics
		ScenariosTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scenarios_total",
				Help:      "Total number of scenarios executed",
			},
			[]string{"scenario", "status"},
		),
		ScenarioDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scenario_duration_seconds",
				Help:      "Scenario duration in seconds, all attempts included",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
			},
			[]string{"scenario"},
		),
		ScenarioAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scenario_attempts",
				Help:      "Attempts needed per scenario",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
			[]string{"scenario"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of suite runs",
			},
			[]string{"engine", "status"},
		),

		// Infrastructure metrics
		BrowserLaunches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "browser_launches_total",
				Help:      "Total number of browser sessions launched",
			},
			[]string{"engine", "outcome"},
		),
		ScreenshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "screenshots_total",
				Help:      "Total number of screenshots captured or uploaded",
			},
			[]string{"destination", "outcome"},
		),
		NameClaimsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "name_claims_total",
				Help:      "Total number of unique-name claims",
			},
			[]string{"registry", "outcome"},
		),
	}

	return m
}

// Registry returns the gatherer holding every metric of this set
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes every metric to path in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPrimitive records one interaction primitive
func (m *Metrics) RecordPrimitive(action string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome, code := OutcomeOK, ""
	if err != nil {
		outcome, code = OutcomeError, domain.GetErrorCode(err)
	}
	m.PrimitivesTotal.WithLabelValues(action, outcome, code).Inc()
	m.PrimitiveDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordAssertion records one assertion
func (m *Metrics) RecordAssertion(assertion string, err error) {
	if m == nil {
		return
	}
	m.AssertionsTotal.WithLabelValues(assertion, outcome(err)).Inc()
}

// RecordSteadyStateTimeout records a steady-state wait that gave up
func (m *Metrics) RecordSteadyStateTimeout() {
	if m == nil {
		return
	}
	m.SteadyStateTimeouts.Inc()
}

// RecordScenario records scenario metrics
func (m *Metrics) RecordScenario(result domain.ScenarioResult) {
	if m == nil {
		return
	}
	m.ScenariosTotal.WithLabelValues(result.Name, string(result.Status)).Inc()
	m.ScenarioDuration.WithLabelValues(result.Name).Observe(result.Duration.Seconds())
	m.ScenarioAttempts.WithLabelValues(result.Name).Observe(float64(result.Attempts))
}

// RecordRun records a finished suite run
func (m *Metrics) RecordRun(engine string, succeeded bool) {
	if m == nil {
		return
	}
	status := "passed"
	if !succeeded {
		status = "failed"
	}
	m.RunsTotal.WithLabelValues(engine, status).Inc()
}

// RecordBrowserLaunch records a browser session launch
func (m *Metrics) RecordBrowserLaunch(engine string, err error) {
	if m == nil {
		return
	}
	m.BrowserLaunches.WithLabelValues(engine, outcome(err)).Inc()
}

// RecordScreenshot records a screenshot capture or upload
func (m *Metrics) RecordScreenshot(destination string, err error) {
	if m == nil {
		return
	}
	m.ScreenshotsTotal.WithLabelValues(destination, outcome(err)).Inc()
}

// RecordNameClaim records a unique-name claim
func (m *Metrics) RecordNameClaim(registry string, claimed bool, err error) {
	if m == nil {
		return
	}
	result := "claimed"
	switch {
	case err != nil:
		result = OutcomeError
	case !claimed:
		result = "taken"
	}
	m.NameClaimsTotal.WithLabelValues(registry, result).Inc()
}

// HTTPMiddleware returns middleware for recording HTTP metrics
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsActive.Inc()
		defer m.HTTPRequestsActive.Dec()

		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
