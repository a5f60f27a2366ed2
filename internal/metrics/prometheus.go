package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "planets"

// PrometheusRecorder exports metrics through a private Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	stockCache      *prometheus.CounterVec
	stockLoads      *prometheus.CounterVec
	stockLoadTime   prometheus.Histogram
	usersRegistered prometheus.Counter
	planetsCreated  prometheus.Counter
	loginAttempts   *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry, including process and Go runtime collectors.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method", "route"}),
		stockCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stocks",
			Name:      "cache_requests_total",
			Help:      "Stock table cache lookups by result.",
		}, []string{"result"}),
		stockLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stocks",
			Name:      "table_loads_total",
			Help:      "Stock CSV loads by status.",
		}, []string{"status"}),
		stockLoadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stocks",
			Name:      "table_load_duration_seconds",
			Help:      "Time spent reading and parsing the stock CSV.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Users created through registration.",
		}),
		planetsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planets_created_total",
			Help:      "Planets created through the API.",
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
	}

	p.registry.MustRegister(
		p.httpRequests,
		p.httpDuration,
		p.stockCache,
		p.stockLoads,
		p.stockLoadTime,
		p.usersRegistered,
		p.planetsCreated,
		p.loginAttempts,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return p
}

// Handler exposes the registry in Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveHTTPRequest records a handled request.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncStockCacheHit records a fresh cache read.
func (p *PrometheusRecorder) IncStockCacheHit() {
	p.stockCache.WithLabelValues("hit").Inc()
}

// IncStockCacheMiss records a read that required a load.
func (p *PrometheusRecorder) IncStockCacheMiss() {
	p.stockCache.WithLabelValues("miss").Inc()
}

// ObserveStockTableLoad records a CSV load.
func (p *PrometheusRecorder) ObserveStockTableLoad(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.stockLoads.WithLabelValues(status).Inc()
	p.stockLoadTime.Observe(duration.Seconds())
}

// IncUserRegistered records a new user.
func (p *PrometheusRecorder) IncUserRegistered() {
	p.usersRegistered.Inc()
}

// IncPlanetCreated records a new planet.
func (p *PrometheusRecorder) IncPlanetCreated() {
	p.planetsCreated.Inc()
}

// IncLoginAttempt records a login attempt.
func (p *PrometheusRecorder) IncLoginAttempt(result string) {
	p.loginAttempts.WithLabelValues(result).Inc()
}
