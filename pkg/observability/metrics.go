package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records application metrics in a Prometheus registry
type Collector struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	sessionOperations   *prometheus.CounterVec
	suggestionRequests  *prometheus.CounterVec
	suggestionResults   prometheus.Histogram
	suggestionDuration  *prometheus.HistogramVec
	activeSessions      prometheus.Gauge
	storeOperations     *prometheus.CounterVec
	storeDuration       *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry. namespace
// prefixes every metric name.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		sessionOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_operations_total",
			Help:      "Editing operations by kind and whether they changed the graph",
		}, []string{"operation", "changed"}),
		suggestionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_requests_total",
			Help:      "Similarity service requests by outcome",
		}, []string{"outcome"}),
		suggestionResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_results",
			Help:      "Number of suggestions returned per request",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}),
		suggestionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_request_duration_seconds",
			Help:      "Duration of similarity service requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open editing sessions",
		}),
		storeOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Snapshot store calls by operation and status",
		}, []string{"operation", "status"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of snapshot store calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	registry.MustRegister(
		c.httpRequests,
		c.httpRequestDuration,
		c.sessionOperations,
		c.suggestionRequests,
		c.suggestionResults,
		c.suggestionDuration,
		c.activeSessions,
		c.storeOperations,
		c.storeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// HTTPRequest records one served request. route is the route pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) HTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SessionOperation counts an editing operation
func (c *Collector) SessionOperation(operation string, changed bool) {
	c.sessionOperations.WithLabelValues(operation, strconv.FormatBool(changed)).Inc()
}

// SuggestionRequest records one similarity service call
func (c *Collector) SuggestionRequest(outcome string, results int, duration time.Duration) {
	c.suggestionRequests.WithLabelValues(outcome).Inc()
	if duration > 0 {
		c.suggestionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	}
	if outcome == "ok" || outcome == "empty" {
		c.suggestionResults.Observe(float64(results))
	}
}

// ActiveSessions sets the number of open sessions
func (c *Collector) ActiveSessions(count int) {
	c.activeSessions.Set(float64(count))
}

// StoreOperation records one snapshot store call
func (c *Collector) StoreOperation(operation string, err error, duration time.Duration) {
	c.storeOperations.WithLabelValues(operation, status(err)).Inc()
	c.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
