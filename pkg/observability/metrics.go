package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// authzDenialsTotal lives at package level so the authorization guard can
// record denials without threading a Metrics handle through every route.
var authzDenialsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "backoffice_authz_denials_total",
		Help: "Total number of denied requests, by operation and reason",
	},
	[]string{"operation", "reason"},
)

// RecordAuthzDenial counts a denied request. unauthenticated distinguishes
// missing/invalid credentials from an insufficient permission set.
func RecordAuthzDenial(operation string, unauthenticated bool) {
	reason := "forbidden"
	if unauthenticated {
		reason = "unauthenticated"
	}
	authzDenialsTotal.WithLabelValues(operation, reason).Inc()
}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Authentication metrics
	LoginsTotal         *prometheus.CounterVec
	SessionsPurgedTotal prometheus.Counter

	// List query metrics
	ListQueryDuration *prometheus.HistogramVec

	// Scheduler metrics
	SchedulerJobRunsTotal *prometheus.CounterVec
	SchedulerJobDuration  *prometheus.HistogramVec

	// Upload metrics
	UploadURLsSignedTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive    prometheus.Gauge
	DBConnectionsIdle      prometheus.Gauge
	DBConnectionsWaitCount prometheus.Gauge

	// Redis metrics
	RateLimitRejectionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"method", "status"},
		),
		SessionsPurgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_sessions_purged_total",
				Help: "Total number of expired sessions removed",
			},
		),

		ListQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_list_query_duration_seconds",
				Help:    "List query duration in seconds, by resource table",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table"},
		),

		SchedulerJobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_scheduler_job_runs_total",
				Help: "Total number of scheduled job runs",
			},
			[]string{"job", "status"},
		),
		SchedulerJobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_scheduler_job_duration_seconds",
				Help:    "Scheduled job duration in seconds",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60},
			},
			[]string{"job"},
		),

		UploadURLsSignedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_upload_urls_signed_total",
				Help: "Total number of presigned upload URLs issued",
			},
			[]string{"kind"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "backoffice_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "backoffice_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBConnectionsWaitCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "backoffice_db_connections_wait_count",
				Help: "Total number of connections waited for",
			},
		),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_rate_limit_rejections_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
	}

	registry.MustRegister(
		authzDenialsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.LoginsTotal,
		m.SessionsPurgedTotal,
		m.ListQueryDuration,
		m.SchedulerJobRunsTotal,
		m.SchedulerJobDuration,
		m.UploadURLsSignedTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.DBConnectionsWaitCount,
		m.RateLimitRejectionsTotal,
	)

	return m
}

// ObserveDBStats copies connection pool stats into the gauges. Call it
// periodically, typically from the scheduler.
func (m *Metrics) ObserveDBStats(stats sql.DBStats) {
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
	m.DBConnectionsWaitCount.Set(float64(stats.WaitCount))
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// MetricsHandler returns the handler serving the /metrics endpoint.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
