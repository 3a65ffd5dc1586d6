package prometheus

import (
	"strconv"
	"time"

	"aitool-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool metrics
	ToolInvocationCounter *prometheus.CounterVec
	QuotaRejectionCounter *prometheus.CounterVec
	SuspensionCounter     prometheus.Counter

	// Provider metrics
	ProviderRequestCounter   *prometheus.CounterVec
	ProviderLatencyHistogram *prometheus.HistogramVec

	// Auth metrics
	AuthErrorCounter *prometheus.CounterVec

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	// Tool metrics
	ToolInvocationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Total number of tool invocations by tool and outcome",
		},
		[]string{"tool", "status"},
	)

	QuotaRejectionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Total number of requests rejected for exceeding the monthly quota",
		},
		[]string{"plan"},
	)

	SuspensionCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_suspensions_total",
		Help:      "Total number of users suspended by the abuse detector",
	})

	// Provider metrics
	ProviderRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of upstream provider attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatencyHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of upstream provider attempts in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Auth metrics
	AuthErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_errors_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"error_type"},
	)

	// Database operation metrics
	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Request metrics
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Track API request count
			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			// Process the request
			err := next(c)

			// Track request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(duration)

			// Track errors
			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackDBOperation returns a function that tracks database operation duration
func TrackDBOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		if DBOperationHistogram == nil {
			return
		}
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// RecordToolInvocation increments the tool invocation counter
func RecordToolInvocation(tool, status string) {
	if ToolInvocationCounter == nil {
		return
	}
	ToolInvocationCounter.With(prometheus.Labels{"tool": tool, "status": status}).Inc()
}

// RecordQuotaRejection increments the quota rejection counter
func RecordQuotaRejection(plan string) {
	if QuotaRejectionCounter == nil {
		return
	}
	QuotaRejectionCounter.With(prometheus.Labels{"plan": plan}).Inc()
}

// RecordSuspension increments the user suspension counter
func RecordSuspension() {
	if SuspensionCounter == nil {
		return
	}
	SuspensionCounter.Inc()
}

// RecordProviderRequest records one upstream provider attempt
func RecordProviderRequest(provider, outcome string, duration time.Duration) {
	if ProviderRequestCounter == nil {
		return
	}
	ProviderRequestCounter.With(prometheus.Labels{"provider": provider, "outcome": outcome}).Inc()
	ProviderLatencyHistogram.With(prometheus.Labels{"provider": provider}).Observe(duration.Seconds())
}

// RecordAuthError increments the authentication error counter
func RecordAuthError(errorType string) {
	if AuthErrorCounter == nil {
		return
	}
	AuthErrorCounter.With(prometheus.Labels{"error_type": errorType}).Inc()
}
