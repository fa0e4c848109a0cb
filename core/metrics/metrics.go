package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modsync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modsync_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Transfer metrics
	transfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modsync_transfers_total",
			Help: "Total number of mod transfers by terminal phase",
		},
		[]string{"phase"},
	)

	transferBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modsync_transfer_bytes_total",
			Help: "Total bytes written by successful mod transfers",
		},
	)

	transferRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modsync_transfer_retries_total",
			Help: "Total download attempts beyond the first",
		},
	)

	transfersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "modsync_transfers_in_flight",
			Help: "Number of mod transfers currently holding a permit",
		},
	)

	// Reconciliation metrics
	reconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "modsync_reconcile_duration_seconds",
			Help:    "Time to fetch the manifest, scan the mods folder and compare",
			Buckets: prometheus.DefBuckets,
		},
	)

	reconcileFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modsync_reconcile_failures_total",
			Help: "Total reconciliation passes that failed",
		},
	)

	modsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "modsync_mods",
			Help: "Number of server mods by sync status after the last reconciliation",
		},
		[]string{"status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		RecordHTTPRequest(c.Method(), path, status, time.Since(start))
		return err
	}
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTransfer records the outcome of one transfer.
func RecordTransfer(phase string, success bool, bytes int64, attempts int) {
	transfersTotal.WithLabelValues(phase).Inc()
	if success {
		transferBytes.Add(float64(bytes))
	}
	if attempts > 1 {
		transferRetries.Add(float64(attempts - 1))
	}
}

// TransferStarted marks a transfer as in flight.
func TransferStarted() {
	transfersInFlight.Inc()
}

// TransferFinished clears an in-flight transfer.
func TransferFinished() {
	transfersInFlight.Dec()
}

// RecordReconcile records a reconciliation pass and the resulting status counts.
func RecordReconcile(duration time.Duration, missing, updateAvailable, latest int) {
	reconcileDuration.Observe(duration.Seconds())
	modsByStatus.WithLabelValues("missing").Set(float64(missing))
	modsByStatus.WithLabelValues("update_available").Set(float64(updateAvailable))
	modsByStatus.WithLabelValues("latest").Set(float64(latest))
}

// RecordReconcileFailure counts a failed reconciliation pass.
func RecordReconcileFailure() {
	reconcileFailures.Inc()
}
