package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ScheduledRunsTotal counts scheduled job runs by outcome (success, error).
	ScheduledRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_runs_total",
			Help: "Total number of scheduled email job runs by status",
		},
		[]string{"status"},
	)

	// EmailsSentTotal counts delivered emails by type (phishing, eicar, ...).
	EmailsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of test emails delivered by type",
		},
		[]string{"type"},
	)

	// EmailSendFailuresTotal counts emails that could not be delivered by type.
	EmailSendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_send_failures_total",
			Help: "Total number of test emails that failed to send by type",
		},
		[]string{"type"},
	)
)

var (
	uuidPathSegment    = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F-]{27,}(/|$)`)
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, ScheduledRunsTotal, EmailsSentTotal, EmailSendFailuresTotal)
	})
}

// NormalizePath reduces cardinality by replacing id-like path segments with {id}.
// E.g. /schedules/6b3f... -> /schedules/{id}, /users/45 -> /users/{id}.
func NormalizePath(path string) string {
	path = uuidPathSegment.ReplaceAllString(path, "/{id}$1")
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncScheduledRuns increments the scheduled run counter for the given outcome.
func IncScheduledRuns(status string) {
	ScheduledRunsTotal.WithLabelValues(status).Inc()
}

// IncEmailsSent increments the delivered email counter for the given type.
func IncEmailsSent(emailType string) {
	EmailsSentTotal.WithLabelValues(emailType).Inc()
}

// IncEmailSendFailures increments the failed email counter for the given type.
func IncEmailSendFailures(emailType string) {
	EmailSendFailuresTotal.WithLabelValues(emailType).Inc()
}
