// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// UpstreamRequestDuration tracks calls to the conversation platform API.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Conversation platform API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"account", "status"},
	)

	// UpstreamPagesTotal tracks pages fetched from the conversation platform.
	UpstreamPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_pages_total",
			Help: "Conversation pages fetched from the platform API",
		},
		[]string{"account"},
	)

	// UpstreamRetriesTotal tracks retried upstream calls.
	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Retried conversation platform API calls",
		},
		[]string{"account"},
	)

	// ReportsTotal tracks report generations by outcome.
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_total",
			Help: "Reports generated",
		},
		[]string{"account", "period", "status"},
	)

	// ReportDuration tracks end-to-end report generation time.
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_duration_seconds",
			Help:    "Report generation duration including upstream fetch",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"account", "period"},
	)

	// ReportConversations tracks how many conversations each report aggregated.
	ReportConversations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_conversations",
			Help:    "Conversations aggregated per report",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
		[]string{"account", "period"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordUpstreamRequest records one call to the conversation platform.
func RecordUpstreamRequest(account, status string, duration float64) {
	UpstreamRequestDuration.WithLabelValues(account, status).Observe(duration)
}

// RecordReport records the outcome of one report generation.
func RecordReport(account, period, status string, duration float64, conversations int) {
	ReportsTotal.WithLabelValues(account, period, status).Inc()
	ReportDuration.WithLabelValues(account, period).Observe(duration)
	if status == "success" {
		ReportConversations.WithLabelValues(account, period).Observe(float64(conversations))
	}
}
