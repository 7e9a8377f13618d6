// Package telemetry registers the Prometheus metrics exposed on /metrics.
//
// HTTP metrics are labelled by gin route template (c.FullPath()), not the raw
// URL, so listing ids do not create a series each.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit outcomes recorded on AuditRecordsTotal.
const (
	AuditOutcomeRecorded       = "recorded"
	AuditOutcomeSkippedNoActor = "skipped_no_actor"
	AuditOutcomeSkippedRole    = "skipped_role"
	AuditOutcomeFailed         = "failed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

var (
	// AuditRecordsTotal counts every LogAdminAction call by outcome.
	AuditRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_audit_records_total",
			Help: "Admin audit attempts, by outcome (recorded, skipped_no_actor, skipped_role, failed).",
		},
		[]string{"outcome"},
	)

	// AuditShipFailuresTotal counts audit entries the external shipper rejected.
	AuditShipFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_audit_ship_failures_total",
		Help: "Audit entries persisted locally but not delivered to the external sink.",
	})

	// ListingStatusTransitionsTotal counts detected status changes by new status.
	ListingStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_listing_status_transitions_total",
			Help: "Listing status transitions detected by the update hook, by target status.",
		},
		[]string{"status"},
	)
)

// StatusLabel bounds the label cardinality of free-form listing statuses.
func StatusLabel(status string) string {
	switch status {
	case "pending", "approved", "rejected":
		return status
	}
	return "other"
}
