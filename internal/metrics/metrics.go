// Package metrics exposes the Prometheus collectors shared by the API
// server and the export worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendlog_http_requests_total",
		Help: "HTTP requests handled, by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency per route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spendlog_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// ExpensesCreated counts successful store adds.
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spendlog_expenses_created_total",
		Help: "Expenses created through the store.",
	})

	// ExpensesDeleted counts successful store deletes.
	ExpensesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spendlog_expenses_deleted_total",
		Help: "Expenses deleted through the store.",
	})

	// ValidationFailures counts rejected adds by field.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendlog_validation_failures_total",
		Help: "Store adds rejected at validation, by field.",
	}, []string{"field"})

	// SheetSyncs counts export worker outcomes.
	SheetSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendlog_sheet_syncs_total",
		Help: "Spreadsheet sync attempts by outcome.",
	}, []string{"outcome"})
)
