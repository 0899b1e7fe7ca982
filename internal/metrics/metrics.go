// Package metrics exposes Prometheus collectors for the checkout flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of CheckoutVerifications.
const (
	OutcomeSuccess          = "success"
	OutcomePartial          = "partial"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeForbidden        = "forbidden"
	OutcomeNotFound         = "not_found"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeLocked           = "locked"
	OutcomeInProgress       = "in_progress"
	OutcomeError            = "error"
)

var (
	CheckoutsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kelas",
		Subsystem: "checkout",
		Name:      "orders_created_total",
		Help:      "Orders created at checkout.",
	})

	CheckoutVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kelas",
		Subsystem: "checkout",
		Name:      "verifications_total",
		Help:      "Payment verification attempts by outcome.",
	}, []string{"outcome"})

	EnrollmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kelas",
		Subsystem: "enrollment",
		Name:      "created_total",
		Help:      "Enrollments created.",
	})

	GatewayLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kelas",
		Subsystem: "checkout",
		Name:      "gateway_create_order_seconds",
		Help:      "Latency of payment gateway order creation.",
		Buckets:   prometheus.DefBuckets,
	})
)
