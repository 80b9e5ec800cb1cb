package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	ReservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "booking", Name: "reservations_created_total", Help: "Admitted reservations."},
	)
	CapacityRejections = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "booking", Name: "capacity_rejections_total", Help: "Admissions denied for capacity."},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "webhook_events_total", Help: "Payment webhook events."},
		[]string{"result"}, // applied|duplicate|ignored|invalid|error
	)
	SweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "booking", Name: "reconcile_sweep_runs_total", Help: "Background reconciliation sweeps."},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPLatency,
		ReservationsCreated,
		CapacityRejections,
		WebhookEvents,
		SweepRuns,
	)
}
