package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AvailabilityQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_availability_queries_total",
			Help: "Total number of availability computations",
		},
		[]string{"cache"},
	)

	ReservationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_reservations_created_total",
			Help: "Total number of reservation creation attempts",
		},
		[]string{"outcome"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_payments_total",
			Help: "Total number of reservation payments",
		},
		[]string{"method", "outcome"},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_ledger_entries_total",
			Help: "Total number of wallet ledger entries applied",
		},
		[]string{"type", "reason"},
	)

	PromotionsAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_promotions_applied_total",
			Help: "Total number of promotion applications",
		},
		[]string{"type", "outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordAvailabilityQuery(cacheOutcome string) {
	AvailabilityQueriesTotal.WithLabelValues(cacheOutcome).Inc()
}

func RecordReservationCreated(outcome string) {
	ReservationsCreatedTotal.WithLabelValues(outcome).Inc()
}

func RecordPayment(method, outcome string) {
	PaymentsTotal.WithLabelValues(method, outcome).Inc()
}

func RecordLedgerEntry(entryType, reason string) {
	LedgerEntriesTotal.WithLabelValues(entryType, reason).Inc()
}

func RecordPromotionApplied(promoType, outcome string) {
	PromotionsAppliedTotal.WithLabelValues(promoType, outcome).Inc()
}
