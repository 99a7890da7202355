package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "restaurant_tables"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_failures_total",
			Help: "Total number of rejected authentication attempts",
		},
	)

	TableOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_table_operations_total",
			Help: "Total number of table operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ReservationOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_reservation_operations_total",
			Help: "Total number of reservation operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	AvailabilityCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_availability_check_duration_seconds",
			Help:    "Duration of availability checks in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	QRCodesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_qr_codes_issued_total",
			Help: "Total number of QR codes generated by category",
		},
		[]string{"category"},
	)
)

// RecordTableOperation counts a table operation; outcome is "ok" or an error kind.
func RecordTableOperation(operation, outcome string) {
	TableOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordReservationOperation(operation, outcome string) {
	ReservationOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordQRCode(category string) {
	QRCodesIssuedTotal.WithLabelValues(category).Inc()
}

// TrackAvailabilityCheck returns a function that records the elapsed time since startTime.
func TrackAvailabilityCheck() func(startTime time.Time) {
	return func(startTime time.Time) {
		AvailabilityCheckDuration.Observe(time.Since(startTime).Seconds())
	}
}
