package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "homepro"

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of booking creation attempts by result.",
		},
		[]string{"result"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by users.",
		},
	)

	paymentConfirmed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_confirmed_total",
			Help:      "Count of payment confirmations by result.",
		},
		[]string{"result"},
	)

	reviewCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_created_total",
			Help:      "Count of reviews created.",
		},
	)

	identityResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolved_total",
			Help:      "Count of bearer tokens resolved by resolver.",
		},
		[]string{"resolver"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingCancelled,
			paymentConfirmed,
			reviewCreated,
			identityResolved,
			httpRequests,
			httpDuration,
		)
	})
}

func IncBookingCreated(result string) {
	bookingCreated.WithLabelValues(result).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncPaymentConfirmed(result string) {
	paymentConfirmed.WithLabelValues(result).Inc()
}

func IncReviewCreated() {
	reviewCreated.Inc()
}

func IncIdentityResolved(resolver string) {
	identityResolved.WithLabelValues(resolver).Inc()
}

// ObserveHTTP records one finished request
func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}
