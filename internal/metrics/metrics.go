package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stayfinder",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stayfinder",
			Name:      "bookings_created_total",
			Help:      "Bookings admitted by the capacity check.",
		},
	)

	bookingsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stayfinder",
			Name:      "bookings_expired_total",
			Help:      "Unpaid bookings expired by the sweep.",
		},
	)

	bookingsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stayfinder",
			Name:      "bookings_completed_total",
			Help:      "Confirmed bookings completed by the sweep.",
		},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stayfinder",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of booking sweep runs.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingsExpired,
			bookingsCompleted,
			sweepDuration,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingsCreated counts one admitted booking.
func IncBookingsCreated() {
	bookingsCreated.Inc()
}

// AddBookingsExpired counts bookings expired in one sweep pass.
func AddBookingsExpired(n int64) {
	bookingsExpired.Add(float64(n))
}

// IncBookingsCompleted counts one completed booking.
func IncBookingsCompleted() {
	bookingsCompleted.Inc()
}

// ObserveSweepDuration records the duration of a sweep run in seconds.
func ObserveSweepDuration(seconds float64) {
	sweepDuration.Observe(seconds)
}
