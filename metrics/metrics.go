package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "bookings_created_total",
			Help:      "Successfully created bookings.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected due to a time conflict.",
		},
	)

	bookingsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "bookings_swept_total",
			Help:      "Bookings auto-completed by the expiry sweep.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingConflicts, bookingsSwept)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func AddBookingsSwept(n int) {
	bookingsSwept.Add(float64(n))
}
