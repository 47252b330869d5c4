package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfkiosk",
			Name:      "slot_loads_total",
			Help:      "Slot query results by outcome.",
		},
		[]string{"outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfkiosk",
			Name:      "bookings_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfkiosk",
			Name:      "http_requests_total",
			Help:      "Kiosk HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "turfkiosk",
			Name:      "slot_load_duration_seconds",
			Help:      "Upstream slot query latency.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotLoads, bookings, httpRequests, slotLoadDuration)
	})
}

// IncSlotLoad counts a slot query by outcome ("ok", "error", "noop").
func IncSlotLoad(outcome string) {
	slotLoads.WithLabelValues(outcome).Inc()
}

// IncBooking counts a booking submission by outcome.
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveSlotLoad records one upstream query duration in seconds.
func ObserveSlotLoad(seconds float64) {
	slotLoadDuration.Observe(seconds)
}
