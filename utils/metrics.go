package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the booking workflow.
type Metrics struct {
	ShipmentsCreated prometheus.Counter
	QuotesSubmitted  prometheus.Counter
	QuotesAccepted   prometheus.Counter
	ShipmentsClaimed prometheus.Counter
	Conflicts        *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// NewMetrics registers the instruments on the given registerer. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ShipmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "horseshipt_shipments_created_total",
			Help: "Shipments posted by customers.",
		}),
		QuotesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "horseshipt_quotes_submitted_total",
			Help: "Quotes submitted by carriers.",
		}),
		QuotesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "horseshipt_quotes_accepted_total",
			Help: "Quotes accepted by customers.",
		}),
		ShipmentsClaimed: factory.NewCounter(prometheus.CounterOpts{
			Name: "horseshipt_shipments_claimed_total",
			Help: "Shipments claimed directly from the marketplace.",
		}),
		Conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horseshipt_booking_conflicts_total",
			Help: "Booking operations rejected by a uniqueness or double-booking guard.",
		}, []string{"operation"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "horseshipt_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
