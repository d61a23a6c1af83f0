package base

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeSuccess        = "success"
	OutcomeConnectorError = "connector_error"
	OutcomeTransportError = "transport_error"
)

// Metrics holds the outbound connector request metrics
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the connector metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payconnect_connector_requests_total",
				Help: "Total number of outbound connector requests by outcome",
			},
			[]string{"connector", "flow", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payconnect_connector_request_duration_seconds",
				Help:    "Outbound connector request latency in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"connector", "flow"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.requestDuration)
	}
	return m
}

func (m *Metrics) observe(connector, flow, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(connector, flow, outcome).Inc()
	m.requestDuration.WithLabelValues(connector, flow).Observe(elapsed.Seconds())
}
