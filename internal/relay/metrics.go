package relay

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"textsummarizer/internal/domain"
)

const outcomeSuccess = "success"

// Metrics exports relay counters on a dedicated registry. A nil *Metrics
// records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	gatewayDuration prometheus.Histogram
	inputCharacters prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Summarize requests by outcome.",
		}, []string{"outcome"}),
		gatewayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_gateway_duration_seconds",
			Help:    "Latency of gateway calls.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		inputCharacters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_input_characters",
			Help:    "Length of accepted inputs in characters.",
			Buckets: []float64{50, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}

	m.registry.MustRegister(m.requests, m.gatewayDuration, m.inputCharacters)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeOutcome(kind domain.ErrorKind) {
	if m == nil {
		return
	}

	outcome := string(kind)
	if outcome == "" {
		outcome = outcomeSuccess
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeGateway(d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.Observe(d.Seconds())
}

func (m *Metrics) observeInput(length int) {
	if m == nil {
		return
	}
	m.inputCharacters.Observe(float64(length))
}
