// Package metrics exposes per-node Prometheus instruments.
//
// Each node owns its own registry so several nodes can run in one process
// (as they do in tests) without colliding on metric names.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goonion"

// Outcome labels.
const (
	OutcomeForwarded = "forwarded"
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeSent      = "sent"
	OutcomeCreated   = "created"
	OutcomeExisting  = "existing"
	OutcomeRejected  = "rejected"
)

// Metrics groups the instruments of one node.
type Metrics struct {
	registry *prometheus.Registry

	layersProcessed *prometheus.CounterVec
	messagesSent    *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	forwardDuration prometheus.Histogram
	inboxMessages   prometheus.Counter
	rateLimited     prometheus.Counter
}

// New creates the instruments and registers them, with the Go runtime
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		layersProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layers_processed_total",
				Help:      "Number of onion layers processed by this relay",
			},
			[]string{"kind", "outcome"},
		),
		messagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_sent_total",
				Help:      "Number of send attempts by this node",
			},
			[]string{"outcome"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Number of node registrations handled by the directory",
			},
			[]string{"outcome"},
		),
		forwardDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "forward_duration_seconds",
				Help:      "Time spent on outbound forward and deliver calls",
				Buckets:   prometheus.DefBuckets,
			},
		),
		inboxMessages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inbox_messages_total",
				Help:      "Number of messages delivered to this node's inbox",
			},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Number of forward requests rejected by the rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		m.layersProcessed,
		m.messagesSent,
		m.registrations,
		m.forwardDuration,
		m.inboxMessages,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// LayerProcessed counts one relay decision. A nil receiver is a no-op so
// components can run without metrics.
func (m *Metrics) LayerProcessed(kind, outcome string) {
	if m == nil {
		return
	}
	m.layersProcessed.WithLabelValues(kind, outcome).Inc()
}

// MessageSent counts one send attempt.
func (m *Metrics) MessageSent(outcome string) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(outcome).Inc()
}

// Registration counts one directory registration.
func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// ObserveForward records how long an outbound call took.
func (m *Metrics) ObserveForward(started time.Time) {
	if m == nil {
		return
	}
	m.forwardDuration.Observe(time.Since(started).Seconds())
}

// InboxMessage counts one delivery into the local inbox.
func (m *Metrics) InboxMessage() {
	if m == nil {
		return
	}
	m.inboxMessages.Inc()
}

// RateLimited counts one rejected forward request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
