package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eduviz_chat"

// Metrics holds the service's prometheus collectors. It also observes the live
// channel hub.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	messages        *prometheus.CounterVec
	events          *prometheus.CounterVec
	dropped         prometheus.Counter
	clients         prometheus.Gauge
	presence        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_appended_total",
			Help:      "Messages persisted, by sender role.",
		}, []string{"sender"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Live channel broadcasts, by event name.",
		}, []string{"event"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_dropped_total",
			Help:      "Live channel clients dropped because their send queue was full.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Open live channel connections.",
		}),
		presence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "presence_entries",
			Help:      "Connections that have joined with an identity.",
		}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.messages, m.events, m.dropped, m.clients, m.presence)
	return m
}

// MessageAppended counts a persisted message
func (m *Metrics) MessageAppended(sender string) {
	m.messages.WithLabelValues(sender).Inc()
}

// EventPublished counts one live channel broadcast by event name
func (m *Metrics) EventPublished(event string) {
	m.events.WithLabelValues(event).Inc()
}

// DeliveryDropped counts a client disconnected because its send queue was full
func (m *Metrics) DeliveryDropped() {
	m.dropped.Inc()
}

// ClientsConnected records the number of open live channel connections
func (m *Metrics) ClientsConnected(n int) {
	m.clients.Set(float64(n))
}

// PresenceSize records how many connections have joined the presence registry
func (m *Metrics) PresenceSize(n int) {
	m.presence.Set(float64(n))
}
