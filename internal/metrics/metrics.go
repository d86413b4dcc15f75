// Package metrics defines Prometheus metrics for the pai relay service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all registered Prometheus collectors.
type Metrics struct {
	EventsReceivedTotal  *prometheus.CounterVec
	EventsRejectedTotal  prometheus.Counter
	ArchiveWriteDuration prometheus.Histogram
	ArchiveErrorsTotal   prometheus.Counter
	WebsocketClients     prometheus.Gauge
	SynthesisRunsTotal   *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// RegisterWith registers a pre-built Metrics instance with the given registry.
func RegisterWith(reg prometheus.Registerer, m *Metrics) error {
	collectors := []prometheus.Collector{
		m.EventsReceivedTotal,
		m.EventsRejectedTotal,
		m.ArchiveWriteDuration,
		m.ArchiveErrorsTotal,
		m.WebsocketClients,
		m.SynthesisRunsTotal,
		m.HTTPRequestDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// New creates unregistered metric instances.
func New() *Metrics {
	return &Metrics{
		EventsReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pai_relay_events_received_total",
				Help: "Total number of hook events accepted by the relay, by hook event type (unrecognized types count as other).",
			},
			[]string{"hook_event_type"},
		),
		EventsRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pai_relay_events_rejected_total",
			Help: "Total number of POST /events bodies rejected as invalid JSON.",
		}),
		ArchiveWriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pai_relay_archive_write_seconds",
			Help:    "Duration of event archive inserts in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ArchiveErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pai_relay_archive_errors_total",
			Help: "Total number of failed event archive inserts.",
		}),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pai_relay_websocket_clients",
			Help: "Number of connected live-stream websocket clients.",
		}),
		SynthesisRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pai_synthesis_runs_total",
				Help: "Total number of scheduled weekly synthesis runs by result.",
			},
			[]string{"result"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pai_relay_http_request_seconds",
				Help:    "Duration of relay HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
	}
}
