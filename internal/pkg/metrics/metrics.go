// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	SSESubscribers  *prometheus.GaugeVec
	ChatPublished   *prometheus.CounterVec
	CleanupFailures prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bmvt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bmvt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SSESubscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bmvt_chat_stream_subscribers",
				Help: "Open chat event streams per channel",
			},
			[]string{"channel"},
		),
		ChatPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bmvt_chat_events_published_total",
				Help: "Chat events published to the fan-out channel",
			},
			[]string{"channel", "type"},
		),
		CleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmvt_file_cleanup_failures_total",
			Help: "Uploaded files that could not be removed",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.SSESubscribers,
		m.ChatPublished,
		m.CleanupFailures,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
