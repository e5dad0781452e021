// Package metrics holds the Prometheus collectors for Chef Remy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	voiceCommands   *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	timersCompleted prometheus.Counter
	activeSessions  prometheus.Gauge
}

// New creates a Collector with Go runtime and process collectors attached.
func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		voiceCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chefremy_voice_commands_total",
				Help: "Voice commands handled, by resolved intent and input source",
			},
			[]string{"intent", "source"},
		),
		externalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chefremy_external_errors_total",
				Help: "Failed calls to external services",
			},
			[]string{"service"},
		),
		timersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chefremy_timers_completed_total",
			Help: "Cooking timers that ran to zero",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chefremy_active_sessions",
			Help: "Cooking sessions currently open",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.voiceCommands,
		c.externalErrors,
		c.timersCompleted,
		c.activeSessions,
	)
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) VoiceCommand(intent, source string) {
	if c == nil {
		return
	}
	c.voiceCommands.WithLabelValues(intent, source).Inc()
}

func (c *Collector) ExternalError(service string) {
	if c == nil {
		return
	}
	c.externalErrors.WithLabelValues(service).Inc()
}

func (c *Collector) TimerCompleted() {
	if c == nil {
		return
	}
	c.timersCompleted.Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.activeSessions.Set(float64(n))
}
