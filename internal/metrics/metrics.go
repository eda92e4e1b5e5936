// Package metrics exposes publish outcomes to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Noop discards everything.
type Noop struct{}

func (Noop) ObservePublish(string, float64)  {}
func (Noop) IncCompensation(string, string) {}

// Prom records publish metrics in its own registry.
type Prom struct {
	registry      *prometheus.Registry
	publishes     *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	compensations *prometheus.CounterVec
}

// NewProm builds the collectors under namespace and registers them, together with
// the Go and process collectors, on a fresh registry.
func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Publish attempts by outcome (published or the failing stage)",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Publish latency including compensation",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensation_total",
			Help:      "Compensating deletes by namespace and outcome (deleted or failed)",
		}, []string{"namespace", "outcome"}),
	}
	p.registry.MustRegister(
		p.publishes,
		p.duration,
		p.compensations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObservePublish counts one publish call and its latency.
func (p *Prom) ObservePublish(outcome string, durationSeconds float64) {
	p.publishes.WithLabelValues(outcome).Inc()
	p.duration.WithLabelValues(outcome).Observe(durationSeconds)
}

// IncCompensation counts one compensating delete.
func (p *Prom) IncCompensation(namespace, outcome string) {
	p.compensations.WithLabelValues(namespace, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
