// Package metrics exposes simulation counters on a private prometheus
// registry. A nil Collector is safe to call, so the core never needs to
// know whether observability is wired up.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers simulation metrics.
type Collector struct {
	registry        *prometheus.Registry
	yearsAdvanced   prometheus.Counter
	operations      *prometheus.CounterVec
	operationErrors *prometheus.CounterVec
	netWorth        prometheus.Gauge
	eventsEmitted   prometheus.Counter
}

// NewCollector builds a collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		yearsAdvanced: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "finsim_years_advanced_total",
			Help: "Simulated years processed",
		}),
		operations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "finsim_operations_total",
			Help: "Financial operations by name",
		}, []string{"op"}),
		operationErrors: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "finsim_operation_errors_total",
			Help: "Failed financial operations by name",
		}, []string{"op"}),
		netWorth: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "finsim_net_worth_dollars",
			Help: "Net worth after the latest tick",
		}),
		eventsEmitted: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "finsim_events_emitted_total",
			Help: "Financial events returned to the game loop",
		}),
	}
}

// YearAdvanced records one completed tick.
func (c *Collector) YearAdvanced() {
	if c == nil {
		return
	}
	c.yearsAdvanced.Inc()
}

// Operation records one attempted operation and, if err is non-nil, a
// failure.
func (c *Collector) Operation(name string, err error) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(name).Inc()
	if err != nil {
		c.operationErrors.WithLabelValues(name).Inc()
	}
}

// SetNetWorth updates the net-worth gauge.
func (c *Collector) SetNetWorth(v float64) {
	if c == nil {
		return
	}
	c.netWorth.Set(v)
}

// EventsEmitted adds to the event counter.
func (c *Collector) EventsEmitted(n int) {
	if c == nil {
		return
	}
	c.eventsEmitted.Add(float64(n))
}

// Handler serves the registry over HTTP for scrape-based inspection.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
