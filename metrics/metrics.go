// Package metrics registers the gauges and counters the sealer emits on
// every admission-control transition, in the same "name it once, update
// it inline" style as go-ethereum's own metrics package
// (metrics.NewRegisteredCounter / NewRegisteredGauge), backed here by a
// real Prometheus registry instead of an in-process sample store.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// sanitize maps a go-ethereum-style slash/dot metric path
// ("sealer/maxBlockCanSeal") onto a valid Prometheus name
// ("sealer_maxBlockCanSeal"), matching the sanitization go-ethereum's
// own Prometheus exporter applies before registration.
var sanitize = strings.NewReplacer("/", "_", ".", "_")

// Registry is the subset of Prometheus's CollectorRegistry this package
// needs; production code uses DefaultRegistry, tests construct their own
// so assertions don't leak across test cases.
type Registry struct {
	reg *prometheus.Registry
}

// NewRegistry returns an empty, private registry.
func NewRegistry() *Registry {
	return &Registry{reg: prometheus.NewRegistry()}
}

// DefaultRegistry is the process-wide registry package-level
// NewRegisteredGauge/NewRegisteredCounter register into unless a
// Registry is passed explicitly.
var DefaultRegistry = NewRegistry()

// Gatherer exposes the underlying Prometheus gatherer, e.g. for wiring
// into an HTTP /metrics handler. The core itself never serves HTTP;
// that's left to the host process.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Gauge is a single named, mutable metric value.
type Gauge struct {
	g prometheus.Gauge
}

// NewRegisteredGauge creates and registers a gauge named name on reg
// (DefaultRegistry if reg is nil). Matches go-ethereum's
// NewRegisteredGauge(name, registry) call shape.
func NewRegisteredGauge(name, help string, reg *Registry) *Gauge {
	if reg == nil {
		reg = DefaultRegistry
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: sanitize.Replace(name), Help: help})
	reg.reg.MustRegister(g)
	return &Gauge{g: g}
}

func (g *Gauge) Update(v float64) { g.g.Set(v) }

// Counter is a monotonically increasing named metric.
type Counter struct {
	c prometheus.Counter
}

// NewRegisteredCounter creates and registers a counter named name.
func NewRegisteredCounter(name, help string, reg *Registry) *Counter {
	if reg == nil {
		reg = DefaultRegistry
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: sanitize.Replace(name), Help: help})
	reg.reg.MustRegister(c)
	return &Counter{c: c}
}

func (c *Counter) Inc() { c.c.Inc() }
