// Package prometheus bridges the engine's counters into a Prometheus
// registry without coupling the engine itself to a metrics backend.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	cask "github.com/caskauth/cask"
)

// Source yields counter snapshots. *cask.Engine satisfies it.
type Source interface {
	MetricsSnapshot() cask.MetricsSnapshot
	AuditDropped() uint64
}

// Collector exposes every engine counter as a Prometheus counter named
// cask_<counter>_total, plus cask_audit_dropped_total for dispatcher
// backpressure. Collect reads a fresh snapshot on every scrape.
type Collector struct {
	source      Source
	descs       map[cask.MetricID]*prometheus.Desc
	droppedDesc *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps source for registration with a Prometheus registry.
func NewCollector(source Source) *Collector {
	c := &Collector{
		source: source,
		descs:  make(map[cask.MetricID]*prometheus.Desc),
		droppedDesc: prometheus.NewDesc(
			"cask_audit_dropped_total",
			"Audit events shed due to dispatcher backpressure.",
			nil, nil,
		),
	}

	for id := range source.MetricsSnapshot().Counters {
		name := cask.MetricName(id)
		if name == "" {
			continue
		}
		c.descs[id] = prometheus.NewDesc(
			prometheus.BuildFQName("cask", "", name+"_total"),
			"Engine counter "+name+".",
			nil, nil,
		)
	}

	return c
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
	ch <- c.droppedDesc
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.MetricsSnapshot()
	for id, desc := range c.descs {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(snap.Counters[id]))
	}
	ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(c.source.AuditDropped()))
}
