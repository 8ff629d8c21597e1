// Package prom exports cache.Metrics to Prometheus.
package prom

import (
	"strconv"

	"github.com/IvanBrykalov/campaigncache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics with per-shard Prometheus series.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    *prometheus.CounterVec
	writes  *prometheus.CounterVec
	evicts  *prometheus.CounterVec
	entries *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}, []string{"shard"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "writes_total",
			Help:        "Cache writes (one per Put, usually following a miss)",
			ConstLabels: constLabels,
		}, []string{"shard"}),
		evicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Entries removed, by reason",
			ConstLabels: constLabels,
		}, []string{"shard", "reason"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}, []string{"shard"}),
	}
	reg.MustRegister(a.hits, a.writes, a.evicts, a.entries)
	return a
}

// Hit increments the hit counter of shard.
func (a *Adapter) Hit(shard int) { a.hits.WithLabelValues(label(shard)).Inc() }

// Write increments the write counter of shard.
func (a *Adapter) Write(shard int) { a.writes.WithLabelValues(label(shard)).Inc() }

// Evict adds n removals with a reason label.
func (a *Adapter) Evict(shard int, r cache.EvictReason, n int) {
	a.evicts.WithLabelValues(label(shard), r.String()).Add(float64(n))
}

// Size sets the resident entry gauge of shard.
func (a *Adapter) Size(shard int, entries int) {
	a.entries.WithLabelValues(label(shard)).Set(float64(entries))
}

func label(shard int) string { return strconv.Itoa(shard) }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
