// Package metrics exposes pool activity as Prometheus metrics.
//
// A Collector implements freelist.Observer, so wiring it into a pool
// is one option:
//
//	pool, err := freelist.New[Entity](1024,
//	    freelist.WithName[Entity]("entities"),
//	    freelist.WithObserver[Entity](metrics.NewCollector()),
//	)
//
// All metrics carry a "pool" label. Collection is purely
// observational: it never changes the pool's acquire/release ordering
// or outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AcquiresTotal counts successful slot acquisitions per pool
	AcquiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelist_acquires_total",
			Help: "Total number of successful slot acquisitions",
		},
		[]string{"pool"},
	)

	// ReleasesTotal counts successful slot releases per pool
	ReleasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelist_releases_total",
			Help: "Total number of successful slot releases",
		},
		[]string{"pool"},
	)

	// ExhaustedTotal counts acquisitions rejected on an empty free stack
	ExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelist_exhausted_total",
			Help: "Total number of acquisitions rejected because the pool was exhausted",
		},
		[]string{"pool"},
	)

	// ConstructFailuresTotal counts in-place constructor errors
	ConstructFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelist_construct_failures_total",
			Help: "Total number of failed in-place constructions",
		},
		[]string{"pool"},
	)

	// FreeSlots tracks the current free-stack depth per pool
	FreeSlots = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "freelist_free_slots",
			Help: "Number of slots currently on the free stack",
		},
		[]string{"pool"},
	)

	// CapacitySlots reports the fixed capacity per pool
	CapacitySlots = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "freelist_capacity_slots",
			Help: "Fixed slot capacity of the pool",
		},
		[]string{"pool"},
	)
)

// Collector forwards pool events to the package-level Prometheus
// metrics. It is safe to share one Collector between pools; the pool
// name label keeps their series apart. Callbacks run under the pool
// lock in the thread-safe variant, so they stay allocation-free.
type Collector struct{}

// NewCollector creates a metrics-forwarding observer
func NewCollector() *Collector {
	return &Collector{}
}

// PoolCreated records the pool's capacity and primes its gauges
func (c *Collector) PoolCreated(pool string, capacity int) {
	CapacitySlots.WithLabelValues(pool).Set(float64(capacity))
	FreeSlots.WithLabelValues(pool).Set(float64(capacity))
}

// Acquired counts the acquisition and updates the free gauge
func (c *Collector) Acquired(pool string, slot, free int) {
	AcquiresTotal.WithLabelValues(pool).Inc()
	FreeSlots.WithLabelValues(pool).Set(float64(free))
}

// Released counts the release and updates the free gauge
func (c *Collector) Released(pool string, slot, free int) {
	ReleasesTotal.WithLabelValues(pool).Inc()
	FreeSlots.WithLabelValues(pool).Set(float64(free))
}

// Exhausted counts a rejected acquisition
func (c *Collector) Exhausted(pool string) {
	ExhaustedTotal.WithLabelValues(pool).Inc()
}

// ConstructFailed counts a failed in-place construction
func (c *Collector) ConstructFailed(pool string) {
	ConstructFailuresTotal.WithLabelValues(pool).Inc()
}
