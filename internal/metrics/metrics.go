// Package metrics defines the Prometheus collectors exposed by the store.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics holds counters for store operations and log replay.
//
// Counters work whether or not they are registered; the daemon registers
// them with its registry, embedded uses may ignore them entirely.
type StoreMetrics struct {
	SetsTotal     prometheus.Counter
	GetsTotal     prometheus.Counter
	GetMisses     prometheus.Counter
	ReadErrors    prometheus.Counter
	ReplayRecords prometheus.Counter

	// ReplayTruncations counts replays that stopped before physical end of
	// file (torn tail dropped). A healthy restart after a clean shutdown
	// never increments this.
	ReplayTruncations prometheus.Counter
}

// NewStoreMetrics creates the store's counter set.
func NewStoreMetrics() *StoreMetrics {
	const (
		namespace = "logcask"
		subsystem = "store"
	)

	return &StoreMetrics{
		SetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_total",
			Help:      "Count of successful SET operations",
		}),
		GetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gets_total",
			Help:      "Count of GET operations",
		}),
		GetMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "get_misses_total",
			Help:      "Count of GET operations that found no entry",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "read_errors_total",
			Help:      "Count of indexed reads that failed to resolve (corrupt or unreadable record)",
		}),
		ReplayRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replay_records_total",
			Help:      "Count of complete records folded into the keydir during replay",
		}),
		ReplayTruncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replay_truncations_total",
			Help:      "Count of replays that stopped at a torn or corrupt log tail",
		}),
	}
}

// PrometheusCollectors returns all collectors for registration.
func (m *StoreMetrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SetsTotal,
		m.GetsTotal,
		m.GetMisses,
		m.ReadErrors,
		m.ReplayRecords,
		m.ReplayTruncations,
	}
}
