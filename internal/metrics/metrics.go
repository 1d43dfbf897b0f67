// Package metrics holds the Prometheus counters for sizing and deletion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "foldersize"

// Delete outcomes used as the "result" label.
const (
	DeleteTrashed = "trashed"
	DeleteRemoved = "deleted"
	DeleteRefused = "refused"
	DeleteFailed  = "failed"
)

// Metrics groups the counters updated by the scanner.
type Metrics struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter
	Walks          prometheus.Counter
	Deletes        *prometheus.CounterVec
}

// New creates the counters and registers them on reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Directory sizes served from the signature cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Directory sizes that required a full walk.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries evicted by LRU pressure.",
		}),
		Walks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "walks_total",
			Help:      "Completed recursive directory walks.",
		}),
		Deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletes_total",
			Help:      "Delete requests by outcome.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.CacheHits, m.CacheMisses, m.CacheEvictions, m.Walks, m.Deletes)
	}

	return m
}
