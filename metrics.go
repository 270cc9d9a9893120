package cuki

import (
	"sync/atomic"

	"github.com/cukiwss/cuki/internal/ccf"
)

// Metrics holds running counters for an Estimator's lifetime, mirroring the
// put outcomes of spec §4.3 plus aging, sampling, and lookup activity.
type Metrics struct {
	inserted        atomic.Int64
	refreshed       atomic.Int64
	displaced       atomic.Int64
	dropped         atomic.Int64
	aged            atomic.Int64 // slots cleared by the window-driven sweep; opportunistic-aging clears are not counted
	reconciliations atomic.Int64
	hits            atomic.Int64 // SizeOf calls that found the key
	misses          atomic.Int64 // SizeOf calls that did not
	samples         atomic.Int64 // OnSample invocations
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Inserted        int64
	Refreshed       int64
	Displaced       int64
	Dropped         int64
	Aged            int64
	Reconciliations int64
	Hits            int64
	Misses          int64
	Samples         int64
	HitRatio        float64
}

func newMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) recordOutcome(o ccf.PutOutcome) {
	switch o {
	case ccf.Inserted:
		m.inserted.Add(1)
	case ccf.Refreshed:
		m.refreshed.Add(1)
	case ccf.Displaced:
		m.displaced.Add(1)
	case ccf.Dropped:
		m.dropped.Add(1)
	}
}

func (m *Metrics) recordAged(n int64) { m.aged.Add(n) }
func (m *Metrics) recordReconcile()   { m.reconciliations.Add(1) }
func (m *Metrics) recordHit()         { m.hits.Add(1) }
func (m *Metrics) recordMiss()        { m.misses.Add(1) }
func (m *Metrics) recordSample()      { m.samples.Add(1) }

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	hits := m.hits.Load()
	misses := m.misses.Load()
	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	return MetricsSnapshot{
		Inserted:        m.inserted.Load(),
		Refreshed:       m.refreshed.Load(),
		Displaced:       m.displaced.Load(),
		Dropped:         m.dropped.Load(),
		Aged:            m.aged.Load(),
		Reconciliations: m.reconciliations.Load(),
		Hits:            hits,
		Misses:          misses,
		Samples:         m.samples.Load(),
		HitRatio:        hitRatio,
	}
}
