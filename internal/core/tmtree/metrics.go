package tmtree

import (
	"fmt"
	"sync/atomic"
	"time"
)

// NodeOverheadBytes is the fixed per-node cost used by the memory estimate.
const NodeOverheadBytes = 96

// MetricsSnapshot is a point-in-time copy of the collected metrics.
type MetricsSnapshot struct {
	LastBuildDuration  time.Duration
	LastVerifyDuration time.Duration
	LastUpdateDuration time.Duration
	VerifyCount        uint64
	UpdateCount        uint64
	MemoryEstimate     uint64 // bytes
}

func (m MetricsSnapshot) String() string {
	return fmt.Sprintf("Build: %s, Verify: %s, Update: %s, Verifications: %d, Updates: %d, Memory: %d",
		m.LastBuildDuration, m.LastVerifyDuration, m.LastUpdateDuration, m.VerifyCount, m.UpdateCount, m.MemoryEstimate)
}

// Metrics records timing and size counters. Every recorder is a no-op when
// the collector is disabled, so a disabled collector always reports zeros.
// Counters are atomic so that concurrent read operations may record verifications.
type Metrics struct {
	enabled bool

	buildNanos  atomic.Int64
	verifyNanos atomic.Int64
	updateNanos atomic.Int64
	verifyCount atomic.Uint64
	updateCount atomic.Uint64
	memory      atomic.Uint64
}

func newMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Enabled reports whether the collector records anything.
func (m *Metrics) Enabled() bool {
	return m.enabled
}

func (m *Metrics) recordBuild(d time.Duration, nodes int, leafBytes int) {
	if !m.enabled {
		return
	}
	m.buildNanos.Store(int64(d))
	m.recordMemory(nodes, leafBytes)
}

func (m *Metrics) recordMemory(nodes int, leafBytes int) {
	if !m.enabled {
		return
	}
	m.memory.Store(uint64(nodes)*NodeOverheadBytes + uint64(leafBytes))
}

func (m *Metrics) recordVerify(d time.Duration) {
	if !m.enabled {
		return
	}
	m.verifyNanos.Store(int64(d))
	m.verifyCount.Add(1)
}

func (m *Metrics) recordUpdate(d time.Duration, leaves int) {
	if !m.enabled {
		return
	}
	m.updateNanos.Store(int64(d))
	m.updateCount.Add(uint64(leaves))
}

func (m *Metrics) adjustMemory(delta int) {
	if !m.enabled || delta == 0 {
		return
	}
	for {
		cur := m.memory.Load()
		next := int64(cur) + int64(delta)
		if next < 0 {
			next = 0
		}
		if m.memory.CompareAndSwap(cur, uint64(next)) {
			return
		}
	}
}

// Snapshot returns the current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if !m.enabled {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		LastBuildDuration:  time.Duration(m.buildNanos.Load()),
		LastVerifyDuration: time.Duration(m.verifyNanos.Load()),
		LastUpdateDuration: time.Duration(m.updateNanos.Load()),
		VerifyCount:        m.verifyCount.Load(),
		UpdateCount:        m.updateCount.Load(),
		MemoryEstimate:     m.memory.Load(),
	}
}
