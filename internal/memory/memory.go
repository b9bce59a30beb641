package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-preview/internal/logging"
	"media-preview/internal/metrics"
)

// Watermarks are fractions of the limit.
type Watermarks struct {
	High     float64
	Critical float64
}

// DefaultWatermarks pause at 85% and resume below 70%.
func DefaultWatermarks() Watermarks {
	return Watermarks{High: 0.7, Critical: 0.85}
}

// Monitor samples heap usage against a limit and reports when renders should
// wait.
type Monitor struct {
	limit    int64
	marks    Watermarks
	interval time.Duration
	sample   func() uint64

	mu      sync.RWMutex
	current uint64
	paused  bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMonitor watches the heap against limit, or against the runtime soft
// limit when limit is zero. Without any limit the monitor never pauses.
func NewMonitor(limit int64, marks Watermarks, interval time.Duration) *Monitor {
	if limit == 0 {
		if soft := debug.SetMemoryLimit(-1); soft > 0 && soft < math.MaxInt64 {
			limit = soft
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no limit, preview backpressure disabled")
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Monitor{
		limit:    limit,
		marks:    marks,
		interval: interval,
		sample:   heapAlloc,
		stop:     make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// Start samples in the background until Stop.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) check() {
	alloc := m.sample()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = alloc

	switch {
	case !m.paused && usage >= m.marks.Critical:
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPauses.Inc()
		logging.Warn("Memory critical (%.1f%% of %s), pausing preview rendering", usage*100, FormatBytes(m.limit))
		go runtime.GC()
	case m.paused && usage < m.marks.High:
		m.paused = false
		metrics.MemoryPaused.Set(0)
		logging.Info("Memory recovered (%.1f%% of %s), resuming preview rendering", usage*100, FormatBytes(m.limit))
	}
}

// Paused reports whether new renders should be refused.
func (m *Monitor) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Usage returns the last sampled heap as a fraction of the limit, or 0
// without a limit.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}

func (m *Monitor) Limit() int64 { return m.limit }
