// Package sampler implements the tick-based sampling engine. A Monitor
// reads every registered metric source on a fixed interval and maintains a
// bounded history buffer per source. It does NOT render anything — it
// invokes a callback when new samples have landed, and whatever embeds it
// (panel widget, HTTP API, exporter) pulls the histories on its own terms.
package sampler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gpumon-app/agent/internal/history"
	"github.com/gpumon-app/agent/internal/models"
)

// Source is one periodically sampled metric. A Read returns a percentage
// in [0,100]; values outside the range are clamped by the Monitor.
type Source interface {
	// Name returns the unique series identifier for this source.
	Name() string

	// Read takes one reading. The context carries the per-tick timeout.
	Read(ctx context.Context) (float64, error)

	// IsAvailable reports whether the source can be sampled on this host.
	// Unavailable sources are not registered.
	IsAvailable() bool
}

// Monitor samples all registered sources on a fixed interval into per-source
// history buffers.
type Monitor struct {
	interval    time.Duration
	readTimeout time.Duration
	historyLen  int
	logger      *zap.Logger

	mu       sync.Mutex
	sources  []Source
	buffers  map[string]*history.Buffer
	cancel   context.CancelFunc
	done     chan struct{}
	onUpdate func()
}

// New creates a Monitor. historyLen is the per-source buffer capacity;
// readTimeout bounds each source read within a tick.
func New(interval, readTimeout time.Duration, historyLen int, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval:    interval,
		readTimeout: readTimeout,
		historyLen:  historyLen,
		logger:      logger,
		buffers:     make(map[string]*history.Buffer),
	}
}

// Register adds a source if it is available on this host and its name is
// not already taken. Unavailable sources are logged and skipped.
func (m *Monitor) Register(src Source) error {
	if !src.IsAvailable() {
		m.logger.Warn("Source not available, skipping", zap.String("series", src.Name()))
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.buffers[src.Name()]; exists {
		return fmt.Errorf("sampler: duplicate series %q", src.Name())
	}
	m.sources = append(m.sources, src)
	m.buffers[src.Name()] = history.New(m.historyLen)
	m.logger.Info("Registered source", zap.String("series", src.Name()))
	return nil
}

// OnUpdate sets the callback invoked after each tick that pushed at least
// one new sample. Used by embedders to request a chart redraw. Must be set
// before Start.
func (m *Monitor) OnUpdate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Start resets every history buffer and begins the tick loop: one
// immediate tick, then one per interval. Calling Start while the monitor
// is already running has no effect.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	for _, buf := range m.buffers {
		buf.Reset()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.logger.Info("Sampling started",
		zap.Duration("interval", m.interval),
		zap.Int("history", m.historyLen))

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.tick(ctx)
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit. Calling Stop on a
// stopped monitor has no effect.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("Sampling stopped")
}

// Running reports whether the tick loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// tick reads every source once. A failed read is logged and dropped — the
// buffer keeps its previous contents and the next tick retries. There is
// deliberately no backoff: a dropped chart refresh costs nothing.
func (m *Monitor) tick(ctx context.Context) {
	m.mu.Lock()
	sources := make([]Source, len(m.sources))
	copy(sources, m.sources)
	onUpdate := m.onUpdate
	m.mu.Unlock()

	pushed := false
	for _, src := range sources {
		readCtx, cancel := context.WithTimeout(ctx, m.readTimeout)
		value, err := src.Read(readCtx)
		cancel()
		if err != nil {
			m.logger.Warn("Sample read failed",
				zap.String("series", src.Name()),
				zap.Error(err))
			continue
		}
		if math.IsNaN(value) {
			m.logger.Warn("Sample read returned NaN, dropping",
				zap.String("series", src.Name()))
			continue
		}
		value = clamp(value, 0, 100)

		m.mu.Lock()
		m.buffers[src.Name()].Push(value)
		m.mu.Unlock()
		pushed = true
	}

	if pushed && onUpdate != nil {
		onUpdate()
	}
}

// History returns a copy of the named series' buffered samples, oldest
// first. Returns nil for an unknown series.
func (m *Monitor) History(series string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.buffers[series]
	if !ok {
		return nil
	}
	return buf.Values()
}

// Latest returns the most recent sample of the named series.
func (m *Monitor) Latest(series string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.buffers[series]
	if !ok {
		return 0, false
	}
	return buf.Last()
}

// HistoryLen returns the configured buffer capacity.
func (m *Monitor) HistoryLen() int { return m.historyLen }

// Series returns the registered series names in registration order.
func (m *Monitor) Series() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.sources))
	for i, src := range m.sources {
		names[i] = src.Name()
	}
	return names
}

// Snapshot returns the current value and history of every series, in
// registration order. Series with no samples yet report a zero value and
// an empty display string.
func (m *Monitor) Snapshot() []models.SeriesSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.SeriesSnapshot, 0, len(m.sources))
	for _, src := range m.sources {
		buf := m.buffers[src.Name()]
		snap := models.SeriesSnapshot{
			Series:  src.Name(),
			History: buf.Values(),
		}
		if v, ok := buf.Last(); ok {
			snap.Value = v
			snap.Display = fmt.Sprintf("%.0f%%", v)
		}
		out = append(out, snap)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
