// Package telemetry collects tick and gameplay counters and logs a periodic
// summary. Cheap enough to leave enabled in production.
package telemetry

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxTickSamples = 240

// Manager aggregates per-session statistics: tick durations, placements by
// verdict, and terminal transitions.
type Manager struct {
	mu sync.Mutex

	enabled       bool
	log           *zap.Logger
	printInterval time.Duration
	lastPrint     time.Time

	tickSamples []time.Duration
	tickCount   uint64
	maxTick     time.Duration

	placements map[string]int
	gameOvers  int
	resets     int
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		enabled:       true,
		log:           log,
		printInterval: 10 * time.Second,
		lastPrint:     time.Now(),
		placements:    make(map[string]int),
	}
}

// SetEnabled toggles collection.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// ObserveTick records one tick duration, keeping a bounded sample window.
func (m *Manager) ObserveTick(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.tickCount++
	if d > m.maxTick {
		m.maxTick = d
	}
	m.tickSamples = append(m.tickSamples, d)
	if len(m.tickSamples) > maxTickSamples {
		m.tickSamples = m.tickSamples[1:]
	}
}

// CountPlacement records a committed block under its stability verdict.
func (m *Manager) CountPlacement(verdict string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.placements[verdict]++
}

// CountGameOver records a terminal transition.
func (m *Manager) CountGameOver() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.gameOvers++
}

// CountReset records a session rebuild.
func (m *Manager) CountReset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.resets++
}

// MaybeSummarize logs the aggregate once per print interval and resets the
// interval counters.
func (m *Manager) MaybeSummarize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || time.Since(m.lastPrint) < m.printInterval {
		return
	}

	var total time.Duration
	for _, d := range m.tickSamples {
		total += d
	}
	var avg time.Duration
	if len(m.tickSamples) > 0 {
		avg = total / time.Duration(len(m.tickSamples))
	}

	fields := []zap.Field{
		zap.Uint64("ticks", m.tickCount),
		zap.Duration("avg_tick", avg),
		zap.Duration("max_tick", m.maxTick),
		zap.Int("game_overs", m.gameOvers),
		zap.Int("resets", m.resets),
	}
	for verdict, count := range m.placements {
		fields = append(fields, zap.Int("placed_"+verdict, count))
	}
	m.log.Info("telemetry summary", fields...)

	m.placements = make(map[string]int)
	m.gameOvers = 0
	m.resets = 0
	m.maxTick = 0
	m.lastPrint = time.Now()
}
