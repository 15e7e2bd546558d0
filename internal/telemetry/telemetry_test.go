package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSummaryLogsAndResets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewManager(zap.New(core))
	m.printInterval = 0
	m.lastPrint = time.Now().Add(-time.Second)

	m.ObserveTick(2 * time.Millisecond)
	m.ObserveTick(4 * time.Millisecond)
	m.CountPlacement("green")
	m.CountPlacement("green")
	m.CountPlacement("red")
	m.CountGameOver()
	m.CountReset()

	m.MaybeSummarize()

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, uint64(2), fields["ticks"])
	assert.Equal(t, int64(2), fields["placed_green"])
	assert.Equal(t, int64(1), fields["placed_red"])
	assert.Equal(t, int64(1), fields["game_overs"])
	assert.Equal(t, int64(1), fields["resets"])

	// Interval counters reset; cumulative tick count does not.
	m.lastPrint = time.Now().Add(-time.Second)
	m.MaybeSummarize()
	fields = logs.All()[1].ContextMap()
	assert.Equal(t, uint64(2), fields["ticks"])
	assert.Equal(t, int64(0), fields["game_overs"])
}

func TestDisabledCollectsNothing(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewManager(zap.New(core))
	m.SetEnabled(false)
	m.lastPrint = time.Now().Add(-time.Minute)

	m.ObserveTick(time.Millisecond)
	m.CountPlacement("green")
	m.MaybeSummarize()

	assert.Zero(t, logs.Len())
	assert.Zero(t, m.tickCount)
}
