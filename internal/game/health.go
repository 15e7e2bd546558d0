package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"towerstack/internal/config"
	"towerstack/internal/world"
)

var worldUp = mgl64.Vec3{0, 1, 0}

// TowerState is the per-tick health verdict over every placed block. Derived,
// never persisted; freezes once the game leaves the playing state.
type TowerState struct {
	TallestPoint   float64
	WarningCount   int
	AnyWarning     bool
	TippedOver     bool
	FallenOffWorld bool
}

// GameOver reports whether this state carries a terminal condition.
func (s TowerState) GameOver() bool {
	return s.TippedOver || s.FallenOffWorld
}

// Monitor classifies the tower as stable, warning, fallen or tipped-over from
// one pose snapshot per tick.
type Monitor struct {
	cfg config.HealthConfig
}

func NewMonitor(cfg config.HealthConfig) *Monitor {
	return &Monitor{cfg: cfg}
}

// Scan walks all placed blocks once. Terminal conditions are evaluated only
// while active; the first block past the tip threshold wins the tick and
// later blocks are not re-checked for it, so one frame never double-counts a
// tip-over.
func (m *Monitor) Scan(snapshot world.Snapshot, active bool) TowerState {
	var state TowerState
	minBlocksForTip := len(snapshot.Blocks) >= 2

	for i := range snapshot.Blocks {
		b := &snapshot.Blocks[i]

		top := b.Position.Y() + b.Def.HalfHeight()
		if top > state.TallestPoint {
			state.TallestPoint = top
		}

		if active && b.Position.Y() < m.cfg.FallY {
			state.FallenOffWorld = true
		}

		alignment := upAlignment(b.Rotation)
		if alignment < m.cfg.WarningCos {
			state.WarningCount++
			state.AnyWarning = true
		}
		if active && minBlocksForTip && !state.TippedOver && alignment < m.cfg.TipCos {
			state.TippedOver = true
		}
	}

	state.TallestPoint = math.Max(0, state.TallestPoint)
	return state
}

// upAlignment rotates the local up axis by the block's orientation and dots
// it with world up: 1 is perfectly upright, 0 is lying on its side.
func upAlignment(rotation mgl64.Quat) float64 {
	return rotation.Rotate(worldUp).Dot(worldUp)
}
