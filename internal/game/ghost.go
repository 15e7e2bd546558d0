package game

import (
	"math"

	"towerstack/internal/config"
	"towerstack/internal/world"
)

// GhostPlacement is the not-yet-physical preview of the next block. The
// player slides it laterally and rotates its yaw before committing; it has no
// engine body until placed.
type GhostPlacement struct {
	OffsetX float64
	Yaw     float64
	Def     *world.BlockDefinition

	cfg config.GameConfig
}

func NewGhost(cfg config.GameConfig, def *world.BlockDefinition) *GhostPlacement {
	return &GhostPlacement{cfg: cfg, Def: def}
}

// Move slides the ghost by a fixed step. dir is -1 for left, +1 for right;
// any other sign is normalized.
func (g *GhostPlacement) Move(dir int) {
	step := g.cfg.MoveStep
	if dir < 0 {
		step = -step
	}
	g.OffsetX = clamp(g.OffsetX+step, -g.cfg.MaxOffset, g.cfg.MaxOffset)
}

// Rotate turns the ghost's yaw by the coarse or fine step.
func (g *GhostPlacement) Rotate(dir int, fine bool) {
	step := g.cfg.RotateStepCoarse
	if fine {
		step = g.cfg.RotateStepFine
	}
	if dir < 0 {
		step = -step
	}
	g.Yaw = normalizeAngle(g.Yaw + step)
}

// SetDefinition swaps in the next block definition, keeping the current
// offset and yaw so the player does not lose their aim mid-game.
func (g *GhostPlacement) SetDefinition(def *world.BlockDefinition) {
	g.Def = def
}

// Reset returns the ghost to the neutral offset and rotation, called after
// each successful placement.
func (g *GhostPlacement) Reset() {
	g.OffsetX = 0
	g.Yaw = 0
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

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
