package game

import (
	"math"

	"towerstack/internal/config"
	"towerstack/internal/world"
)

// Verdict is the three-level placement stability rating shown on the ghost
// indicator.
type Verdict int

const (
	VerdictGreen Verdict = iota
	VerdictYellow
	VerdictRed
)

func (v Verdict) String() string {
	switch v {
	case VerdictGreen:
		return "green"
	case VerdictYellow:
		return "yellow"
	case VerdictRed:
		return "red"
	default:
		return "unknown"
	}
}

// Evaluator rates how stable a pending placement will be before it happens.
// Pure reader: safe to call every frame.
type Evaluator struct {
	cfg config.StabilityConfig
}

func NewEvaluator(cfg config.StabilityConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate compares the ghost's planar offset from the top block against the
// top block's footprint scaled by the ghost's own footprint. The first block
// of a game is always green.
func (e *Evaluator) Evaluate(ghost *GhostPlacement, top *world.BlockState) Verdict {
	if ghost == nil || ghost.Def == nil || top == nil || top.Def == nil {
		return VerdictGreen
	}

	offsetX := math.Abs(ghost.OffsetX - top.Position.X())
	offsetZ := math.Abs(0 - top.Position.Z())

	switch {
	case ghost.Def.Kind == world.ShapeBox && top.Def.Kind == world.ShapeBox:
		return e.evaluateBoxOnBox(ghost.Def, top.Def, offsetX, offsetZ)
	case ghost.Def.Kind == world.ShapeCylinder && top.Def.Kind == world.ShapeCylinder:
		return e.evaluateRadial(ghost.Def.Radius, top.Def.Radius, offsetX, offsetZ)
	default:
		// Mixed box/cylinder has no defined footprint rule; report the
		// middle tier rather than guessing geometry.
		return VerdictYellow
	}
}

// evaluateBoxOnBox checks both planar axes against the same tier: the
// allowance grows with the support's surplus size and shrinks with the
// ghost's own size.
func (e *Evaluator) evaluateBoxOnBox(ghost, top *world.BlockDefinition, offsetX, offsetZ float64) Verdict {
	if e.withinBoxTier(ghost, top, offsetX, offsetZ, e.cfg.BoxGreen) {
		return VerdictGreen
	}
	if e.withinBoxTier(ghost, top, offsetX, offsetZ, e.cfg.BoxYellow) {
		return VerdictYellow
	}
	return VerdictRed
}

func (e *Evaluator) withinBoxTier(ghost, top *world.BlockDefinition, offsetX, offsetZ, factor float64) bool {
	allowX := boxAllowance(top.HalfExtents.X(), ghost.HalfExtents.X(), factor)
	allowZ := boxAllowance(top.HalfExtents.Z(), ghost.HalfExtents.Z(), factor)
	return offsetX <= allowX && offsetZ <= allowZ
}

func boxAllowance(topHalf, ghostHalf, factor float64) float64 {
	return math.Max(0, topHalf-ghostHalf) + ghostHalf*factor
}

// evaluateRadial rates cylinder-on-cylinder placements by radial distance.
func (e *Evaluator) evaluateRadial(ghostRadius, topRadius, offsetX, offsetZ float64) Verdict {
	dist := math.Hypot(offsetX, offsetZ)
	if dist <= radialAllowance(topRadius, ghostRadius, e.cfg.CylinderGreen) {
		return VerdictGreen
	}
	if dist <= radialAllowance(topRadius, ghostRadius, e.cfg.CylinderYell) {
		return VerdictYellow
	}
	return VerdictRed
}

func radialAllowance(topRadius, ghostRadius, factor float64) float64 {
	return math.Max(0, topRadius-ghostRadius) + ghostRadius*factor
}
