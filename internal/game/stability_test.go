package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"towerstack/internal/config"
	"towerstack/internal/world"
)

func testEvaluator() *Evaluator {
	return NewEvaluator(config.Default().Stability)
}

func boxDef(halfX, halfY, halfZ float64) *world.BlockDefinition {
	return &world.BlockDefinition{
		Name:        "box",
		Kind:        world.ShapeBox,
		HalfExtents: mgl64.Vec3{halfX, halfY, halfZ},
		Mass:        1, Friction: 0.8, Restitution: 0.1,
	}
}

func cylinderDef(radius, height float64) *world.BlockDefinition {
	return &world.BlockDefinition{
		Name: "cylinder",
		Kind: world.ShapeCylinder,
		Radius: radius, Height: height,
		Mass: 1, Friction: 0.8, Restitution: 0.1,
	}
}

func topState(def *world.BlockDefinition, x, z float64) *world.BlockState {
	return &world.BlockState{
		ID:       "top",
		Def:      def,
		Position: mgl64.Vec3{x, 0.5, z},
		Rotation: mgl64.QuatIdent(),
	}
}

func ghostAt(def *world.BlockDefinition, offsetX float64) *GhostPlacement {
	g := NewGhost(config.Default().Game, def)
	g.OffsetX = offsetX
	return g
}

func TestEvaluateFirstBlockAlwaysGreen(t *testing.T) {
	e := testEvaluator()
	for _, offset := range []float64{0, 1.5, -3, 100} {
		assert.Equal(t, VerdictGreen, e.Evaluate(ghostAt(boxDef(0.5, 0.5, 0.5), offset), nil))
	}
	assert.Equal(t, VerdictGreen, e.Evaluate(nil, topState(boxDef(1, 1, 1), 0, 0)))
}

func TestEvaluateCenteredPlacementIsGreen(t *testing.T) {
	e := testEvaluator()
	top := topState(boxDef(1, 0.5, 1), 0, 0)
	assert.Equal(t, VerdictGreen, e.Evaluate(ghostAt(boxDef(0.5, 0.5, 0.5), 0), top))
}

func TestEvaluateBoxTiers(t *testing.T) {
	// Top half-extent 1.0, ghost half-extent 0.5:
	// allowance base = max(0, 1-0.5) = 0.5
	// green  = 0.5 + 0.5*0.4 = 0.7
	// yellow = 0.5 + 0.5*0.8 = 0.9
	e := testEvaluator()
	top := topState(boxDef(1, 0.5, 1), 0, 0)
	ghost := boxDef(0.5, 0.5, 0.5)

	tests := []struct {
		offset float64
		want   Verdict
	}{
		{0.0, VerdictGreen},
		{0.7, VerdictGreen},
		{0.75, VerdictYellow},
		{0.9, VerdictYellow},
		{0.95, VerdictRed},
		{1.3, VerdictRed},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, e.Evaluate(ghostAt(ghost, tc.offset), top),
			"offset %.2f", tc.offset)
	}
}

func TestEvaluateBigBlockOnSmallBlock(t *testing.T) {
	// A large ghost on a small support gets no surplus margin: the allowance
	// collapses to ghostHalf*factor.
	e := testEvaluator()
	top := topState(boxDef(0.5, 0.5, 0.5), 0, 0)
	ghost := boxDef(1.5, 0.5, 1.5) // green allowance = 0 + 1.5*0.4 = 0.6

	assert.Equal(t, VerdictGreen, e.Evaluate(ghostAt(ghost, 0.6), top))
	assert.Equal(t, VerdictYellow, e.Evaluate(ghostAt(ghost, 0.7), top))
	assert.Equal(t, VerdictRed, e.Evaluate(ghostAt(ghost, 1.3), top))
}

func TestEvaluateBoxOffsetFromMovedTop(t *testing.T) {
	// Offsets are relative to the top block's live planar position, not the
	// world origin.
	e := testEvaluator()
	top := topState(boxDef(1, 0.5, 1), 2.0, 0)
	ghost := boxDef(0.5, 0.5, 0.5)

	assert.Equal(t, VerdictGreen, e.Evaluate(ghostAt(ghost, 2.0), top))
	assert.Equal(t, VerdictRed, e.Evaluate(ghostAt(ghost, 0), top))
}

func TestEvaluateBoxZDrift(t *testing.T) {
	// Both axes must pass the same tier: a top block drifted on z past the
	// yellow allowance is red even with a perfect x offset.
	e := testEvaluator()
	ghost := boxDef(0.5, 0.5, 0.5)

	assert.Equal(t, VerdictYellow,
		e.Evaluate(ghostAt(ghost, 0), topState(boxDef(1, 0.5, 1), 0, 0.8)))
	assert.Equal(t, VerdictRed,
		e.Evaluate(ghostAt(ghost, 0), topState(boxDef(1, 0.5, 1), 0, 1.0)))
}

func TestEvaluateCylinderTiers(t *testing.T) {
	// Top radius 1.0, ghost radius 0.5:
	// green  = 0.5 + 0.5*0.3 = 0.65
	// yellow = 0.5 + 0.5*0.6 = 0.8
	e := testEvaluator()
	top := topState(cylinderDef(1.0, 1.0), 0, 0)
	ghost := cylinderDef(0.5, 1.0)

	assert.Equal(t, VerdictGreen, e.Evaluate(ghostAt(ghost, 0.65), top))
	assert.Equal(t, VerdictYellow, e.Evaluate(ghostAt(ghost, 0.75), top))
	assert.Equal(t, VerdictRed, e.Evaluate(ghostAt(ghost, 0.85), top))
}

func TestEvaluateCylinderUsesRadialDistance(t *testing.T) {
	e := testEvaluator()
	// Top drifted on z: hypot(offsetX, 0.6) decides the tier.
	top := topState(cylinderDef(1.0, 1.0), 0, 0.6)
	ghost := cylinderDef(0.5, 1.0)

	// hypot(0.2, 0.6) ~ 0.632 <= 0.65
	assert.Equal(t, VerdictGreen, e.Evaluate(ghostAt(ghost, 0.2), top))
	// hypot(0.5, 0.6) ~ 0.78 <= 0.8
	assert.Equal(t, VerdictYellow, e.Evaluate(ghostAt(ghost, 0.5), top))
	// hypot(0.6, 0.6) ~ 0.85 > 0.8
	assert.Equal(t, VerdictRed, e.Evaluate(ghostAt(ghost, 0.6), top))
}

func TestEvaluateMixedShapesFallBackToYellow(t *testing.T) {
	e := testEvaluator()
	assert.Equal(t, VerdictYellow,
		e.Evaluate(ghostAt(cylinderDef(0.5, 1), 0), topState(boxDef(1, 0.5, 1), 0, 0)))
	assert.Equal(t, VerdictYellow,
		e.Evaluate(ghostAt(boxDef(0.5, 0.5, 0.5), 0), topState(cylinderDef(1, 1), 0, 0)))
}
