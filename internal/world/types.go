package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("shape(%d)", int(k))
	}
}

// BlockDefinition describes a block type. Definitions are immutable and
// shared by reference between the ghost, the registry and the evaluators.
type BlockDefinition struct {
	Name        string
	Kind        ShapeKind
	HalfExtents mgl64.Vec3 // box: half sizes on x/y/z
	Radius      float64    // cylinder
	Height      float64    // cylinder, full height
	Mass        float64
	Friction    float64
	Restitution float64
	Color       string
}

// Validate reports the first invalid numeric field, if any.
func (d *BlockDefinition) Validate() error {
	if d == nil {
		return fmt.Errorf("nil block definition")
	}
	switch d.Kind {
	case ShapeBox:
		if d.HalfExtents.X() <= 0 || d.HalfExtents.Y() <= 0 || d.HalfExtents.Z() <= 0 {
			return fmt.Errorf("box %q: half extents must be positive, got %v", d.Name, d.HalfExtents)
		}
	case ShapeCylinder:
		if d.Radius <= 0 {
			return fmt.Errorf("cylinder %q: radius must be positive, got %f", d.Name, d.Radius)
		}
		if d.Height <= 0 {
			return fmt.Errorf("cylinder %q: height must be positive, got %f", d.Name, d.Height)
		}
	default:
		return fmt.Errorf("block %q: unrecognized shape kind %d", d.Name, int(d.Kind))
	}
	if d.Mass <= 0 {
		return fmt.Errorf("block %q: mass must be positive, got %f", d.Name, d.Mass)
	}
	if d.Friction <= 0 {
		return fmt.Errorf("block %q: friction must be positive, got %f", d.Name, d.Friction)
	}
	if d.Restitution <= 0 {
		return fmt.Errorf("block %q: restitution must be positive, got %f", d.Name, d.Restitution)
	}
	return nil
}

// HalfHeight returns the vertical half extent regardless of shape kind.
func (d *BlockDefinition) HalfHeight() float64 {
	if d.Kind == ShapeCylinder {
		return d.Height / 2
	}
	return d.HalfExtents.Y()
}

// DefaultDefinition is the safe substitute used when a malformed definition
// reaches shape creation.
func DefaultDefinition() *BlockDefinition {
	return &BlockDefinition{
		Name:        "default-box",
		Kind:        ShapeBox,
		HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5},
		Mass:        1.0,
		Friction:    0.8,
		Restitution: 0.1,
		Color:       "#8888ff",
	}
}
