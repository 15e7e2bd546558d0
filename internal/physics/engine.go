// Package physics defines the port to the rigid-body engine. The game core
// only ever talks to this interface; dynamics, collision response and contact
// resolution live behind it.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"towerstack/internal/world"
)

// GroundID is the reserved body ID of the static ground plane. Engines
// create it implicitly; contact-material overrides may reference it.
const GroundID = "ground"

// BodyState is a synchronous pose snapshot of one body.
type BodyState struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// CreateBodyRequest carries everything the engine needs to register a new
// rigid body.
type CreateBodyRequest struct {
	ID             string
	Shape          *world.BlockDefinition
	Position       mgl64.Vec3
	Rotation       mgl64.Quat
	LinearDamping  float64
	AngularDamping float64
}

// Engine is the external rigid-body collaborator. All calls are synchronous;
// the game loop invokes Step exactly once per tick and queries poses right
// after.
type Engine interface {
	// CreateBody registers a body with mass/shape/material from the block
	// definition and the given initial pose.
	CreateBody(req CreateBodyRequest) error

	// RemoveBody releases a body and its resources. Removing an unknown ID
	// is not an error.
	RemoveBody(id string) error

	// SetContactMaterial overrides friction/restitution for one body pair.
	// Either ID may be GroundID.
	SetContactMaterial(idA, idB string, friction, restitution float64) error

	// Step advances the simulation by a fixed timestep in seconds.
	Step(dt float64)

	// BodyState returns the current pose of a body.
	BodyState(id string) (BodyState, bool)

	// Close releases every body and shuts the engine down.
	Close() error
}
