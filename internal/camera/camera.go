// Package camera maintains an orbit camera: spherical coordinates around a
// look-at target, driven by pointer, wheel and multi-touch input. The math is
// plain mgl64 so the controller tests without any graphics context.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"towerstack/internal/config"
)

// State is the orbit-camera pose. Phi is the polar angle from the vertical
// axis, theta the azimuth. Render reads it; only the gesture controller
// writes it.
type State struct {
	Radius float64
	Phi    float64
	Theta  float64
	LookAt mgl64.Vec3
}

// Position converts the spherical coordinates into the camera's world
// position relative to the look-at target.
func (s State) Position() mgl64.Vec3 {
	return s.LookAt.Add(SphericalToCartesian(s.Radius, s.Phi, s.Theta))
}

// SphericalToCartesian maps (radius, phi, theta) to a world offset with +Y up.
func SphericalToCartesian(radius, phi, theta float64) mgl64.Vec3 {
	sinPhi := math.Sin(phi)
	return mgl64.Vec3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	}
}

// Clamp forces phi and radius back into their configured ranges. Applied
// after every mutation so the camera can never flip through the poles or
// zoom out of bounds.
func Clamp(s State, cfg config.CameraConfig) State {
	if s.Phi < cfg.MinPolar {
		s.Phi = cfg.MinPolar
	}
	if s.Phi > cfg.MaxPolar {
		s.Phi = cfg.MaxPolar
	}
	if s.Radius < cfg.MinZoom {
		s.Radius = cfg.MinZoom
	}
	if s.Radius > cfg.MaxZoom {
		s.Radius = cfg.MaxZoom
	}
	return s
}

// Preset is a named camera configuration.
type Preset string

const (
	PresetFront Preset = "front"
	PresetTop   Preset = "top"
	PresetSide  Preset = "side"
)

type presetPose struct {
	radius float64
	phi    float64
	theta  float64
	// lookAtScale multiplies the current tower height into the look-at Y so
	// the preset stays framed as the tower grows.
	lookAtScale float64
}

var presets = map[Preset]presetPose{
	PresetFront: {radius: 18, phi: math.Pi / 3, theta: 0, lookAtScale: 0.5},
	PresetTop:   {radius: 24, phi: 0.2, theta: 0, lookAtScale: 1.0},
	PresetSide:  {radius: 18, phi: math.Pi / 3, theta: math.Pi / 2, lookAtScale: 0.5},
}

// ApplyPreset overwrites the state with a named pose, scaling the look-at
// height by the tower's current tallest point, then re-clamps.
func ApplyPreset(s State, p Preset, towerHeight float64, cfg config.CameraConfig) (State, bool) {
	pose, ok := presets[p]
	if !ok {
		return s, false
	}
	s.Radius = pose.radius
	s.Phi = pose.phi
	s.Theta = pose.theta
	s.LookAt = mgl64.Vec3{0, pose.lookAtScale * towerHeight, 0}
	return Clamp(s, cfg), true
}
