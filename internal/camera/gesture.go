package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"towerstack/internal/config"
)

// TouchPoint is one finger contact in screen pixels.
type TouchPoint struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// gestureMode is the latched interpretation of the current touch contact.
// Reset triggers: a new touch contact (start) and the last finger lifting
// (end); never mid-gesture.
type gestureMode int

const (
	gestureNone gestureMode = iota
	gestureOrbit
	gestureUndecided // two fingers down, pinch vs pan not yet locked
	gesturePinch
	gesturePan
)

// Controller turns raw pointer/touch/wheel events into camera state. Mouse
// and touch paths are mutually exclusive for the lifetime of a gesture: the
// first touch contact disables the mouse path until all fingers lift.
type Controller struct {
	cfg   config.CameraConfig
	state State

	mouseDown  bool
	lastMouseX float64
	lastMouseY float64

	touchActive bool
	mode        gestureMode
	lastTouchX  float64
	lastTouchY  float64

	startDist float64
	startMidX float64
	startMidY float64
	prevDist  float64
	prevMidX  float64
	prevMidY  float64
}

func NewController(cfg config.CameraConfig, initial State) *Controller {
	return &Controller{
		cfg:   cfg,
		state: Clamp(initial, cfg),
	}
}

// State returns the current camera state; read once per frame by the render
// step.
func (c *Controller) State() State {
	return c.state
}

// --- Mouse path ---

func (c *Controller) MouseDown(x, y float64) {
	if c.touchActive {
		return
	}
	c.mouseDown = true
	c.lastMouseX = x
	c.lastMouseY = y
}

func (c *Controller) MouseMove(x, y float64) {
	if !c.mouseDown || c.touchActive {
		return
	}
	c.orbit(x-c.lastMouseX, y-c.lastMouseY, 1.0)
	c.lastMouseX = x
	c.lastMouseY = y
}

func (c *Controller) MouseUp() {
	c.mouseDown = false
}

// Wheel zooms. Ignored while a touch interaction is in progress.
func (c *Controller) Wheel(deltaY float64) {
	if c.touchActive {
		return
	}
	c.state.Radius += deltaY * c.cfg.ZoomSpeed
	c.state = Clamp(c.state, c.cfg)
}

// --- Touch path ---

// TouchStart begins a touch contact. One finger enters orbit mode; two
// fingers enter the undecided state until pinch or pan locks. More than two
// fingers are silently ignored.
func (c *Controller) TouchStart(points []TouchPoint) {
	if len(points) == 0 {
		return
	}
	c.touchActive = true
	c.mouseDown = false

	switch len(points) {
	case 1:
		c.mode = gestureOrbit
		c.lastTouchX = points[0].X
		c.lastTouchY = points[0].Y
	case 2:
		c.beginTwoFinger(points)
	default:
		// A third finger arriving mid-gesture does not disturb the lock.
	}
}

func (c *Controller) beginTwoFinger(points []TouchPoint) {
	dist, midX, midY := twoFingerMetrics(points)
	c.mode = gestureUndecided
	c.startDist = dist
	c.startMidX = midX
	c.startMidY = midY
	c.prevDist = dist
	c.prevMidX = midX
	c.prevMidY = midY
}

// TouchMove updates the gesture. While undecided, the larger of the pinch
// signal (distance change) and pan signal (midpoint displacement) past the
// pixel threshold locks the mode for the rest of the contact; equal signals
// prefer pan.
func (c *Controller) TouchMove(points []TouchPoint) {
	if !c.touchActive || len(points) == 0 {
		return
	}

	if len(points) == 1 {
		if c.mode == gestureOrbit {
			c.orbit(points[0].X-c.lastTouchX, points[0].Y-c.lastTouchY, c.cfg.TouchSensitivity)
			c.lastTouchX = points[0].X
			c.lastTouchY = points[0].Y
		}
		return
	}

	dist, midX, midY := twoFingerMetrics(points)

	if c.mode == gestureUndecided {
		pinchSignal := math.Abs(dist - c.startDist)
		panSignal := math.Hypot(midX-c.startMidX, midY-c.startMidY)
		if pinchSignal > c.cfg.GestureLockPx && pinchSignal > panSignal {
			c.mode = gesturePinch
		} else if panSignal > c.cfg.GestureLockPx {
			c.mode = gesturePan
		}
	}

	switch c.mode {
	case gesturePinch:
		c.state.Radius -= (dist - c.prevDist) * c.cfg.PinchZoomSpeed
		c.state = Clamp(c.state, c.cfg)
	case gesturePan:
		c.pan(midX-c.prevMidX, midY-c.prevMidY)
	}

	c.prevDist = dist
	c.prevMidX = midX
	c.prevMidY = midY
}

// TouchEnd receives the fingers still on screen. Zero remaining clears every
// interaction latch; exactly one re-enters orbit from the survivor's current
// position so the camera does not jump.
func (c *Controller) TouchEnd(remaining []TouchPoint) {
	switch len(remaining) {
	case 0:
		c.touchActive = false
		c.mode = gestureNone
	case 1:
		c.mode = gestureOrbit
		c.lastTouchX = remaining[0].X
		c.lastTouchY = remaining[0].Y
	default:
		c.beginTwoFinger(remaining)
	}
}

// ApplyPreset jumps to a named pose, framed against the current tower height.
func (c *Controller) ApplyPreset(p Preset, towerHeight float64) bool {
	next, ok := ApplyPreset(c.state, p, towerHeight, c.cfg)
	if !ok {
		return false
	}
	c.state = next
	return true
}

// orbit applies a drag delta to the spherical angles, re-clamping phi on
// every update.
func (c *Controller) orbit(dx, dy, sensitivity float64) {
	c.state.Theta -= dx * c.cfg.RotSpeedX * sensitivity
	c.state.Phi -= dy * c.cfg.RotSpeedY * sensitivity
	c.state = Clamp(c.state, c.cfg)
}

// pan translates the look-at target along the camera's ground-projected
// forward/right basis, scaled by the radius so panning covers more ground
// when zoomed out.
func (c *Controller) pan(dx, dy float64) {
	sinT := math.Sin(c.state.Theta)
	cosT := math.Cos(c.state.Theta)
	right := mgl64.Vec3{cosT, 0, -sinT}
	forward := mgl64.Vec3{-sinT, 0, -cosT}

	scale := c.cfg.PanSpeed * c.state.Radius
	c.state.LookAt = c.state.LookAt.
		Sub(right.Mul(dx * scale)).
		Sub(forward.Mul(dy * scale))
}

func twoFingerMetrics(points []TouchPoint) (dist, midX, midY float64) {
	a, b := points[0], points[1]
	dist = math.Hypot(b.X-a.X, b.Y-a.Y)
	midX = (a.X + b.X) / 2
	midY = (a.Y + b.Y) / 2
	return dist, midX, midY
}
