package physics

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type contactPair struct {
	a, b string
}

// ContactMaterial is one pairwise friction/restitution override.
type ContactMaterial struct {
	Friction    float64
	Restitution float64
}

// MemoryEngine is the in-process Engine implementation. It registers bodies
// and keeps their poses but integrates no dynamics itself: poses change only
// when a driver pushes them in through SetBodyState. The production deployment
// runs a real solver behind the same interface; tests and the standalone
// server use this one.
type MemoryEngine struct {
	mu       sync.RWMutex
	bodies   map[string]*BodyState
	contacts map[contactPair]ContactMaterial
	steps    uint64
	elapsed  float64
	closed   bool
}

var _ Engine = (*MemoryEngine)(nil)

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		bodies:   make(map[string]*BodyState),
		contacts: make(map[contactPair]ContactMaterial),
	}
}

func (e *MemoryEngine) CreateBody(req CreateBodyRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("engine closed")
	}
	if req.ID == "" {
		return fmt.Errorf("create body: empty id")
	}
	if _, exists := e.bodies[req.ID]; exists {
		return fmt.Errorf("create body: id %q already registered", req.ID)
	}
	rot := req.Rotation
	if rot.W == 0 && rot.V.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	e.bodies[req.ID] = &BodyState{
		Position: req.Position,
		Rotation: rot,
	}
	return nil
}

func (e *MemoryEngine) RemoveBody(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.bodies, id)
	for pair := range e.contacts {
		if pair.a == id || pair.b == id {
			delete(e.contacts, pair)
		}
	}
	return nil
}

func (e *MemoryEngine) SetContactMaterial(idA, idB string, friction, restitution float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("engine closed")
	}
	e.contacts[orderedPair(idA, idB)] = ContactMaterial{
		Friction:    friction,
		Restitution: restitution,
	}
	return nil
}

func (e *MemoryEngine) Step(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps++
	e.elapsed += dt
}

func (e *MemoryEngine) BodyState(id string) (BodyState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bodies[id]
	if !ok {
		return BodyState{}, false
	}
	return *b, true
}

func (e *MemoryEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bodies = make(map[string]*BodyState)
	e.contacts = make(map[contactPair]ContactMaterial)
	e.closed = true
	return nil
}

// SetBodyState injects a pose from the outside. Drivers and tests use it to
// stand in for a real solver.
func (e *MemoryEngine) SetBodyState(id string, state BodyState) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bodies[id]
	if !ok {
		return false
	}
	*b = state
	return true
}

// ContactMaterialFor returns the registered override for a pair, if any.
func (e *MemoryEngine) ContactMaterialFor(idA, idB string) (ContactMaterial, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.contacts[orderedPair(idA, idB)]
	return m, ok
}

// Steps returns how many times Step has been called.
func (e *MemoryEngine) Steps() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.steps
}

func orderedPair(a, b string) contactPair {
	if a > b {
		a, b = b, a
	}
	return contactPair{a: a, b: b}
}
