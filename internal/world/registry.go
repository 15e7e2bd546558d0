package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PlacedBlock is one committed block. The registry exclusively owns the list
// of placed blocks; pose fields mirror the physics engine and are refreshed
// once per tick.
type PlacedBlock struct {
	ID       string
	Def      *BlockDefinition
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// TopY returns the world-space top of the block assuming upright orientation.
func (b *PlacedBlock) TopY() float64 {
	return b.Position.Y() + b.Def.HalfHeight()
}

// BlockState is a value copy of a placed block used in per-tick snapshots.
type BlockState struct {
	ID       string
	Def      *BlockDefinition
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Snapshot is the read-only view of the registry taken once per tick and
// shared by the health monitor and the stability evaluator. No consumer
// mutates it.
type Snapshot struct {
	Blocks []BlockState
}

// Top returns the most recently placed block state, or nil when empty.
func (s *Snapshot) Top() *BlockState {
	if len(s.Blocks) == 0 {
		return nil
	}
	return &s.Blocks[len(s.Blocks)-1]
}

// Registry tracks the live set of placed blocks in placement order.
type Registry struct {
	mu     sync.RWMutex
	blocks []*PlacedBlock
	index  map[string]*PlacedBlock
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*PlacedBlock),
	}
}

// Append adds a newly committed block. Placed blocks are never removed
// individually; only Reset drops them.
func (r *Registry) Append(b *PlacedBlock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, b)
	r.index[b.ID] = b
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// Top returns the most recently placed block, or nil when the stack is empty.
func (r *Registry) Top() *PlacedBlock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.blocks) == 0 {
		return nil
	}
	return r.blocks[len(r.blocks)-1]
}

// IDs returns the block IDs in placement order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.blocks))
	for i, b := range r.blocks {
		ids[i] = b.ID
	}
	return ids
}

// UpdatePose copies an engine pose into the block's mirror state.
func (r *Registry) UpdatePose(id string, position mgl64.Vec3, rotation mgl64.Quat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.index[id]; ok {
		b.Position = position
		b.Rotation = rotation
	}
}

// Snapshot copies the current block states into a read-only view.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states := make([]BlockState, len(r.blocks))
	for i, b := range r.blocks {
		states[i] = BlockState{
			ID:       b.ID,
			Def:      b.Def,
			Position: b.Position,
			Rotation: b.Rotation,
		}
	}
	return Snapshot{Blocks: states}
}

// Reset drops every placed block. Callers are responsible for removing the
// matching engine bodies.
func (r *Registry) Reset() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.blocks))
	for i, b := range r.blocks {
		ids[i] = b.ID
	}
	r.blocks = nil
	r.index = make(map[string]*PlacedBlock)
	return ids
}
