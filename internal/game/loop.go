package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"towerstack/internal/config"
	"towerstack/internal/physics"
	"towerstack/internal/world"
)

// State is the game lifecycle. GAME_OVER is terminal: a fresh Game is the
// only way back to playing.
type State int

const (
	StatePlaying State = iota
	StateGameOver
)

func (s State) String() string {
	if s == StateGameOver {
		return "game_over"
	}
	return "playing"
}

// Callbacks are the host-application hooks. Any of them may be nil.
type Callbacks struct {
	// OnScoreUpdate fires whenever the live height changes while playing.
	OnScoreUpdate func(height float64)
	// OnGameOver fires exactly once per game with the best height achieved.
	OnGameOver func(finalHeight float64)
	// OnBlockPlaced fires once per successful placement so the host can
	// supply the next block definition.
	OnBlockPlaced func()
}

// Game drives the per-tick sequence: advance physics, mirror poses, run the
// health monitor, update score, rate the pending ghost placement. All methods
// must be called from the session goroutine; the tick loop and input handlers
// never run concurrently.
type Game struct {
	cfg       *config.Config
	engine    physics.Engine
	registry  *world.Registry
	ghost     *GhostPlacement
	evaluator *Evaluator
	monitor   *Monitor
	callbacks Callbacks
	log       *zap.Logger

	state     State
	tower     TowerState
	verdict   Verdict
	ghostY    float64
	score     float64
	best      float64
	lastPlace time.Time

	now func() time.Time
}

func New(cfg *config.Config, engine physics.Engine, firstBlock *world.BlockDefinition, callbacks Callbacks, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		cfg:       cfg,
		engine:    engine,
		registry:  world.NewRegistry(),
		evaluator: NewEvaluator(cfg.Stability),
		monitor:   NewMonitor(cfg.Health),
		callbacks: callbacks,
		log:       log,
		state:     StatePlaying,
		now:       time.Now,
	}
	g.ghost = NewGhost(cfg.Game, g.safeDefinition(firstBlock))
	g.ghostY = g.ghost.Def.HalfHeight() + cfg.Game.SpawnClearance
	return g
}

// Tick runs one fixed-step frame. The order is load-bearing: physics first,
// pose mirror, health scan, score, terminal transition, ghost preview.
func (g *Game) Tick() {
	if g.engine == nil {
		return
	}

	g.engine.Step(g.cfg.StepSeconds())

	for _, id := range g.registry.IDs() {
		if state, ok := g.engine.BodyState(id); ok {
			g.registry.UpdatePose(id, state.Position, state.Rotation)
		}
	}

	snapshot := g.registry.Snapshot()

	if g.state != StatePlaying {
		// TowerState is frozen after the terminal transition.
		return
	}

	tower := g.monitor.Scan(snapshot, true)
	g.tower = tower

	if tower.TallestPoint != g.score {
		g.score = tower.TallestPoint
		if g.callbacks.OnScoreUpdate != nil {
			g.callbacks.OnScoreUpdate(g.score)
		}
	}
	if g.score > g.best {
		g.best = g.score
	}

	if tower.GameOver() {
		g.state = StateGameOver
		g.log.Info("game over",
			zap.Bool("tipped_over", tower.TippedOver),
			zap.Bool("fallen_off_world", tower.FallenOffWorld),
			zap.Float64("final_height", g.best),
			zap.Int("blocks", g.registry.Len()))
		if g.callbacks.OnGameOver != nil {
			g.callbacks.OnGameOver(g.best)
		}
		return
	}

	g.ghostY = tower.TallestPoint + g.ghost.Def.HalfHeight() + g.cfg.Game.SpawnClearance
	g.verdict = g.evaluator.Evaluate(g.ghost, snapshot.Top())
}

// Place commits the ghost as a new rigid block. It is a no-op while the game
// is over, without an engine, or inside the post-placement cooldown.
func (g *Game) Place() bool {
	if g.state != StatePlaying || g.engine == nil {
		return false
	}
	now := g.now()
	if !g.lastPlace.IsZero() && now.Sub(g.lastPlace) < g.cfg.Game.PlaceCooldown {
		return false
	}

	def := g.safeDefinition(g.ghost.Def)
	position := mgl64.Vec3{g.ghost.OffsetX, g.tower.TallestPoint + def.HalfHeight() + g.cfg.Game.SpawnClearance, 0}
	rotation := mgl64.QuatRotate(g.ghost.Yaw, worldUp)

	block := &world.PlacedBlock{
		ID:       uuid.NewString(),
		Def:      def,
		Position: position,
		Rotation: rotation,
	}

	if err := g.engine.CreateBody(physics.CreateBodyRequest{
		ID:             block.ID,
		Shape:          def,
		Position:       position,
		Rotation:       rotation,
		LinearDamping:  g.cfg.Physics.LinearDamping,
		AngularDamping: g.cfg.Physics.AngularDamping,
	}); err != nil {
		g.log.Error("create body failed", zap.String("block", def.Name), zap.Error(err))
		return false
	}

	g.registerContacts(block)
	g.registry.Append(block)
	g.ghost.Reset()
	g.lastPlace = now

	g.log.Info("block placed",
		zap.String("id", block.ID),
		zap.String("block", def.Name),
		zap.Float64("x", position.X()),
		zap.Float64("y", position.Y()),
		zap.Int("count", g.registry.Len()))

	if g.callbacks.OnBlockPlaced != nil {
		g.callbacks.OnBlockPlaced()
	}
	return true
}

// registerContacts sets the pairwise contact materials for a new block:
// full-valued against the ground, and against every placed block the minimum
// of the pair scaled down so stacked contacts grip and bounce less than
// block-on-ground.
func (g *Game) registerContacts(block *world.PlacedBlock) {
	if err := g.engine.SetContactMaterial(block.ID, physics.GroundID, block.Def.Friction, block.Def.Restitution); err != nil {
		g.log.Warn("ground contact material", zap.String("id", block.ID), zap.Error(err))
	}

	for _, state := range g.registry.Snapshot().Blocks {
		friction := min64(block.Def.Friction, state.Def.Friction) * g.cfg.Game.BlockFriction
		restitution := min64(block.Def.Restitution, state.Def.Restitution) * g.cfg.Game.BlockRestitution
		if err := g.engine.SetContactMaterial(block.ID, state.ID, friction, restitution); err != nil {
			g.log.Warn("block contact material",
				zap.String("id", block.ID), zap.String("other", state.ID), zap.Error(err))
		}
	}
}

// SetNextBlock installs the definition of the block about to be placed.
// Malformed definitions log and fall back to the default box; the loop never
// halts on a bad definition.
func (g *Game) SetNextBlock(def *world.BlockDefinition) {
	g.ghost.SetDefinition(g.safeDefinition(def))
}

func (g *Game) safeDefinition(def *world.BlockDefinition) *world.BlockDefinition {
	if err := def.Validate(); err != nil {
		g.log.Warn("invalid block definition, substituting default box", zap.Error(err))
		return world.DefaultDefinition()
	}
	return def
}

// Close deterministically releases every engine body. The game must not be
// used afterwards; restarting means building a fresh Game.
func (g *Game) Close() {
	if g.engine == nil {
		return
	}
	for _, id := range g.registry.Reset() {
		if err := g.engine.RemoveBody(id); err != nil {
			g.log.Warn("remove body", zap.String("id", id), zap.Error(err))
		}
	}
}

// Ghost input operations, gated on the game state so a finished game ignores
// stray input.

func (g *Game) MoveGhost(dir int) {
	if g.state != StatePlaying {
		return
	}
	g.ghost.Move(dir)
}

func (g *Game) RotateGhost(dir int, fine bool) {
	if g.state != StatePlaying {
		return
	}
	g.ghost.Rotate(dir, fine)
}

// Read accessors for the render/transport side.

func (g *Game) State() State             { return g.state }
func (g *Game) Tower() TowerState        { return g.tower }
func (g *Game) Verdict() Verdict         { return g.verdict }
func (g *Game) Score() float64           { return g.score }
func (g *Game) Best() float64            { return g.best }
func (g *Game) BlockCount() int          { return g.registry.Len() }
func (g *Game) Ghost() *GhostPlacement   { return g.ghost }
func (g *Game) GhostHeight() float64     { return g.ghostY }
func (g *Game) Snapshot() world.Snapshot { return g.registry.Snapshot() }

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
