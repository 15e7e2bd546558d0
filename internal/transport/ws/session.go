package ws

import (
	"context"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"towerstack/internal/camera"
	"towerstack/internal/config"
	"towerstack/internal/game"
	"towerstack/internal/highscore"
	"towerstack/internal/physics"
	"towerstack/internal/telemetry"
	"towerstack/internal/world"
)

// broadcastEvery sends a full state snapshot every n ticks (60 Hz tick,
// 20 Hz broadcast).
const broadcastEvery = 3

// Session owns one player's game: engine, game loop, camera controller and
// connection. The session lock serializes input handlers against the tick
// loop, so events never interleave with a tick.
type Session struct {
	mu sync.Mutex

	cfg     *config.Config
	conn    *SafeWriter
	log     *zap.Logger
	metrics *telemetry.Manager
	scores  *highscore.Store

	engine *physics.MemoryEngine
	game   *game.Game
	camera *camera.Controller

	palette    []*world.BlockDefinition
	paletteIdx int
	nextBlock  *world.BlockDefinition

	ticks uint64
}

func NewSession(cfg *config.Config, conn *SafeWriter, scores *highscore.Store, metrics *telemetry.Manager, log *zap.Logger) *Session {
	s := &Session{
		cfg:     cfg,
		conn:    conn,
		log:     log,
		metrics: metrics,
		scores:  scores,
		palette: defaultPalette(),
	}
	s.build()
	return s
}

// build wires a fresh engine, game and camera. Used at construction and on
// reset; the previous game, if any, must already be closed.
func (s *Session) build() {
	s.engine = physics.NewMemoryEngine()
	s.paletteIdx = 0
	s.nextBlock = nil
	s.game = game.New(s.cfg, s.engine, s.palette[0], game.Callbacks{
		OnScoreUpdate: s.onScoreUpdate,
		OnGameOver:    s.onGameOver,
		OnBlockPlaced: s.onBlockPlaced,
	}, s.log)
	s.camera = camera.NewController(s.cfg.Camera, camera.State{
		Radius: 18,
		Phi:    1.0,
		Theta:  0,
	})
}

// Run drives the fixed-rate tick loop until the context is done.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.StepDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	start := time.Now()

	s.mu.Lock()
	s.game.Tick()
	s.ticks++
	broadcast := s.ticks%broadcastEvery == 0
	var state *StateMessage
	if broadcast {
		state = buildStateMessage(s.game, s.camera.State())
	}
	s.mu.Unlock()

	if broadcast {
		if err := s.conn.WriteJSON(state); err != nil {
			s.log.Debug("state broadcast failed", zap.Error(err))
		}
	}

	s.metrics.ObserveTick(time.Since(start))
	s.metrics.MaybeSummarize()
}

// Close releases the engine bodies and shuts the engine down.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.Close()
	if err := s.engine.Close(); err != nil {
		s.log.Warn("engine close", zap.Error(err))
	}
}

// Handle dispatches one parsed inbound message.
func (s *Session) Handle(msg interface{}) {
	switch m := msg.(type) {
	case *PingMessage:
		s.sendPong(m)
	case *MoveMessage:
		s.withLock(func() { s.game.MoveGhost(m.Dir) })
	case *RotateMessage:
		s.withLock(func() { s.game.RotateGhost(m.Dir, m.Fine) })
	case *PlaceMessage:
		s.handlePlace()
	case *PointerMessage:
		s.handlePointer(m)
	case *WheelMessage:
		s.withLock(func() { s.camera.Wheel(m.DeltaY) })
	case *TouchMessage:
		s.handleTouch(m)
	case *PresetMessage:
		s.handlePreset(m)
	case *NextBlockMessage:
		s.handleNextBlock(m)
	case *ResetMessage:
		s.handleReset()
	default:
		s.log.Debug("unhandled message", zap.Any("message", msg))
	}
}

func (s *Session) withLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Session) handlePlace() {
	s.mu.Lock()
	placed := s.game.Place()
	verdict := s.game.Verdict().String()
	s.mu.Unlock()
	if placed {
		s.metrics.CountPlacement(verdict)
	}
}

func (s *Session) handlePointer(m *PointerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m.Action {
	case "down":
		s.camera.MouseDown(m.X, m.Y)
	case "move":
		s.camera.MouseMove(m.X, m.Y)
	case "up":
		s.camera.MouseUp()
	default:
		s.log.Debug("unknown pointer action", zap.String("action", m.Action))
	}
}

func (s *Session) handleTouch(m *TouchMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m.Action {
	case "start":
		s.camera.TouchStart(m.Points)
	case "move":
		s.camera.TouchMove(m.Points)
	case "end":
		s.camera.TouchEnd(m.Points)
	default:
		s.log.Debug("unknown touch action", zap.String("action", m.Action))
	}
}

func (s *Session) handlePreset(m *PresetMessage) {
	s.mu.Lock()
	ok := s.camera.ApplyPreset(camera.Preset(m.Name), s.game.Tower().TallestPoint)
	s.mu.Unlock()
	if !ok {
		s.send(NewErrorMessage("unknown camera preset: " + m.Name))
	}
}

func (s *Session) handleNextBlock(m *NextBlockMessage) {
	def, err := m.Block.ToWorld()
	if err != nil {
		s.log.Warn("next block rejected", zap.Error(err))
		s.send(NewErrorMessage(err.Error()))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game.BlockCount() == 0 && s.game.State() == game.StatePlaying {
		// Nothing placed yet: swap the live ghost directly.
		s.game.SetNextBlock(def)
		return
	}
	s.nextBlock = def
}

func (s *Session) handleReset() {
	s.mu.Lock()
	s.game.Close()
	if err := s.engine.Close(); err != nil {
		s.log.Warn("engine close on reset", zap.Error(err))
	}
	s.build()
	s.mu.Unlock()
	s.metrics.CountReset()
	s.log.Info("session reset")
}

// Game callbacks. These fire from Tick or Place while the session lock is
// held, so they must not re-lock.

func (s *Session) onScoreUpdate(height float64) {
	s.send(&ScoreMessage{Type: MessageTypeScore, Height: height})
}

func (s *Session) onGameOver(finalHeight float64) {
	s.metrics.CountGameOver()
	newRecord := false
	if s.scores != nil {
		improved, err := s.scores.Submit(finalHeight)
		if err != nil {
			s.log.Error("persist high score", zap.Error(err))
		}
		newRecord = improved
	}
	msg := &GameOverMessage{
		Type:        MessageTypeGameOver,
		FinalHeight: finalHeight,
		NewRecord:   newRecord,
	}
	if s.scores != nil {
		msg.BestHeight = s.scores.Best()
	}
	s.send(msg)
}

func (s *Session) onBlockPlaced() {
	next := s.nextBlock
	s.nextBlock = nil
	if next == nil {
		s.paletteIdx = (s.paletteIdx + 1) % len(s.palette)
		next = s.palette[s.paletteIdx]
	}
	s.game.SetNextBlock(next)
	s.send(&BlockPlacedMessage{Type: MessageTypeBlockPlaced, Count: s.game.BlockCount()})
}

func (s *Session) sendPong(m *PingMessage) {
	s.send(&PongMessage{
		Type:       MessageTypePong,
		ClientTime: m.ClientTime,
		ServerTime: time.Now().UnixMilli(),
	})
}

func (s *Session) send(v interface{}) {
	if err := s.conn.WriteJSON(v); err != nil {
		s.log.Debug("send failed", zap.Error(err))
	}
}

// defaultPalette is the built-in block rotation used until the host supplies
// definitions through next_block messages.
func defaultPalette() []*world.BlockDefinition {
	return []*world.BlockDefinition{
		{
			Name:        "crate",
			Kind:        world.ShapeBox,
			HalfExtents: mgl64.Vec3{1.0, 0.5, 1.0},
			Mass:        2.0,
			Friction:    0.9,
			Restitution: 0.1,
			Color:       "#c98a4b",
		},
		{
			Name:        "slab",
			Kind:        world.ShapeBox,
			HalfExtents: mgl64.Vec3{1.4, 0.3, 1.4},
			Mass:        2.5,
			Friction:    0.85,
			Restitution: 0.1,
			Color:       "#8d99ae",
		},
		{
			Name:        "drum",
			Kind:        world.ShapeCylinder,
			Radius:      0.8,
			Height:      1.0,
			Mass:        1.8,
			Friction:    0.75,
			Restitution: 0.15,
			Color:       "#2a9d8f",
		},
		{
			Name:        "cube",
			Kind:        world.ShapeBox,
			HalfExtents: mgl64.Vec3{0.7, 0.7, 0.7},
			Mass:        1.5,
			Friction:    0.9,
			Restitution: 0.1,
			Color:       "#e76f51",
		},
	}
}
