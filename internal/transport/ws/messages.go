package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"towerstack/internal/camera"
	"towerstack/internal/world"
)

// Inbound message types.
const (
	MessageTypePing      = "ping"
	MessageTypeMove      = "move"
	MessageTypeRotate    = "rotate"
	MessageTypePlace     = "place"
	MessageTypePointer   = "pointer"
	MessageTypeWheel     = "wheel"
	MessageTypeTouch     = "touch"
	MessageTypePreset    = "preset"
	MessageTypeNextBlock = "next_block"
	MessageTypeReset     = "reset"
)

// Outbound message types.
const (
	MessageTypeWelcome     = "welcome"
	MessageTypeState       = "state"
	MessageTypeScore       = "score"
	MessageTypeBlockPlaced = "block_placed"
	MessageTypeGameOver    = "game_over"
	MessageTypePong        = "pong"
	MessageTypeError       = "error"
)

type PingMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
}

type MoveMessage struct {
	Type string `json:"type"`
	Dir  int    `json:"dir"` // -1 left, +1 right
}

type RotateMessage struct {
	Type string `json:"type"`
	Dir  int    `json:"dir"`
	Fine bool   `json:"fine"`
}

type PlaceMessage struct {
	Type string `json:"type"`
}

type PointerMessage struct {
	Type   string  `json:"type"`
	Action string  `json:"action"` // down | move | up
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type WheelMessage struct {
	Type   string  `json:"type"`
	DeltaY float64 `json:"delta_y"`
}

type TouchMessage struct {
	Type   string              `json:"type"`
	Action string              `json:"action"` // start | move | end
	Points []camera.TouchPoint `json:"points"`
}

type PresetMessage struct {
	Type string `json:"type"`
	Name string `json:"name"` // front | top | side
}

type NextBlockMessage struct {
	Type  string          `json:"type"`
	Block BlockDefinition `json:"block"`
}

type ResetMessage struct {
	Type string `json:"type"`
}

// BlockDefinition is the wire form of a block definition.
type BlockDefinition struct {
	Name        string     `json:"name"`
	Kind        string     `json:"kind"` // box | cylinder
	HalfExtents [3]float64 `json:"half_extents,omitempty"`
	Radius      float64    `json:"radius,omitempty"`
	Height      float64    `json:"height,omitempty"`
	Mass        float64    `json:"mass"`
	Friction    float64    `json:"friction"`
	Restitution float64    `json:"restitution"`
	Color       string     `json:"color,omitempty"`
}

// ToWorld converts the wire definition into the domain form. Unknown shape
// kinds surface as an error; the game layer substitutes its safe default.
func (b BlockDefinition) ToWorld() (*world.BlockDefinition, error) {
	def := &world.BlockDefinition{
		Name:        b.Name,
		Mass:        b.Mass,
		Friction:    b.Friction,
		Restitution: b.Restitution,
		Color:       b.Color,
	}
	switch b.Kind {
	case "box":
		def.Kind = world.ShapeBox
		def.HalfExtents = mgl64.Vec3{b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]}
	case "cylinder":
		def.Kind = world.ShapeCylinder
		def.Radius = b.Radius
		def.Height = b.Height
	default:
		return nil, fmt.Errorf("unrecognized shape kind %q", b.Kind)
	}
	return def, nil
}

// ParseMessage decodes an inbound message into its concrete type based on
// the type field.
func ParseMessage(data []byte) (interface{}, error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("parse message envelope: %w", err)
	}

	var msg interface{}
	switch base.Type {
	case MessageTypePing:
		msg = &PingMessage{}
	case MessageTypeMove:
		msg = &MoveMessage{}
	case MessageTypeRotate:
		msg = &RotateMessage{}
	case MessageTypePlace:
		msg = &PlaceMessage{}
	case MessageTypePointer:
		msg = &PointerMessage{}
	case MessageTypeWheel:
		msg = &WheelMessage{}
	case MessageTypeTouch:
		msg = &TouchMessage{}
	case MessageTypePreset:
		msg = &PresetMessage{}
	case MessageTypeNextBlock:
		msg = &NextBlockMessage{}
	case MessageTypeReset:
		msg = &ResetMessage{}
	default:
		return nil, fmt.Errorf("unknown message type %q", base.Type)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("parse %s message: %w", base.Type, err)
	}
	return msg, nil
}

// Outbound payloads.

type WelcomeMessage struct {
	Type       string  `json:"type"`
	Message    string  `json:"message"`
	BestHeight float64 `json:"best_height"`
}

type BlockStateMessage struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Color    string     `json:"color,omitempty"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // x, y, z, w
}

type GhostMessage struct {
	Block   BlockDefinition `json:"block"`
	OffsetX float64         `json:"offset_x"`
	Y       float64         `json:"y"`
	Yaw     float64         `json:"yaw"`
	Verdict string          `json:"verdict"`
}

type CameraMessage struct {
	Radius   float64    `json:"radius"`
	Phi      float64    `json:"phi"`
	Theta    float64    `json:"theta"`
	LookAt   [3]float64 `json:"look_at"`
	Position [3]float64 `json:"position"`
}

type StateMessage struct {
	Type         string              `json:"type"`
	GameState    string              `json:"game_state"`
	Score        float64             `json:"score"`
	BestHeight   float64             `json:"best_height"`
	WarningCount int                 `json:"warning_count"`
	Blocks       []BlockStateMessage `json:"blocks"`
	Ghost        *GhostMessage       `json:"ghost,omitempty"`
	Camera       CameraMessage       `json:"camera"`
}

type ScoreMessage struct {
	Type   string  `json:"type"`
	Height float64 `json:"height"`
}

type BlockPlacedMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type GameOverMessage struct {
	Type        string  `json:"type"`
	FinalHeight float64 `json:"final_height"`
	BestHeight  float64 `json:"best_height"`
	NewRecord   bool    `json:"new_record"`
}

type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
	ServerTime int64   `json:"server_time"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{Type: MessageTypeError, Message: message}
}
