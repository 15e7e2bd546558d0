package ws

import (
	"towerstack/internal/camera"
	"towerstack/internal/game"
	"towerstack/internal/world"
)

// buildStateMessage flattens the current game and camera state into one wire
// snapshot. Callers hold the session lock.
func buildStateMessage(g *game.Game, cam camera.State) *StateMessage {
	snapshot := g.Snapshot()
	blocks := make([]BlockStateMessage, len(snapshot.Blocks))
	for i, b := range snapshot.Blocks {
		blocks[i] = BlockStateMessage{
			ID:       b.ID,
			Name:     b.Def.Name,
			Kind:     b.Def.Kind.String(),
			Color:    b.Def.Color,
			Position: [3]float64{b.Position.X(), b.Position.Y(), b.Position.Z()},
			Rotation: [4]float64{b.Rotation.V.X(), b.Rotation.V.Y(), b.Rotation.V.Z(), b.Rotation.W},
		}
	}

	msg := &StateMessage{
		Type:         MessageTypeState,
		GameState:    g.State().String(),
		Score:        g.Score(),
		BestHeight:   g.Best(),
		WarningCount: g.Tower().WarningCount,
		Blocks:       blocks,
		Camera:       buildCameraMessage(cam),
	}

	if g.State() == game.StatePlaying {
		ghost := g.Ghost()
		msg.Ghost = &GhostMessage{
			Block:   fromWorldDefinition(ghost.Def),
			OffsetX: ghost.OffsetX,
			Y:       g.GhostHeight(),
			Yaw:     ghost.Yaw,
			Verdict: g.Verdict().String(),
		}
	}
	return msg
}

func buildCameraMessage(cam camera.State) CameraMessage {
	pos := cam.Position()
	return CameraMessage{
		Radius:   cam.Radius,
		Phi:      cam.Phi,
		Theta:    cam.Theta,
		LookAt:   [3]float64{cam.LookAt.X(), cam.LookAt.Y(), cam.LookAt.Z()},
		Position: [3]float64{pos.X(), pos.Y(), pos.Z()},
	}
}

// fromWorldDefinition converts a domain definition to the wire form.
func fromWorldDefinition(def *world.BlockDefinition) BlockDefinition {
	wire := BlockDefinition{
		Name:        def.Name,
		Kind:        def.Kind.String(),
		Mass:        def.Mass,
		Friction:    def.Friction,
		Restitution: def.Restitution,
		Color:       def.Color,
	}
	switch def.Kind {
	case world.ShapeBox:
		wire.HalfExtents = [3]float64{def.HalfExtents.X(), def.HalfExtents.Y(), def.HalfExtents.Z()}
	case world.ShapeCylinder:
		wire.Radius = def.Radius
		wire.Height = def.Height
	}
	return wire
}
