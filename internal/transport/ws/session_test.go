package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"towerstack/internal/config"
	"towerstack/internal/game"
	"towerstack/internal/telemetry"
)

// testConn pairs a server-side SafeWriter with the client end of a real
// websocket connection.
type testConn struct {
	server *SafeWriter
	client *websocket.Conn
}

func newTestConn(t *testing.T) *testConn {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	serverConn := <-connCh
	t.Cleanup(func() { serverConn.Close() })

	return &testConn{server: NewSafeWriter(serverConn), client: client}
}

// readMessage reads one JSON message from the client side into a generic map.
func (c *testConn) readMessage(t *testing.T) map[string]interface{} {
	t.Helper()
	c.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.client.ReadMessage()
	require.NoError(t, err)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func newTestSession(t *testing.T) (*Session, *testConn) {
	t.Helper()
	conn := newTestConn(t)
	s := NewSession(config.Default(), conn.server, nil, telemetry.NewManager(zap.NewNop()), zap.NewNop())
	t.Cleanup(s.Close)
	return s, conn
}

func TestSessionPong(t *testing.T) {
	s, conn := newTestSession(t)

	s.Handle(&PingMessage{Type: MessageTypePing, ClientTime: 42.5})

	msg := conn.readMessage(t)
	assert.Equal(t, "pong", msg["type"])
	assert.Equal(t, 42.5, msg["client_time"])
	assert.NotZero(t, msg["server_time"])
}

func TestSessionPlaceSendsBlockPlaced(t *testing.T) {
	s, conn := newTestSession(t)

	s.Handle(&PlaceMessage{Type: MessageTypePlace})

	msg := conn.readMessage(t)
	assert.Equal(t, "block_placed", msg["type"])
	assert.Equal(t, 1.0, msg["count"])
	assert.Equal(t, 1, s.game.BlockCount())
}

func TestSessionUnknownPresetSendsError(t *testing.T) {
	s, conn := newTestSession(t)

	s.Handle(&PresetMessage{Type: MessageTypePreset, Name: "worm-cam"})

	msg := conn.readMessage(t)
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["message"], "unknown camera preset")
}

func TestSessionMoveAdjustsGhost(t *testing.T) {
	s, _ := newTestSession(t)

	s.Handle(&MoveMessage{Type: MessageTypeMove, Dir: 1})
	assert.Equal(t, config.Default().Game.MoveStep, s.game.Ghost().OffsetX)
}

func TestSessionNextBlockSwapsEmptyGhost(t *testing.T) {
	s, _ := newTestSession(t)

	s.Handle(&NextBlockMessage{
		Type: MessageTypeNextBlock,
		Block: BlockDefinition{
			Name: "drum", Kind: "cylinder",
			Radius: 0.4, Height: 1.2,
			Mass: 1, Friction: 0.5, Restitution: 0.1,
		},
	})
	assert.Equal(t, "drum", s.game.Ghost().Def.Name)
}

func TestSessionNextBlockRejectsUnknownKind(t *testing.T) {
	s, conn := newTestSession(t)

	s.Handle(&NextBlockMessage{
		Type:  MessageTypeNextBlock,
		Block: BlockDefinition{Name: "blob", Kind: "sphere"},
	})

	msg := conn.readMessage(t)
	assert.Equal(t, "error", msg["type"])
}

func TestSessionResetRebuildsGame(t *testing.T) {
	s, conn := newTestSession(t)

	s.Handle(&PlaceMessage{Type: MessageTypePlace})
	conn.readMessage(t) // block_placed
	require.Equal(t, 1, s.game.BlockCount())

	s.Handle(&ResetMessage{Type: MessageTypeReset})
	assert.Equal(t, 0, s.game.BlockCount())
	assert.Equal(t, game.StatePlaying, s.game.State())
}

func TestServerWelcomeAndState(t *testing.T) {
	server := NewServer(config.Default(), nil, telemetry.NewManager(zap.NewNop()), zap.NewNop())
	mux := http.NewServeMux()
	server.Register(mux)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome map[string]interface{}
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &welcome))
	assert.Equal(t, "welcome", welcome["type"])

	// The tick loop broadcasts full state at 20 Hz.
	_, data, err = client.ReadMessage()
	require.NoError(t, err)
	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, "state", state["type"])
	assert.Equal(t, "playing", state["game_state"])
	assert.NotNil(t, state["ghost"])
}
