package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"towerstack/internal/config"
	"towerstack/internal/highscore"
	"towerstack/internal/telemetry"
)

// Server upgrades connections and gives each one its own game session.
type Server struct {
	cfg      *config.Config
	upgrader websocket.Upgrader
	scores   *highscore.Store
	metrics  *telemetry.Manager
	log      *zap.Logger
}

func NewServer(cfg *config.Config, scores *highscore.Store, metrics *telemetry.Manager, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		scores:  scores,
		metrics: metrics,
		log:     log,
	}
}

// HandleWS runs one connection: welcome, tick loop, read loop. It returns
// when the client disconnects; the session's bodies are released before the
// connection closes.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	safeConn := NewSafeWriter(conn)
	defer safeConn.Close()

	log := s.log.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Info("connection established")

	session := NewSession(s.cfg, safeConn, s.scores, s.metrics, log)

	welcome := &WelcomeMessage{
		Type:    MessageTypeWelcome,
		Message: "connected to towerstack",
	}
	if s.scores != nil {
		welcome.BestHeight = s.scores.Best()
	}
	if err := safeConn.WriteJSON(welcome); err != nil {
		log.Warn("send welcome", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go session.Run(ctx)

	for {
		_, data, err := safeConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read", zap.Error(err))
			}
			break
		}

		msg, err := ParseMessage(data)
		if err != nil {
			// Malformed or unknown input must never take the session down.
			log.Debug("message dropped", zap.Error(err))
			continue
		}
		session.Handle(msg)
	}

	cancel()
	session.Close()
	log.Info("connection closed")
}

// Register mounts the websocket endpoint on a mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleWS)
}
