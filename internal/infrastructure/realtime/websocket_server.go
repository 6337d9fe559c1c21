package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"shipshape/internal/core/ports"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin allow-list belongs to the deployment proxy
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Options carries the connection-level tunables.
type Options struct {
	PingInterval      time.Duration
	PongTimeout       time.Duration
	WriteTimeout      time.Duration
	SendBufferSize    int
	MaxMessageBytes   int64
	MessagesPerSecond float64
	MessageBurst      int
}

// Metrics is the subset of collector methods the server reports into.
type Metrics interface {
	RealtimeConnectionOpened()
	RealtimeConnectionClosed()
	RealtimeEventBroadcast(delivered int)
}

// clientMessage is what subscribers send: subscribe/unsubscribe to a
// survey's event group.
type clientMessage struct {
	Type     string `json:"type"`
	SurveyID string `json:"survey_id"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	Message string `json:"message,omitempty"`
}

// WebSocketServer upgrades connections, authenticates them, and runs one
// reader/writer goroutine pair per session.
type WebSocketServer struct {
	hub     *Hub
	tokens  ports.TokenService
	opts    Options
	metrics Metrics
	logger  *zap.SugaredLogger
}

func NewWebSocketServer(hub *Hub, tokens ports.TokenService, opts Options, metrics Metrics, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		hub:     hub,
		tokens:  tokens,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(uuid.New().String(), claims.UserID, conn, s.opts.SendBufferSize)
	s.logger.Infow("realtime client connected", "session_id", session.id, "user_id", session.userID)
	if s.metrics != nil {
		s.metrics.RealtimeConnectionOpened()
	}

	go s.writeLoop(session)
	s.readLoop(session)

	// Membership must be gone before the connection is torn down so no
	// later broadcast sees a dangling session.
	s.hub.Detach(session)
	session.close()
	if s.metrics != nil {
		s.metrics.RealtimeConnectionClosed()
	}
	s.logger.Infow("realtime client disconnected", "session_id", session.id, "user_id", session.userID)
}

func (s *WebSocketServer) readLoop(session *Session) {
	conn := session.conn
	conn.SetReadLimit(s.opts.MaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
		return nil
	})

	limiter := rate.NewLimiter(rate.Limit(s.opts.MessagesPerSecond), s.opts.MessageBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("read error", "session_id", session.id, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))

		if !limiter.Allow() {
			s.sendControl(session, serverMessage{Type: "error", Message: "message rate exceeded"})
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendControl(session, serverMessage{Type: "error", Message: "malformed message"})
			continue
		}
		s.handleMessage(session, msg)
	}
}

func (s *WebSocketServer) handleMessage(session *Session, msg clientMessage) {
	if msg.Type == "" {
		s.sendControl(session, serverMessage{Type: "error", Message: "message type is required"})
		return
	}

	switch msg.Type {
	case "subscribe":
		if msg.SurveyID == "" {
			s.sendControl(session, serverMessage{Type: "error", Message: "survey_id is required"})
			return
		}
		group := "survey:" + msg.SurveyID
		s.hub.Join(session, group)
		s.logger.Debugw("session subscribed", "session_id", session.id, "group", group)
		s.sendControl(session, serverMessage{Type: "subscribed", Group: group})

	case "unsubscribe":
		if msg.SurveyID == "" {
			s.sendControl(session, serverMessage{Type: "error", Message: "survey_id is required"})
			return
		}
		group := "survey:" + msg.SurveyID
		s.hub.Leave(session, group)
		s.sendControl(session, serverMessage{Type: "unsubscribed", Group: group})

	default:
		s.sendControl(session, serverMessage{Type: "error", Message: "unknown message type: " + msg.Type})
	}
}

func (s *WebSocketServer) writeLoop(session *Session) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	conn := session.conn
	for {
		select {
		case data := <-session.send:
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				session.close()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				session.close()
				return
			}

		case <-session.done:
			return
		}
	}
}

func (s *WebSocketServer) sendControl(session *Session, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	session.enqueue(data)
}
