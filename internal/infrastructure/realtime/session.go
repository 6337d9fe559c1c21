package realtime

import (
	"sync"

	"shipshape/internal/core/domain"

	"github.com/gorilla/websocket"
)

// Session is one realtime connection. The reader goroutine parses client
// commands; a dedicated writer goroutine drains send, so the websocket is
// only ever written from one place.
type Session struct {
	id     string
	userID domain.UserID
	conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, userID domain.UserID, conn *websocket.Conn, sendBuffer int) *Session {
	return &Session{
		id:     id,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue offers data to the writer goroutine without blocking. Returns
// false when the session's buffer is full or the session is closed.
func (s *Session) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
