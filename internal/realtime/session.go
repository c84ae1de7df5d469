package realtime

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/observability"
)

const sessionSendBufferSize = 32

type outboundFrame struct {
	event string
	data  []byte
}

// Session is one authenticated websocket connection. The identity is
// fixed at upgrade time; handlers never trust client-supplied user ids.
type Session struct {
	conn   *websocket.Conn
	userID string
	name   string
	send   chan outboundFrame
	closed chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

// NewSession wraps an upgraded connection with its authenticated identity.
func NewSession(conn *websocket.Conn, userID, name string, logger zerolog.Logger) *Session {
	return &Session{
		conn:   conn,
		userID: userID,
		name:   name,
		send:   make(chan outboundFrame, sessionSendBufferSize),
		closed: make(chan struct{}),
		log:    logger.With().Str("component", "realtime_session").Str("user_id", userID).Logger(),
	}
}

// UserID returns the authenticated user identity.
func (s *Session) UserID() string { return s.userID }

// UserName returns the authenticated display name.
func (s *Session) UserName() string { return s.name }

func (s *Session) enqueue(event string, data []byte) {
	select {
	case <-s.closed:
	case s.send <- outboundFrame{event: event, data: data}:
	default:
		observability.RealtimeDroppedFrames().WithLabelValues(event).Inc()
		s.log.Warn().Str("event", event).Msg("dropping frame for slow client")
	}
}

func (s *Session) writer() {
	defer s.close()

	for {
		select {
		case frame, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame.data); err != nil {
				s.log.Debug().Err(err).Msg("write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := s.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				s.log.Debug().Err(err).Msg("ping failed")
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.closed)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}
