package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/observability"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Emitter is the broadcast primitive handed to the collaboration services.
type Emitter interface {
	EmitToUser(userID, event string, payload interface{})
	EmitToRoom(roomKey, event string, payload interface{})
	EmitToRoomExceptSender(roomKey string, sender *Session, event string, payload interface{})
	EmitToSession(s *Session, event string, payload interface{})
}

// ChatEvents are the chat collaboration operations bound to inbound events.
type ChatEvents interface {
	JoinGroup(ctx context.Context, s *Session, p dto.JoinGroupPayload) error
	LeaveGroup(ctx context.Context, s *Session, p dto.LeaveGroupPayload) error
	SendMessage(ctx context.Context, s *Session, p dto.SendMessagePayload) error
	StartThread(ctx context.Context, s *Session, p dto.StartThreadPayload) error
	SendThreadMessage(ctx context.Context, s *Session, p dto.SendThreadMessagePayload) error
	JoinThread(ctx context.Context, s *Session, p dto.JoinThreadPayload) error
	LeaveThread(ctx context.Context, s *Session, p dto.LeaveThreadPayload) error
	MarkAsRead(ctx context.Context, s *Session, p dto.MarkAsReadPayload) error
}

// DrawingEvents are the drawing collaboration operations.
type DrawingEvents interface {
	JoinDrawing(ctx context.Context, s *Session, p dto.JoinDrawingPayload) error
	LeaveDrawing(ctx context.Context, s *Session, p dto.LeaveDrawingPayload) error
	DrawingAction(ctx context.Context, s *Session, p dto.DrawingActionPayload) error
	SaveDrawing(ctx context.Context, s *Session, p dto.SaveDrawingPayload) error
	ClearDrawing(ctx context.Context, s *Session, p dto.ClearDrawingPayload) error
}

// TableEvents are the table collaboration operations.
type TableEvents interface {
	JoinTable(ctx context.Context, s *Session, p dto.JoinTablePayload) error
	LeaveTable(ctx context.Context, s *Session, p dto.LeaveTablePayload) error
	UpdateCell(ctx context.Context, s *Session, p dto.UpdateCellPayload) error
	CellEditing(ctx context.Context, s *Session, p dto.CellEditingPayload) error
	AddColumn(ctx context.Context, s *Session, p dto.AddColumnPayload) error
	AddRow(ctx context.Context, s *Session, p dto.AddRowPayload) error
}

// NotificationEvents are the request/response notification operations.
type NotificationEvents interface {
	MarkNotificationRead(ctx context.Context, s *Session, p dto.MarkNotificationReadPayload) error
	MarkAllNotificationsRead(ctx context.Context, s *Session) error
	UnreadNotificationCount(ctx context.Context, s *Session) error
}

// Router is the single entry point per connection. It decodes inbound
// named events into typed payloads, dispatches them to the bound domain
// handlers and owns the emit primitives used to reach users and rooms.
type Router struct {
	registry      *Registry
	chat          ChatEvents
	drawing       DrawingEvents
	table         TableEvents
	notifications NotificationEvents
	onDisconnect  []func(*Session)
	log           zerolog.Logger
}

// NewRouter creates a router over the given presence registry.
func NewRouter(registry *Registry, logger zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		log:      logger.With().Str("component", "event_router").Logger(),
	}
}

// Bind attaches the domain handlers. Called once at startup, after the
// services have been constructed with this router as their emitter.
func (r *Router) Bind(chat ChatEvents, drawing DrawingEvents, table TableEvents, notifications NotificationEvents) {
	r.chat = chat
	r.drawing = drawing
	r.table = table
	r.notifications = notifications
}

// OnDisconnect registers a sweep to run when a session's read loop ends.
func (r *Router) OnDisconnect(fn func(*Session)) {
	r.onDisconnect = append(r.onDisconnect, fn)
}

// Registry exposes the presence registry backing this router.
func (r *Router) Registry() *Registry { return r.registry }

// ServeConnection runs the session until the connection drops. Events
// from one connection are handled sequentially, preserving send order.
func (r *Router) ServeConnection(conn *websocket.Conn, userID, name string, baseCtx context.Context) {
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	session := NewSession(conn, userID, name, r.log)

	// Personal channel: the raw user id is the room key, so pushes reach
	// the user on every device they are connected from.
	r.registry.Join(userID, session)
	observability.RealtimeConnections().Inc()

	go session.writer()
	r.readLoop(baseCtx, session)

	r.registry.DropSession(session)
	for _, sweep := range r.onDisconnect {
		sweep(session)
	}
	session.close()
	observability.RealtimeConnections().Dec()
}

func (r *Router) readLoop(ctx context.Context, s *Session) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			r.log.Debug().Err(err).Str("user_id", s.UserID()).Msg("read loop ended")
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			r.EmitToSession(s, EventError, dto.ErrorEvent{Message: "malformed frame"})
			continue
		}

		r.dispatch(ctx, s, frame)
	}
}

func (r *Router) dispatch(ctx context.Context, s *Session, frame inboundFrame) {
	observability.RealtimeEvents().WithLabelValues(frame.Event).Inc()

	var err error
	switch frame.Event {
	case EventJoinGroup:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.JoinGroup)
	case EventLeaveGroup:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.LeaveGroup)
	case EventSendMessage:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.SendMessage)
	case EventStartThread:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.StartThread)
	case EventSendThreadMessage:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.SendThreadMessage)
	case EventJoinThread:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.JoinThread)
	case EventLeaveThread:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.LeaveThread)
	case EventMarkAsRead:
		err = decodeAndRun(ctx, s, frame.Data, r.chat.MarkAsRead)
	case EventJoinDrawing:
		err = decodeAndRun(ctx, s, frame.Data, r.drawing.JoinDrawing)
	case EventLeaveDrawing:
		err = decodeAndRun(ctx, s, frame.Data, r.drawing.LeaveDrawing)
	case EventDrawingAction:
		err = decodeAndRun(ctx, s, frame.Data, r.drawing.DrawingAction)
	case EventSaveDrawing:
		err = decodeAndRun(ctx, s, frame.Data, r.drawing.SaveDrawing)
	case EventClearDrawing:
		err = decodeAndRun(ctx, s, frame.Data, r.drawing.ClearDrawing)
	case EventJoinTable:
		err = decodeAndRun(ctx, s, frame.Data, r.table.JoinTable)
	case EventLeaveTable:
		err = decodeAndRun(ctx, s, frame.Data, r.table.LeaveTable)
	case EventUpdateCell:
		err = decodeAndRun(ctx, s, frame.Data, r.table.UpdateCell)
	case EventCellEditing:
		err = decodeAndRun(ctx, s, frame.Data, r.table.CellEditing)
	case EventAddColumn:
		err = decodeAndRun(ctx, s, frame.Data, r.table.AddColumn)
	case EventAddRow:
		err = decodeAndRun(ctx, s, frame.Data, r.table.AddRow)
	case EventMarkNotificationRead:
		err = decodeAndRun(ctx, s, frame.Data, r.notifications.MarkNotificationRead)
	case EventMarkAllNotificationsRead:
		err = r.notifications.MarkAllNotificationsRead(ctx, s)
	case EventGetUnreadNotificationCount:
		err = r.notifications.UnreadNotificationCount(ctx, s)
	default:
		err = apperrors.Validation("unknown event " + frame.Event)
	}

	if err != nil {
		r.emitError(s, err)
	}
}

func decodeAndRun[T any](ctx context.Context, s *Session, data json.RawMessage, handler func(context.Context, *Session, T) error) error {
	var payload T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return apperrors.Validation("invalid payload")
		}
	}
	return handler(ctx, s, payload)
}

// Errors from the taxonomy surface verbatim; anything else is masked so
// internal details never reach the wire.
func (r *Router) emitError(s *Session, err error) {
	message := "internal error"
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrValidation):
		message = err.Error()
	default:
		r.log.Error().Err(err).Str("user_id", s.UserID()).Msg("event handler failed")
	}
	r.EmitToSession(s, EventError, dto.ErrorEvent{Message: message})
}

// EmitToUser pushes an event to every session on the user's personal channel.
func (r *Router) EmitToUser(userID, event string, payload interface{}) {
	r.EmitToRoom(userID, event, payload)
}

// EmitToRoom pushes an event to every session in the room.
func (r *Router) EmitToRoom(roomKey, event string, payload interface{}) {
	data, err := json.Marshal(outboundEnvelope{Event: event, Data: payload})
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound frame")
		return
	}

	for _, session := range r.registry.Sessions(roomKey) {
		session.enqueue(event, data)
	}
}

// EmitToRoomExceptSender pushes an event to the room, skipping the
// sending session (other devices of the same user still receive it).
func (r *Router) EmitToRoomExceptSender(roomKey string, sender *Session, event string, payload interface{}) {
	data, err := json.Marshal(outboundEnvelope{Event: event, Data: payload})
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound frame")
		return
	}

	for _, session := range r.registry.Sessions(roomKey) {
		if session == sender {
			continue
		}
		session.enqueue(event, data)
	}
}

// EmitToSession pushes an event to a single session.
func (r *Router) EmitToSession(s *Session, event string, payload interface{}) {
	data, err := json.Marshal(outboundEnvelope{Event: event, Data: payload})
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound frame")
		return
	}
	s.enqueue(event, data)
}
