package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
)

type recordingChat struct {
	joined []uint
	err    error
}

func (r *recordingChat) JoinGroup(_ context.Context, _ *Session, p dto.JoinGroupPayload) error {
	r.joined = append(r.joined, p.GroupID)
	return r.err
}
func (r *recordingChat) LeaveGroup(context.Context, *Session, dto.LeaveGroupPayload) error { return nil }
func (r *recordingChat) SendMessage(context.Context, *Session, dto.SendMessagePayload) error {
	return nil
}
func (r *recordingChat) StartThread(context.Context, *Session, dto.StartThreadPayload) error {
	return nil
}
func (r *recordingChat) SendThreadMessage(context.Context, *Session, dto.SendThreadMessagePayload) error {
	return nil
}
func (r *recordingChat) JoinThread(context.Context, *Session, dto.JoinThreadPayload) error {
	return nil
}
func (r *recordingChat) LeaveThread(context.Context, *Session, dto.LeaveThreadPayload) error {
	return nil
}
func (r *recordingChat) MarkAsRead(context.Context, *Session, dto.MarkAsReadPayload) error {
	return nil
}

func drainFrame(t *testing.T, s *Session) (string, json.RawMessage) {
	t.Helper()
	select {
	case frame := <-s.send:
		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(frame.data, &envelope))
		return envelope.Event, envelope.Data
	default:
		t.Fatal("expected a queued frame")
		return "", nil
	}
}

func TestRouterDispatchDecodesPayload(t *testing.T) {
	chat := &recordingChat{}
	router := NewRouter(NewRegistry(zerolog.Nop()), zerolog.Nop())
	router.Bind(chat, nil, nil, nil)

	sess := newTestSession("u1", "Ada")
	router.dispatch(context.Background(), sess, inboundFrame{
		Event: EventJoinGroup,
		Data:  json.RawMessage(`{"groupId":7}`),
	})

	require.Equal(t, []uint{7}, chat.joined)
}

func TestRouterDispatchUnknownEventEmitsError(t *testing.T) {
	router := NewRouter(NewRegistry(zerolog.Nop()), zerolog.Nop())
	router.Bind(&recordingChat{}, nil, nil, nil)

	sess := newTestSession("u1", "Ada")
	router.dispatch(context.Background(), sess, inboundFrame{Event: "teleport"})

	event, data := drainFrame(t, sess)
	require.Equal(t, EventError, event)

	var payload dto.ErrorEvent
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Contains(t, payload.Message, "unknown event")
}

func TestRouterDispatchMasksInternalErrors(t *testing.T) {
	chat := &recordingChat{err: errors.New("pq: connection reset")}
	router := NewRouter(NewRegistry(zerolog.Nop()), zerolog.Nop())
	router.Bind(chat, nil, nil, nil)

	sess := newTestSession("u1", "Ada")
	router.dispatch(context.Background(), sess, inboundFrame{
		Event: EventJoinGroup,
		Data:  json.RawMessage(`{"groupId":1}`),
	})

	event, data := drainFrame(t, sess)
	require.Equal(t, EventError, event)

	var payload dto.ErrorEvent
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Equal(t, "internal error", payload.Message)
}

func TestRouterDispatchSurfacesTaxonomyErrors(t *testing.T) {
	chat := &recordingChat{err: apperrors.Forbidden("not a member of this group")}
	router := NewRouter(NewRegistry(zerolog.Nop()), zerolog.Nop())
	router.Bind(chat, nil, nil, nil)

	sess := newTestSession("u1", "Ada")
	router.dispatch(context.Background(), sess, inboundFrame{
		Event: EventJoinGroup,
		Data:  json.RawMessage(`{"groupId":1}`),
	})

	event, data := drainFrame(t, sess)
	require.Equal(t, EventError, event)

	var payload dto.ErrorEvent
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Contains(t, payload.Message, "not a member")
}

func TestEmitToRoomExceptSenderSkipsOnlySender(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	router := NewRouter(registry, zerolog.Nop())

	sender := newTestSession("u1", "Ada")
	peer := newTestSession("u2", "Ben")
	registry.Join("group:1", sender)
	registry.Join("group:1", peer)

	router.EmitToRoomExceptSender("group:1", sender, EventUserLeft, dto.UserEvent{
		User: dto.UserRef{ID: "u1", Name: "Ada"},
	})

	event, _ := drainFrame(t, peer)
	require.Equal(t, EventUserLeft, event)

	select {
	case <-sender.send:
		t.Fatal("sender should not receive its own broadcast")
	default:
	}
}

func TestRoomKeyBuilders(t *testing.T) {
	require.Equal(t, "group:12", GroupRoom(12))
	require.Equal(t, "thread:3", ThreadRoom(3))
	require.Equal(t, "table:7", TableRoom(7))
	require.Equal(t, "drawing:9", DrawingRoom(9))
}
