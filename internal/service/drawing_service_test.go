package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
)

type drawingFixture struct {
	service  DrawingService
	drawings *stubDrawingRepo
	groups   *stubGroupRepo
	users    *stubUserRepo
	emitter  *stubEmitter
	notifier *stubNotifier
	registry *realtime.Registry
}

func newDrawingFixture(t *testing.T) *drawingFixture {
	t.Helper()

	f := &drawingFixture{
		drawings: &stubDrawingRepo{},
		groups:   &stubGroupRepo{},
		users:    &stubUserRepo{},
		emitter:  &stubEmitter{},
		notifier: &stubNotifier{},
		registry: realtime.NewRegistry(zerolog.Nop()),
	}
	f.service = NewDrawingService(
		f.drawings, f.groups, f.users, f.emitter, f.registry, f.notifier,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return f
}

func (f *drawingFixture) seedDrawing(creatorID string) models.Drawing {
	drawing := models.Drawing{Title: "whiteboard", CreatorID: creatorID, Participants: []string{creatorID}}
	_ = f.drawings.Create(context.Background(), &drawing)
	_ = f.users.Create(context.Background(), &models.User{ID: creatorID, Name: "user-" + creatorID})
	return drawing
}

func TestJoinDrawingPersistsParticipantAndBroadcastsRoster(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")
	require.NoError(t, f.users.Create(context.Background(), &models.User{ID: "u2", Name: "Ben"}))

	err := f.service.JoinDrawing(context.Background(), chatSession("u2", "Ben"), dto.JoinDrawingPayload{
		DrawingID: drawing.ID,
	})
	require.NoError(t, err)

	stored, findErr := f.drawings.FindByID(context.Background(), drawing.ID)
	require.NoError(t, findErr)
	require.True(t, stored.HasParticipant("u2"), "participation survives reconnects")

	rosters := f.emitter.events(realtime.EventDrawingParticipants)
	require.Len(t, rosters, 1)
	event, ok := rosters[0].Payload.(dto.DrawingParticipantsEvent)
	require.True(t, ok)
	require.Len(t, event.Participants, 2)
	require.Equal(t, "Ben", event.Participants[1].Name, "roster is enriched with display names")
}

func TestJoinDrawingIsIdempotent(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")

	sess := chatSession("u1", "Ada")
	require.NoError(t, f.service.JoinDrawing(context.Background(), sess, dto.JoinDrawingPayload{DrawingID: drawing.ID}))
	require.NoError(t, f.service.JoinDrawing(context.Background(), sess, dto.JoinDrawingPayload{DrawingID: drawing.ID}))

	stored, err := f.drawings.FindByID(context.Background(), drawing.ID)
	require.NoError(t, err)
	require.Len(t, []string(stored.Participants), 1)
}

func TestDrawingActionRequiresParticipation(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")

	err := f.service.DrawingAction(context.Background(), chatSession("u2", "Ben"), dto.DrawingActionPayload{
		DrawingID: drawing.ID,
		Action:    json.RawMessage(`{"tool":"pen"}`),
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.Empty(t, f.emitter.events(realtime.EventDrawingAction))
}

func TestDrawingActionRelaysToOthersOnly(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")

	err := f.service.DrawingAction(context.Background(), chatSession("u1", "Ada"), dto.DrawingActionPayload{
		DrawingID: drawing.ID,
		Action:    json.RawMessage(`{"tool":"pen","points":[[0,0],[4,4]]}`),
	})
	require.NoError(t, err)

	relays := f.emitter.events(realtime.EventDrawingAction)
	require.Len(t, relays, 1)
	require.Equal(t, realtime.DrawingRoom(drawing.ID)+"!sender", relays[0].Room)

	event, ok := relays[0].Payload.(dto.DrawingActionEvent)
	require.True(t, ok)
	require.Equal(t, "u1", event.UserID)
	require.Equal(t, "Ada", event.UserName)
	require.JSONEq(t, `{"tool":"pen","points":[[0,0],[4,4]]}`, string(event.Action), "stroke is relayed verbatim")
}

func TestSaveDrawingPersistsSnapshot(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")

	err := f.service.SaveDrawing(context.Background(), chatSession("u1", "Ada"), dto.SaveDrawingPayload{
		DrawingID:  drawing.ID,
		CanvasData: `{"shapes":[]}`,
	})
	require.NoError(t, err)

	stored, findErr := f.drawings.FindByID(context.Background(), drawing.ID)
	require.NoError(t, findErr)
	require.NotNil(t, stored.CanvasData)
	require.Equal(t, `{"shapes":[]}`, *stored.CanvasData)

	require.Empty(t, f.emitter.frames, "drawings without a group announce nothing")
}

func TestSaveDrawingIgnoresEmptySnapshot(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")
	sess := chatSession("u1", "Ada")

	require.NoError(t, f.service.SaveDrawing(context.Background(), sess, dto.SaveDrawingPayload{
		DrawingID: drawing.ID, CanvasData: `{"shapes":["circle"]}`,
	}))
	require.NoError(t, f.service.SaveDrawing(context.Background(), sess, dto.SaveDrawingPayload{
		DrawingID: drawing.ID,
	}))

	stored, err := f.drawings.FindByID(context.Background(), drawing.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CanvasData)
	require.Equal(t, `{"shapes":["circle"]}`, *stored.CanvasData, "empty payload must not wipe the snapshot")
}

func TestClearDrawingWipesTheCanvasAndInstructsOthers(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")
	sess := chatSession("u1", "Ada")

	require.NoError(t, f.service.SaveDrawing(context.Background(), sess, dto.SaveDrawingPayload{
		DrawingID: drawing.ID, CanvasData: `{"shapes":["circle"]}`,
	}))
	require.NoError(t, f.service.ClearDrawing(context.Background(), sess, dto.ClearDrawingPayload{
		DrawingID: drawing.ID,
	}))

	stored, err := f.drawings.FindByID(context.Background(), drawing.ID)
	require.NoError(t, err)
	require.Nil(t, stored.CanvasData)

	clears := f.emitter.events(realtime.EventClearDrawing)
	require.Len(t, clears, 1)
	require.Equal(t, realtime.DrawingRoom(drawing.ID)+"!sender", clears[0].Room)
	event, ok := clears[0].Payload.(dto.ClearDrawingEvent)
	require.True(t, ok)
	require.Equal(t, "u1", event.ClearedBy.ID)

	require.Empty(t, f.emitter.events(realtime.EventDrawingUpdated))
	require.Empty(t, f.notifier.all(), "clears never produce notifications")
}

func TestSnapshotSaveNotifiesNonParticipantsOnly(t *testing.T) {
	f := newDrawingFixture(t)
	group := models.Group{Name: "design", Members: []models.GroupMember{
		{UserID: "u1", Role: models.RoleAdmin},
		{UserID: "u2", Role: models.RoleMember},
		{UserID: "u3", Role: models.RoleMember},
	}}
	require.NoError(t, f.groups.Create(context.Background(), &group))

	drawing := models.Drawing{Title: "mockup", CreatorID: "u1", GroupID: &group.ID, Participants: []string{"u1", "u2"}}
	require.NoError(t, f.drawings.Create(context.Background(), &drawing))

	err := f.service.SaveDrawing(context.Background(), chatSession("u1", "Ada"), dto.SaveDrawingPayload{
		DrawingID: drawing.ID, CanvasData: `{}`,
	})
	require.NoError(t, err)

	updates := f.emitter.events(realtime.EventDrawingUpdated)
	require.Len(t, updates, 1)
	require.Equal(t, realtime.GroupRoom(group.ID)+"!sender", updates[0].Room, "the owning group hears about the save, not the live canvas")

	notifications := f.notifier.all()
	require.Len(t, notifications, 1, "collaborators already have the canvas")
	require.Equal(t, "u3", notifications[0].RecipientID)
	require.Equal(t, models.NotificationDrawingUpdate, notifications[0].Type)
}

func TestRestSaveAdmitsCreatorWithoutLiveSession(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := models.Drawing{Title: "solo", CreatorID: "u1"}
	require.NoError(t, f.drawings.Create(context.Background(), &drawing))

	_, err := f.service.Save(context.Background(), drawing.ID, "u1", dto.DrawingSaveRequest{CanvasData: `{}`})
	require.NoError(t, err)

	_, err = f.service.Save(context.Background(), drawing.ID, "u2", dto.DrawingSaveRequest{CanvasData: `{}`})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDrawingDeleteIsCreatorOnly(t *testing.T) {
	f := newDrawingFixture(t)
	drawing := f.seedDrawing("u1")

	err := f.service.Delete(context.Background(), drawing.ID, "u2")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.service.Delete(context.Background(), drawing.ID, "u1"))
	_, err = f.drawings.FindByID(context.Background(), drawing.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
