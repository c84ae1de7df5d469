package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/repository"
)

// DrawingService implements the drawing collaboration events plus REST CRUD.
type DrawingService interface {
	realtime.DrawingEvents
	Create(ctx context.Context, creatorID string, req dto.DrawingCreateRequest) (dto.DrawingResponse, error)
	Get(ctx context.Context, id uint) (dto.DrawingResponse, error)
	List(ctx context.Context) ([]dto.DrawingResponse, error)
	Save(ctx context.Context, id uint, actorID string, req dto.DrawingSaveRequest) (dto.DrawingResponse, error)
	Delete(ctx context.Context, id uint, actorID string) error
}

type drawingService struct {
	drawings  repository.DrawingRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	emitter   realtime.Emitter
	registry  *realtime.Registry
	notifier  notificationDispatcher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewDrawingService constructs the drawing service.
func NewDrawingService(
	drawings repository.DrawingRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	emitter realtime.Emitter,
	registry *realtime.Registry,
	notifier notificationDispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) DrawingService {
	return &drawingService{
		drawings:  drawings,
		groups:    groups,
		users:     users,
		emitter:   emitter,
		registry:  registry,
		notifier:  notifier,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "drawing_service").Logger(),
	}
}

// JoinDrawing records the user as a durable collaborator, subscribes the
// session and broadcasts the refreshed roster.
func (s *drawingService) JoinDrawing(ctx context.Context, sess *realtime.Session, payload dto.JoinDrawingPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	drawing, err := s.drawings.AddParticipant(ctx, payload.DrawingID, sess.UserID())
	if err != nil {
		return err
	}

	s.registry.Join(realtime.DrawingRoom(drawing.ID), sess)
	s.broadcastParticipants(ctx, *drawing)
	return nil
}

// LeaveDrawing removes the collaborator, unsubscribes the session and
// broadcasts the refreshed roster.
func (s *drawingService) LeaveDrawing(ctx context.Context, sess *realtime.Session, payload dto.LeaveDrawingPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	drawing, err := s.drawings.RemoveParticipant(ctx, payload.DrawingID, sess.UserID())
	if err != nil {
		return err
	}

	s.registry.Leave(realtime.DrawingRoom(drawing.ID), sess)
	s.broadcastParticipants(ctx, *drawing)
	return nil
}

// DrawingAction relays a transient stroke to every other session in the
// room. Strokes are never persisted; durability comes from snapshots.
func (s *drawingService) DrawingAction(ctx context.Context, sess *realtime.Session, payload dto.DrawingActionPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	drawing, err := s.drawings.FindByID(ctx, payload.DrawingID)
	if err != nil {
		return err
	}
	if !drawing.HasParticipant(sess.UserID()) {
		return apperrors.Forbidden("join the drawing before sending actions")
	}

	s.emitter.EmitToRoomExceptSender(realtime.DrawingRoom(drawing.ID), sess, realtime.EventDrawingAction, dto.DrawingActionEvent{
		DrawingID: drawing.ID,
		Action:    payload.Action,
		UserID:    sess.UserID(),
		UserName:  sess.UserName(),
	})
	return nil
}

// SaveDrawing persists a full canvas snapshot and announces it. Empty
// snapshots are ignored; wiping goes through ClearDrawing.
func (s *drawingService) SaveDrawing(ctx context.Context, sess *realtime.Session, payload dto.SaveDrawingPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}
	if payload.CanvasData == "" {
		return nil
	}

	drawing, err := s.drawings.FindByID(ctx, payload.DrawingID)
	if err != nil {
		return err
	}
	if !drawing.HasParticipant(sess.UserID()) {
		return apperrors.Forbidden("join the drawing before saving")
	}

	canvas := payload.CanvasData
	if err := s.drawings.SaveCanvas(ctx, drawing.ID, &canvas); err != nil {
		return err
	}

	s.announceUpdate(ctx, *drawing, sess)
	return nil
}

// ClearDrawing wipes the stored canvas and tells every other session in
// the room to clear locally. Clears never produce notifications.
func (s *drawingService) ClearDrawing(ctx context.Context, sess *realtime.Session, payload dto.ClearDrawingPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	drawing, err := s.drawings.FindByID(ctx, payload.DrawingID)
	if err != nil {
		return err
	}
	if !drawing.HasParticipant(sess.UserID()) {
		return apperrors.Forbidden("join the drawing before clearing")
	}

	if err := s.drawings.SaveCanvas(ctx, drawing.ID, nil); err != nil {
		return err
	}

	s.emitter.EmitToRoomExceptSender(realtime.DrawingRoom(drawing.ID), sess, realtime.EventClearDrawing, dto.ClearDrawingEvent{
		DrawingID: drawing.ID,
		ClearedBy: dto.UserRef{ID: sess.UserID(), Name: sess.UserName()},
	})
	return nil
}

func (s *drawingService) Create(ctx context.Context, creatorID string, req dto.DrawingCreateRequest) (dto.DrawingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DrawingResponse{}, apperrors.Validation(err.Error())
	}

	drawing := models.Drawing{
		Title:        s.sanitizer.Sanitize(req.Title),
		GroupID:      req.GroupID,
		CreatorID:    creatorID,
		Participants: []string{creatorID},
		LastModified: time.Now(),
	}
	if err := s.drawings.Create(ctx, &drawing); err != nil {
		return dto.DrawingResponse{}, err
	}
	return dto.NewDrawingResponse(drawing), nil
}

func (s *drawingService) Get(ctx context.Context, id uint) (dto.DrawingResponse, error) {
	drawing, err := s.drawings.FindByID(ctx, id)
	if err != nil {
		return dto.DrawingResponse{}, err
	}
	return dto.NewDrawingResponse(*drawing), nil
}

func (s *drawingService) List(ctx context.Context) ([]dto.DrawingResponse, error) {
	drawings, err := s.drawings.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewDrawingResponseSlice(drawings), nil
}

// Save persists a snapshot posted over REST. Unlike the realtime path it
// admits the creator even when they never joined a live session.
func (s *drawingService) Save(ctx context.Context, id uint, actorID string, req dto.DrawingSaveRequest) (dto.DrawingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DrawingResponse{}, apperrors.Validation(err.Error())
	}

	drawing, err := s.drawings.FindByID(ctx, id)
	if err != nil {
		return dto.DrawingResponse{}, err
	}
	if drawing.CreatorID != actorID && !drawing.HasParticipant(actorID) {
		return dto.DrawingResponse{}, apperrors.Forbidden("not a participant of this drawing")
	}

	canvas := req.CanvasData
	if err := s.drawings.SaveCanvas(ctx, drawing.ID, &canvas); err != nil {
		return dto.DrawingResponse{}, err
	}

	stored, err := s.drawings.FindByID(ctx, id)
	if err != nil {
		return dto.DrawingResponse{}, err
	}
	return dto.NewDrawingResponse(*stored), nil
}

func (s *drawingService) Delete(ctx context.Context, id uint, actorID string) error {
	drawing, err := s.drawings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if drawing.CreatorID != actorID {
		return apperrors.Forbidden("only the creator can delete a drawing")
	}
	return s.drawings.Delete(ctx, id)
}

// broadcastParticipants sends the durable collaborator roster, enriched
// with display names, to the drawing room.
func (s *drawingService) broadcastParticipants(ctx context.Context, drawing models.Drawing) {
	users, err := s.users.FindByIDs(ctx, drawing.Participants)
	if err != nil {
		s.logger.Warn().Err(err).Uint("drawing_id", drawing.ID).Msg("failed to resolve participants")
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	participants := make([]dto.UserRef, 0, len(drawing.Participants))
	for _, id := range drawing.Participants {
		participants = append(participants, dto.UserRef{ID: id, Name: byID[id].Name})
	}

	s.emitter.EmitToRoom(realtime.DrawingRoom(drawing.ID), realtime.EventDrawingParticipants, dto.DrawingParticipantsEvent{
		Participants: participants,
	})
}

// announceUpdate tells the owning group a snapshot changed. Live
// collaborators already have the canvas, so the broadcast goes to the
// group room except the sender and notifications reach only members who
// are not drawing participants. Group-less drawings announce nothing.
func (s *drawingService) announceUpdate(ctx context.Context, drawing models.Drawing, sess *realtime.Session) {
	if drawing.GroupID == nil {
		return
	}

	s.emitter.EmitToRoomExceptSender(realtime.GroupRoom(*drawing.GroupID), sess, realtime.EventDrawingUpdated, dto.DrawingUpdatedEvent{
		DrawingID: drawing.ID,
		UpdatedBy: dto.UserRef{ID: sess.UserID(), Name: sess.UserName()},
	})

	group, err := s.groups.FindByID(ctx, *drawing.GroupID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("group_id", *drawing.GroupID).Msg("failed to load group for drawing notification")
		return
	}

	notifications := make([]models.Notification, 0, len(group.Members))
	for _, member := range group.Members {
		if member.UserID == sess.UserID() || drawing.HasParticipant(member.UserID) {
			continue
		}
		notifications = append(notifications, models.Notification{
			RecipientID: member.UserID,
			SenderID:    sess.UserID(),
			Type:        models.NotificationDrawingUpdate,
			GroupID:     drawing.GroupID,
			DrawingID:   &drawing.ID,
			Content:     sess.UserName() + " updated the drawing " + drawing.Title,
		})
	}
	s.notifier.Dispatch(ctx, notifications)
}
