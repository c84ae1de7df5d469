package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/repository"
)

const defaultHistoryLimit = 50

// notificationDispatcher fans persisted notifications out to personal
// channels. Implemented by NotificationService.
type notificationDispatcher interface {
	Dispatch(ctx context.Context, notifications []models.Notification)
}

// ChatService implements the chat room events plus REST message history.
type ChatService interface {
	realtime.ChatEvents
	History(ctx context.Context, actorID string, groupID uint, query dto.MessageHistoryQuery) ([]dto.MessageResponse, error)
}

type chatService struct {
	messages  repository.MessageRepository
	threads   repository.ThreadRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	emitter   realtime.Emitter
	registry  *realtime.Registry
	notifier  notificationDispatcher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewChatService constructs the chat service.
func NewChatService(
	messages repository.MessageRepository,
	threads repository.ThreadRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	emitter realtime.Emitter,
	registry *realtime.Registry,
	notifier notificationDispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) ChatService {
	return &chatService{
		messages:  messages,
		threads:   threads,
		groups:    groups,
		users:     users,
		emitter:   emitter,
		registry:  registry,
		notifier:  notifier,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "chat_service").Logger(),
		tracer:    otel.Tracer("github.com/teamhive/hive-go-api/internal/service/chat"),
	}
}

// JoinGroup subscribes the session to the group room and refreshes the
// full member list for everyone in the room.
func (s *chatService) JoinGroup(ctx context.Context, sess *realtime.Session, payload dto.JoinGroupPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	group, err := s.memberGroup(ctx, payload.GroupID, sess.UserID())
	if err != nil {
		return err
	}

	room := realtime.GroupRoom(group.ID)
	s.registry.Join(room, sess)

	if err := s.users.UpdateStatus(ctx, sess.UserID(), models.StatusOnline); err != nil {
		s.logger.Warn().Err(err).Str("user_id", sess.UserID()).Msg("failed to refresh presence on join")
	}

	s.emitter.EmitToRoomExceptSender(room, sess, realtime.EventUserJoined, dto.UserEvent{
		User: dto.UserRef{ID: sess.UserID(), Name: sess.UserName()},
	})

	users, err := s.memberLookup(ctx, *group)
	if err != nil {
		return err
	}

	s.emitter.EmitToRoom(room, realtime.EventGroupUsers, groupUsersEvent(*group, users))
	return nil
}

// LeaveGroup unsubscribes the session and tells the remaining members.
func (s *chatService) LeaveGroup(ctx context.Context, sess *realtime.Session, payload dto.LeaveGroupPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	room := realtime.GroupRoom(payload.GroupID)
	s.registry.Leave(room, sess)
	s.emitter.EmitToRoom(room, realtime.EventUserLeft, dto.UserEvent{
		User: dto.UserRef{ID: sess.UserID(), Name: sess.UserName()},
	})
	return nil
}

// SendMessage persists a top-level message, broadcasts it to the group
// room and notifies every other member on their personal channel.
func (s *chatService) SendMessage(ctx context.Context, sess *realtime.Session, payload dto.SendMessagePayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	group, err := s.memberGroup(ctx, payload.GroupID, sess.UserID())
	if err != nil {
		return err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return apperrors.Validation("message content empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.send_message", trace.WithAttributes(
		attribute.Int64("chat.group_id", int64(group.ID)),
		attribute.String("chat.sender_id", sess.UserID()),
	))
	defer span.End()

	message := models.Message{
		GroupID:     group.ID,
		SenderID:    sess.UserID(),
		Content:     clean,
		Attachments: payload.Attachments,
		// The sender has read their own message by definition.
		ReadBy: []models.ReadReceipt{{UserID: sess.UserID(), ReadAt: time.Now()}},
	}
	if err := s.messages.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return err
	}

	sender := dto.UserRef{ID: sess.UserID(), Name: sess.UserName()}
	s.emitter.EmitToRoom(realtime.GroupRoom(group.ID), realtime.EventNewMessage, dto.NewMessageResponse(message, sender))

	s.notifier.Dispatch(spanCtx, s.messageNotifications(spanCtx, *group, message, sess.UserName()))
	return nil
}

// StartThread creates (or reuses) the thread anchored to a message and
// posts the first reply into it. Concurrent starters race on the unique
// parent index; the loser reuses the winner's thread.
func (s *chatService) StartThread(ctx context.Context, sess *realtime.Session, payload dto.StartThreadPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	parent, err := s.messages.FindByID(ctx, payload.MessageID)
	if err != nil {
		return err
	}
	if _, err := s.memberGroup(ctx, parent.GroupID, sess.UserID()); err != nil {
		return err
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.start_thread", trace.WithAttributes(
		attribute.Int64("chat.parent_message_id", int64(parent.ID)),
	))
	defer span.End()

	// The parent's author is in the conversation from the start.
	participants := []string{sess.UserID()}
	if parent.SenderID != sess.UserID() {
		participants = append(participants, parent.SenderID)
	}

	now := time.Now()
	thread, created, err := s.threads.FindOrCreate(spanCtx, &models.Thread{
		ParentMessageID: parent.ID,
		GroupID:         parent.GroupID,
		Participants:    participants,
		LastActivity:    now,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if created {
		if err := s.messages.SetThread(spanCtx, parent.ID, thread.ID); err != nil {
			span.RecordError(err)
			return err
		}
	} else if err := s.threads.AddParticipant(spanCtx, thread.ID, sess.UserID()); err != nil {
		span.RecordError(err)
		return err
	}

	return s.postThreadReply(spanCtx, sess, thread, parent, payload.Content)
}

// SendThreadMessage posts a reply into an existing thread.
func (s *chatService) SendThreadMessage(ctx context.Context, sess *realtime.Session, payload dto.SendThreadMessagePayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	thread, err := s.threads.FindByID(ctx, payload.ThreadID)
	if err != nil {
		return err
	}
	if _, err := s.memberGroup(ctx, thread.GroupID, sess.UserID()); err != nil {
		return err
	}

	if err := s.threads.AddParticipant(ctx, thread.ID, sess.UserID()); err != nil {
		return err
	}

	parent, err := s.messages.FindByID(ctx, thread.ParentMessageID)
	if err != nil {
		return err
	}

	return s.postThreadReply(ctx, sess, thread, parent, payload.Content)
}

// JoinThread subscribes the session to a thread room and records the
// user as a durable thread participant.
func (s *chatService) JoinThread(ctx context.Context, sess *realtime.Session, payload dto.JoinThreadPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	thread, err := s.threads.FindByID(ctx, payload.ThreadID)
	if err != nil {
		return err
	}
	if _, err := s.memberGroup(ctx, thread.GroupID, sess.UserID()); err != nil {
		return err
	}

	if err := s.threads.AddParticipant(ctx, thread.ID, sess.UserID()); err != nil {
		return err
	}
	s.registry.Join(realtime.ThreadRoom(thread.ID), sess)
	return nil
}

// LeaveThread unsubscribes the session. Durable participation remains;
// the user keeps receiving threadReply notifications.
func (s *chatService) LeaveThread(ctx context.Context, sess *realtime.Session, payload dto.LeaveThreadPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	s.registry.Leave(realtime.ThreadRoom(payload.ThreadID), sess)
	return nil
}

// MarkAsRead appends read receipts for the actor and announces the
// freshly-read ids to each affected group room. Messages already read by
// the actor are silently skipped.
func (s *chatService) MarkAsRead(ctx context.Context, sess *realtime.Session, payload dto.MarkAsReadPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	messages, err := s.messages.FindByIDs(ctx, payload.MessageIDs)
	if err != nil {
		return err
	}

	receipt := models.ReadReceipt{UserID: sess.UserID(), ReadAt: time.Now()}
	readByGroup := make(map[uint][]uint)
	for _, message := range messages {
		group, err := s.groups.FindByID(ctx, message.GroupID)
		if err != nil || !group.HasMember(sess.UserID()) {
			continue
		}
		appended, err := s.messages.AppendReadReceipt(ctx, message.ID, receipt)
		if err != nil {
			s.logger.Warn().Err(err).Uint("message_id", message.ID).Msg("failed to append read receipt")
			continue
		}
		if appended {
			readByGroup[message.GroupID] = append(readByGroup[message.GroupID], message.ID)
		}
	}

	reader := dto.UserRef{ID: sess.UserID(), Name: sess.UserName()}
	for groupID, ids := range readByGroup {
		s.emitter.EmitToRoom(realtime.GroupRoom(groupID), realtime.EventMessagesRead, dto.MessagesReadEvent{
			MessageIDs: ids,
			User:       reader,
		})
	}
	return nil
}

// History returns a chronological page of a group's top-level messages.
func (s *chatService) History(ctx context.Context, actorID string, groupID uint, query dto.MessageHistoryQuery) ([]dto.MessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := s.memberGroup(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	messages, err := s.messages.ListByGroup(ctx, groupID, before, limit)
	if err != nil {
		return nil, err
	}

	senders := make([]string, 0, len(messages))
	for _, message := range messages {
		senders = append(senders, message.SenderID)
	}
	users, err := s.users.FindByIDs(ctx, senders)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		sender := dto.UserRef{ID: message.SenderID, Name: byID[message.SenderID].Name}
		out = append(out, dto.NewMessageResponse(message, sender))
	}
	return out, nil
}

func (s *chatService) postThreadReply(ctx context.Context, sess *realtime.Session, thread *models.Thread, parent *models.Message, content string) error {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(content))
	if clean == "" {
		return apperrors.Validation("message content empty after sanitization")
	}

	now := time.Now()
	reply := models.Message{
		GroupID:         thread.GroupID,
		SenderID:        sess.UserID(),
		Content:         clean,
		ThreadID:        &thread.ID,
		ParentMessageID: &parent.ID,
		ReadBy:          []models.ReadReceipt{{UserID: sess.UserID(), ReadAt: now}},
	}
	if err := s.messages.Create(ctx, &reply); err != nil {
		return err
	}
	if err := s.threads.Touch(ctx, thread.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("thread_id", thread.ID).Msg("failed to touch thread activity")
	}

	sender := dto.UserRef{ID: sess.UserID(), Name: sess.UserName()}
	s.emitter.EmitToRoom(realtime.ThreadRoom(thread.ID), realtime.EventThreadMessage, dto.NewMessageResponse(reply, sender))

	s.notifier.Dispatch(ctx, s.threadNotifications(*thread, *parent, reply, sess.UserName()))
	return nil
}

// messageNotifications builds one notification per group member except
// the sender. Members mentioned by name get a mention instead of the
// plain newMessage category.
func (s *chatService) messageNotifications(ctx context.Context, group models.Group, message models.Message, senderName string) []models.Notification {
	users, err := s.memberLookup(ctx, group)
	if err != nil {
		s.logger.Warn().Err(err).Uint("group_id", group.ID).Msg("failed to resolve members for notifications")
		users = nil
	}

	notifications := make([]models.Notification, 0, len(group.Members))
	for _, member := range group.Members {
		if member.UserID == message.SenderID {
			continue
		}

		kind := models.NotificationNewMessage
		content := senderName + " sent a message in " + group.Name
		if user, ok := users[member.UserID]; ok && user.Name != "" &&
			strings.Contains(message.Content, "@"+user.Name) {
			kind = models.NotificationMention
			content = senderName + " mentioned you in " + group.Name
		}

		notifications = append(notifications, models.Notification{
			RecipientID: member.UserID,
			SenderID:    message.SenderID,
			Type:        kind,
			MessageID:   &message.ID,
			GroupID:     &message.GroupID,
			Content:     content,
		})
	}
	return notifications
}

// threadNotifications targets every thread participant plus the parent
// sender, excluding the replier.
func (s *chatService) threadNotifications(thread models.Thread, parent models.Message, reply models.Message, senderName string) []models.Notification {
	recipients := make(map[string]struct{}, len(thread.Participants)+1)
	for _, participant := range thread.Participants {
		recipients[participant] = struct{}{}
	}
	recipients[parent.SenderID] = struct{}{}
	delete(recipients, reply.SenderID)

	notifications := make([]models.Notification, 0, len(recipients))
	for recipient := range recipients {
		notifications = append(notifications, models.Notification{
			RecipientID: recipient,
			SenderID:    reply.SenderID,
			Type:        models.NotificationThreadReply,
			MessageID:   &reply.ID,
			GroupID:     &reply.GroupID,
			ThreadID:    &thread.ID,
			Content:     senderName + " replied in a thread",
		})
	}
	return notifications
}

func (s *chatService) memberGroup(ctx context.Context, groupID uint, userID string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, apperrors.Forbidden("not a member of this group")
	}
	return group, nil
}

func (s *chatService) memberLookup(ctx context.Context, group models.Group) (map[string]models.User, error) {
	ids := make([]string, 0, len(group.Members))
	for _, member := range group.Members {
		ids = append(ids, member.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func groupUsersEvent(group models.Group, users map[string]models.User) dto.GroupUsersEvent {
	views := make([]dto.GroupUserView, 0, len(group.Members))
	for _, member := range group.Members {
		view := dto.GroupUserView{ID: member.UserID, Role: member.Role, Status: models.StatusOffline}
		if user, ok := users[member.UserID]; ok {
			view.Name = user.Name
			view.Status = user.Status
		}
		views = append(views, view)
	}
	return dto.GroupUsersEvent{Users: views}
}
