package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/observability"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/repository"
)

const (
	unreadCacheKeyPrefix   = "hive:notifications:unread:"
	notificationListLimit  = 100
	notificationNATSPrefix = "hive.notifications."
)

// NotificationService persists notifications, answers the realtime
// notification events and serves the REST feed.
type NotificationService interface {
	realtime.NotificationEvents
	Dispatch(ctx context.Context, notifications []models.Notification)
	List(ctx context.Context, recipientID string, unreadOnly bool) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id uint, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Unread(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id uint, recipientID string) error
	DeleteRead(ctx context.Context, recipientID string) (int64, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	redis    *redis.Client
	nats     *nats.Conn
	emitter  realtime.Emitter
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewNotificationService constructs the notification service. The redis
// client and the NATS connection are both optional; without them the
// service degrades to database-only operation.
func NewNotificationService(
	repo repository.NotificationRepository,
	redisClient *redis.Client,
	natsConn *nats.Conn,
	emitter realtime.Emitter,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		repo:     repo,
		redis:    redisClient,
		nats:     natsConn,
		emitter:  emitter,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "notification_service").Logger(),
		tracer:   otel.Tracer("github.com/teamhive/hive-go-api/internal/service/notification"),
	}
}

// Dispatch persists the batch and pushes each notification to its
// recipient's personal channel. Failures are logged, never propagated:
// the triggering send must not fail because a notification could not be
// stored or delivered.
func (s *notificationService) Dispatch(ctx context.Context, notifications []models.Notification) {
	if len(notifications) == 0 {
		return
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(
		attribute.Int("notifications.count", len(notifications)),
	))
	defer span.End()

	stored, err := s.repo.CreateBatch(spanCtx, notifications)
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Int("count", len(notifications)).Msg("failed to persist notifications")
		return
	}

	for _, notification := range stored {
		observability.NotificationsCreated().WithLabelValues(notification.Type).Inc()
		s.invalidateUnread(spanCtx, notification.RecipientID)

		payload := dto.NewNotificationResponse(notification)
		s.emitter.EmitToUser(notification.RecipientID, realtime.EventNewNotification, payload)
		observability.NotificationPushes().WithLabelValues(notification.Type).Inc()

		s.mirror(notification.Type, payload)
	}
}

// MarkNotificationRead handles the realtime markNotificationRead event.
func (s *notificationService) MarkNotificationRead(ctx context.Context, sess *realtime.Session, payload dto.MarkNotificationReadPayload) error {
	if err := s.MarkRead(ctx, payload.NotificationID, sess.UserID()); err != nil {
		return err
	}
	s.emitter.EmitToUser(sess.UserID(), realtime.EventNotificationMarkedRead, dto.NotificationMarkedReadEvent{
		NotificationID: payload.NotificationID,
	})
	return nil
}

// MarkAllNotificationsRead handles the realtime markAllNotificationsRead event.
func (s *notificationService) MarkAllNotificationsRead(ctx context.Context, sess *realtime.Session) error {
	if _, err := s.MarkAllRead(ctx, sess.UserID()); err != nil {
		return err
	}
	s.emitter.EmitToUser(sess.UserID(), realtime.EventAllNotificationsRead, nil)
	return nil
}

// UnreadNotificationCount answers getUnreadNotificationCount on the
// asking session only.
func (s *notificationService) UnreadNotificationCount(ctx context.Context, sess *realtime.Session) error {
	count, err := s.Unread(ctx, sess.UserID())
	if err != nil {
		return err
	}
	s.emitter.EmitToSession(sess, realtime.EventUnreadNotificationCount, dto.UnreadCountEvent{Count: count})
	return nil
}

func (s *notificationService) List(ctx context.Context, recipientID string, unreadOnly bool) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByRecipient(ctx, recipientID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, recipientID string) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.invalidateUnread(ctx, recipientID)
	return affected, nil
}

// Unread serves the badge count from redis when possible, falling back
// to a database count that refreshes the cache.
func (s *notificationService) Unread(ctx context.Context, recipientID string) (int64, error) {
	key := unreadCacheKeyPrefix + recipientID
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Int64(); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, count, s.cacheTTL).Err(); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache unread count")
		}
	}
	return count, nil
}

func (s *notificationService) Delete(ctx context.Context, id uint, recipientID string) error {
	if err := s.repo.Delete(ctx, id, recipientID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

func (s *notificationService) DeleteRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.DeleteRead(ctx, recipientID)
}

func (s *notificationService) invalidateUnread(ctx context.Context, recipientID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, unreadCacheKeyPrefix+recipientID).Err(); err != nil {
		s.logger.Debug().Err(err).Str("recipient_id", recipientID).Msg("failed to invalidate unread cache")
	}
}

// mirror publishes the notification onto NATS so sibling consumers
// (exporters, mobile push bridges) can observe the stream.
func (s *notificationService) mirror(kind string, payload dto.NotificationResponse) {
	if s.nats == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.nats.Publish(notificationNATSPrefix+kind, data); err != nil {
		s.logger.Debug().Err(err).Msg("failed to mirror notification to nats")
	}
}
