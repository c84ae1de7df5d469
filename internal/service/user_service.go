package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/repository"
)

// UserService serves user profiles and presence transitions.
type UserService interface {
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	UpdateStatus(ctx context.Context, actorID string, req dto.UserStatusUpdateRequest) error
	HandleConnect(ctx context.Context, userID string)
	HandleDisconnect(ctx context.Context, sess *realtime.Session)
	SweepStale(ctx context.Context, awayAfter time.Duration) (int64, error)
}

type userService struct {
	users     repository.UserRepository
	registry  *realtime.Registry
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, registry *realtime.Registry, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		registry:  registry,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id string) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(*user), nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) UpdateStatus(ctx context.Context, actorID string, req dto.UserStatusUpdateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return apperrors.Validation(err.Error())
	}
	return s.users.UpdateStatus(ctx, actorID, req.Status)
}

// HandleConnect flips the user online when their first session arrives.
func (s *userService) HandleConnect(ctx context.Context, userID string) {
	if err := s.users.UpdateStatus(ctx, userID, models.StatusOnline); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to mark user online")
	}
}

// HandleDisconnect flips the user offline once their last session is
// gone. Other devices of the same user keep them online.
func (s *userService) HandleDisconnect(ctx context.Context, sess *realtime.Session) {
	if len(s.registry.Sessions(sess.UserID())) > 0 {
		return
	}
	if err := s.users.UpdateStatus(ctx, sess.UserID(), models.StatusOffline); err != nil {
		s.logger.Warn().Err(err).Str("user_id", sess.UserID()).Msg("failed to mark user offline")
	}
}

// SweepStale demotes users who look online but have been inactive past
// the threshold. Run from the background worker.
func (s *userService) SweepStale(ctx context.Context, awayAfter time.Duration) (int64, error) {
	return s.users.MarkStaleAway(ctx, time.Now().Add(-awayAfter))
}
