// Package worker runs the asynq server that executes maintenance jobs:
// notification retention and presence sweeps.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/config"
	"github.com/teamhive/hive-go-api/internal/repository"
	"github.com/teamhive/hive-go-api/internal/tasks"
)

// Server wraps the asynq server and scheduler lifecycle.
type Server struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	cfg       config.Config
	users     repository.UserRepository
	notifs    repository.NotificationRepository
	log       zerolog.Logger
}

// New constructs the worker over the same redis instance the API uses.
func New(cfg config.Config, users repository.UserRepository, notifs repository.NotificationRepository, logger zerolog.Logger) (*Server, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	log := logger.With().Str("component", "worker").Logger()

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task_type", task.Type()).Msg("task failed")
		}),
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@every 1h", tasks.NewNotificationPurgeTask()); err != nil {
		return nil, err
	}
	if _, err := scheduler.Register("@every 1m", tasks.NewPresenceSweepTask()); err != nil {
		return nil, err
	}

	return &Server{
		server:    server,
		scheduler: scheduler,
		cfg:       cfg,
		users:     users,
		notifs:    notifs,
		log:       log,
	}, nil
}

// Run blocks until the server stops.
func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationPurge, s.handleNotificationPurge)
	mux.HandleFunc(tasks.TypePresenceSweep, s.handlePresenceSweep)

	if err := s.scheduler.Start(); err != nil {
		return err
	}

	s.log.Info().Msg("worker starting")
	if err := s.server.Run(mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the scheduler and drains in-flight tasks.
func (s *Server) Shutdown() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
	s.log.Info().Msg("worker stopped")
}

func (s *Server) handleNotificationPurge(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-s.cfg.NotificationRetention)
	purged, err := s.notifs.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("purged read notifications")
	}
	return nil
}

func (s *Server) handlePresenceSweep(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-s.cfg.PresenceAwayAfter)
	swept, err := s.users.MarkStaleAway(ctx, cutoff)
	if err != nil {
		return err
	}
	if swept > 0 {
		s.log.Info().Int64("swept", swept).Msg("marked stale users away")
	}
	return nil
}
