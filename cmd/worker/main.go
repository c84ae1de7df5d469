package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/config"
	"github.com/teamhive/hive-go-api/internal/database"
	"github.com/teamhive/hive-go-api/internal/repository"
	"github.com/teamhive/hive-go-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	srv, err := worker.New(cfg, repository.NewUserRepository(db), repository.NewNotificationRepository(db), logger)
	if err != nil {
		log.Fatalf("failed to build worker: %v", err)
	}

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("worker terminated: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	srv.Shutdown()
}
