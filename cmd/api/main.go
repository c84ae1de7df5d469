package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/config"
	"github.com/teamhive/hive-go-api/internal/database"
	"github.com/teamhive/hive-go-api/internal/handler"
	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/repository"
	"github.com/teamhive/hive-go-api/internal/router"
	"github.com/teamhive/hive-go-api/internal/service"
	cloud "github.com/teamhive/hive-go-api/pkg/cloudinary"
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
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, event mirroring disabled")
		} else {
			defer natsConn.Close()
		}
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary unavailable, uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	tableRepo := repository.NewTableRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	registry := realtime.NewRegistry(logger)
	events := realtime.NewRouter(registry, logger)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, natsConn, events, cfg.UnreadCountCacheTTL, logger)
	chatService := service.NewChatService(messageRepo, threadRepo, groupRepo, userRepo, events, registry, notificationService, validate, logger)
	drawingService := service.NewDrawingService(drawingRepo, groupRepo, userRepo, events, registry, notificationService, validate, logger)
	tableService := service.NewTableService(tableRepo, groupRepo, events, registry, notificationService, validate, logger)
	groupService := service.NewGroupService(groupRepo, userRepo, notificationService, validate, logger)
	userService := service.NewUserService(userRepo, registry, validate, logger)

	events.Bind(chatService, drawingService, tableService, notificationService)
	events.OnDisconnect(tableService.SweepSession)
	events.OnDisconnect(func(sess *realtime.Session) {
		userService.HandleDisconnect(context.Background(), sess)
	})

	deps := router.Dependencies{
		RealtimeHandler:     handler.NewRealtimeHandler(events, userService, logger),
		GroupHandler:        handler.NewGroupHandler(groupService, chatService, logger),
		TableHandler:        handler.NewTableHandler(tableService, logger),
		DrawingHandler:      handler.NewDrawingHandler(drawingService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	}
	if uploader != nil {
		uploadService := service.NewUploadService(uploader, cfg.MaxUploadBytes, logger)
		deps.UploadHandler = handler.NewUploadHandler(uploadService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
