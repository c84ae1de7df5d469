package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamhive/hive-go-api/internal/config"
	"github.com/teamhive/hive-go-api/internal/handler"
	"github.com/teamhive/hive-go-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RealtimeHandler     *handler.RealtimeHandler
	GroupHandler        *handler.GroupHandler
	TableHandler        *handler.TableHandler
	DrawingHandler      *handler.DrawingHandler
	NotificationHandler *handler.NotificationHandler
	UserHandler         *handler.UserHandler
	UploadHandler       *handler.UploadHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.RealtimeHandler != nil {
		deps.RealtimeHandler.Register(app.Group("/api/realtime", jwtMiddleware))
	}
	if deps.GroupHandler != nil {
		deps.GroupHandler.Register(api.Group("/groups", jwtMiddleware))
	}
	if deps.TableHandler != nil {
		deps.TableHandler.Register(api.Group("/tables", jwtMiddleware))
	}
	if deps.DrawingHandler != nil {
		deps.DrawingHandler.Register(api.Group("/drawings", jwtMiddleware))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware))
	}
	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RateLimit("uploads", 10, time.Minute))
		deps.UploadHandler.Register(uploads)
	}
}
