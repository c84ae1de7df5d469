package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/service"
)

// RealtimeHandler upgrades authenticated connections and hands them to
// the event router.
type RealtimeHandler struct {
	router *realtime.Router
	users  service.UserService
	logger zerolog.Logger
}

// NewRealtimeHandler creates the realtime handler.
func NewRealtimeHandler(router *realtime.Router, users service.UserService, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		router: router,
		users:  users,
		logger: logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket endpoint under the provided router group.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		ctx := c.UserContext()
		if ctx == nil {
			ctx = context.Background()
		}
		c.Locals("request_ctx", middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c)))
		return c.Next()
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}
	name, _ := conn.Locals(middleware.LocalUserName).(string)
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	h.logger.Info().Str("user_id", userID).Msg("realtime session connected")
	h.users.HandleConnect(baseCtx, userID)

	h.router.ServeConnection(conn, userID, name, baseCtx)

	h.logger.Info().Str("user_id", userID).Msg("realtime session disconnected")
}
