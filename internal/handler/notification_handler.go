package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/service"
	"github.com/teamhive/hive-go-api/internal/utils"
)

// NotificationHandler serves the per-user notification feed.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewNotificationHandler creates a notification handler instance.
func NewNotificationHandler(notifications service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds notification routes under the provided router group.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Put("/read-all", h.markAllRead)
	router.Put("/:id/read", h.markRead)
	router.Delete("/read", h.deleteRead)
	router.Delete("/:id", h.delete)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unread")
	response, err := h.notifications.List(c.UserContext(), middleware.UserID(c), unreadOnly)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "notifications retrieved", response)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.Unread(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "unread count retrieved", fiber.Map{"count": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.notifications.MarkRead(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "notification marked read", nil)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	affected, err := h.notifications.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "notifications marked read", fiber.Map{"updated": affected})
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.notifications.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "notification deleted", nil)
}

func (h *NotificationHandler) deleteRead(c *fiber.Ctx) error {
	deleted, err := h.notifications.DeleteRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "read notifications deleted", fiber.Map{"deleted": deleted})
}
