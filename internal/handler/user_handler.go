package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/service"
	"github.com/teamhive/hive-go-api/internal/utils"
)

// UserHandler serves user profiles and presence updates.
type UserHandler struct {
	users  service.UserService
	logger zerolog.Logger
}

// NewUserHandler creates a user handler instance.
func NewUserHandler(users service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register binds user routes under the provided router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/me", h.me)
	router.Put("/me/status", h.updateStatus)
	router.Get("/:id", h.get)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	response, err := h.users.List(c.UserContext())
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	response, err := h.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "profile retrieved", response)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	response, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "user retrieved", response)
}

func (h *UserHandler) updateStatus(c *fiber.Ctx) error {
	var req dto.UserStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.users.UpdateStatus(c.UserContext(), middleware.UserID(c), req); err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "status updated", nil)
}
