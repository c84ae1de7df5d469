package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/service"
	"github.com/teamhive/hive-go-api/internal/utils"
)

// GroupHandler serves group CRUD, membership and message history.
type GroupHandler struct {
	groups service.GroupService
	chat   service.ChatService
	logger zerolog.Logger
}

// NewGroupHandler creates a group handler instance.
func NewGroupHandler(groups service.GroupService, chat service.ChatService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		chat:   chat,
		logger: logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register binds group routes under the provided router group.
func (h *GroupHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/members", h.addMembers)
	router.Delete("/:id/members/:userId", h.removeMember)
	router.Get("/:id/messages", h.messages)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var req dto.GroupCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.groups.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", response)
}

func (h *GroupHandler) list(c *fiber.Ctx) error {
	response, err := h.groups.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "groups retrieved", response)
}

func (h *GroupHandler) get(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.groups.Get(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "group retrieved", response)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var req dto.GroupUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.groups.Update(c.UserContext(), id, middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "group updated", response)
}

func (h *GroupHandler) delete(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.groups.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "group deleted", nil)
}

func (h *GroupHandler) addMembers(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var req dto.GroupAddMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.groups.AddMembers(c.UserContext(), id, middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "members added", response)
}

func (h *GroupHandler) removeMember(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.groups.RemoveMember(c.UserContext(), id, middleware.UserID(c), c.Params("userId"))
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "member removed", response)
}

func (h *GroupHandler) messages(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	query := dto.MessageHistoryQuery{}
	if before := c.Query("before"); before != "" {
		parsed, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid before timestamp")
		}
		query.Before = &parsed
	}
	if limitRaw := c.Query("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
		}
		query.Limit = limit
	}

	response, err := h.chat.History(c.UserContext(), middleware.UserID(c), id, query)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "messages retrieved", response)
}
