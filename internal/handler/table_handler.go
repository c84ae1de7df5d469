package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/service"
	"github.com/teamhive/hive-go-api/internal/utils"
)

// TableHandler serves collaborative table CRUD.
type TableHandler struct {
	tables service.TableService
	logger zerolog.Logger
}

// NewTableHandler creates a table handler instance.
func NewTableHandler(tables service.TableService, logger zerolog.Logger) *TableHandler {
	return &TableHandler{
		tables: tables,
		logger: logger.With().Str("component", "table_handler").Logger(),
	}
}

// Register binds table routes under the provided router group.
func (h *TableHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *TableHandler) create(c *fiber.Ctx) error {
	var req dto.TableCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.tables.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "table created", response)
}

func (h *TableHandler) list(c *fiber.Ctx) error {
	response, err := h.tables.List(c.UserContext())
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "tables retrieved", response)
}

func (h *TableHandler) get(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.tables.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "table retrieved", response)
}

func (h *TableHandler) update(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var req dto.TableUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.tables.Update(c.UserContext(), id, middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "table updated", response)
}

func (h *TableHandler) delete(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.tables.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "table deleted", nil)
}
