package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/middleware"
	"github.com/teamhive/hive-go-api/internal/service"
	"github.com/teamhive/hive-go-api/internal/utils"
)

// DrawingHandler serves drawing CRUD and snapshot persistence.
type DrawingHandler struct {
	drawings service.DrawingService
	logger   zerolog.Logger
}

// NewDrawingHandler creates a drawing handler instance.
func NewDrawingHandler(drawings service.DrawingService, logger zerolog.Logger) *DrawingHandler {
	return &DrawingHandler{
		drawings: drawings,
		logger:   logger.With().Str("component", "drawing_handler").Logger(),
	}
}

// Register binds drawing routes under the provided router group.
func (h *DrawingHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.save)
	router.Delete("/:id", h.delete)
}

func (h *DrawingHandler) create(c *fiber.Ctx) error {
	var req dto.DrawingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.drawings.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "drawing created", response)
}

func (h *DrawingHandler) list(c *fiber.Ctx) error {
	response, err := h.drawings.List(c.UserContext())
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "drawings retrieved", response)
}

func (h *DrawingHandler) get(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.drawings.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "drawing retrieved", response)
}

func (h *DrawingHandler) save(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var req dto.DrawingSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.drawings.Save(c.UserContext(), id, middleware.UserID(c), req)
	if err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "drawing saved", response)
}

func (h *DrawingHandler) delete(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.drawings.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return utils.SendAppError(c, err)
	}
	return utils.SendSuccess(c, "drawing deleted", nil)
}
