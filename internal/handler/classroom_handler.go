package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/internal/utils"
)

// ClassroomHandler manages classroom endpoints.
type ClassroomHandler struct {
	service service.ClassroomService
	logger  zerolog.Logger
}

// NewClassroomHandler builds a classroom handler instance.
func NewClassroomHandler(service service.ClassroomService, logger zerolog.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		service: service,
		logger:  logger.With().Str("component", "classroom_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ClassroomHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.rename)
	router.Delete("/:id", h.delete)
}

func (h *ClassroomHandler) list(c *fiber.Ctx) error {
	classrooms, err := h.service.List(c.Context(), teacherIDFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classrooms retrieved", classrooms)
}

func (h *ClassroomHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassroomCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
	}

	classroom, err := h.service.Create(c.Context(), teacherIDFromContext(c), payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "classroom created", classroom)
}

func (h *ClassroomHandler) rename(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	var payload dto.ClassroomRenameRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
	}

	classroom, err := h.service.Rename(c.Context(), teacherIDFromContext(c), id, payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classroom renamed", classroom)
}

func (h *ClassroomHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	if err := h.service.Delete(c.Context(), teacherIDFromContext(c), id); err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classroom deleted", nil)
}
