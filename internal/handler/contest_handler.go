package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/internal/utils"
)

// ContestHandler manages contest lifecycle and read endpoints.
type ContestHandler struct {
	contests     service.ContestService
	participants service.ParticipantService
	logger       zerolog.Logger
}

// NewContestHandler builds a contest handler instance.
func NewContestHandler(contests service.ContestService, participants service.ParticipantService, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		contests:     contests,
		participants: participants,
		logger:       logger.With().Str("component", "contest_handler").Logger(),
	}
}

// RegisterTeacher attaches the teacher-token routes. The contests prefix is
// shared with the participant surface, so the auth guard is applied per
// route rather than on the group.
func (h *ContestHandler) RegisterTeacher(classrooms, contests fiber.Router, guard fiber.Handler) {
	classrooms.Get("/:id/contests", h.listByClassroom)
	classrooms.Post("/:id/contests", h.create)
	contests.Get("/:id", guard, h.teacherSummary)
	contests.Patch("/:id/status", guard, h.setStatus)
	contests.Delete("/:id", guard, h.delete)
}

// RegisterPublic attaches the participant-facing routes.
func (h *ContestHandler) RegisterPublic(router fiber.Router, limit fiber.Handler) {
	router.Post("/join", limit, h.join)
	router.Get("/:id/view", limit, h.participantSummary)
}

func (h *ContestHandler) listByClassroom(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	contests, err := h.contests.ListByClassroom(c.Context(), teacherIDFromContext(c), classroomID)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contests retrieved", contests)
}

func (h *ContestHandler) create(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	var payload dto.ContestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
	}

	contest, err := h.contests.Create(c.Context(), teacherIDFromContext(c), classroomID, payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contest created", contest)
}

func (h *ContestHandler) teacherSummary(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	summary, err := h.contests.TeacherSummary(c.Context(), teacherIDFromContext(c), contestID)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest retrieved", summary)
}

func (h *ContestHandler) setStatus(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	var payload dto.ContestStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
	}

	contest, err := h.contests.SetStatus(c.Context(), teacherIDFromContext(c), contestID, payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest status updated", contest)
}

func (h *ContestHandler) delete(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	if err := h.contests.Delete(c.Context(), teacherIDFromContext(c), contestID); err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest deleted", nil)
}

func (h *ContestHandler) join(c *fiber.Ctx) error {
	var payload dto.JoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
	}

	joined, err := h.participants.Join(c.Context(), payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "joined contest", joined)
}

func (h *ContestHandler) participantSummary(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	summary, err := h.contests.ParticipantSummary(c.Context(), sessionIDFromRequest(c), contestID)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest retrieved", summary)
}
