package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/internal/utils"
)

// SubmissionHandler manages submission and teacher-upload endpoints. Image
// pairs arrive as multipart form files named "ai_image" and "real_image".
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterPublic attaches the participant submit route.
func (h *SubmissionHandler) RegisterPublic(contests fiber.Router, limit fiber.Handler) {
	contests.Post("/:id/submissions", limit, h.submit)
}

// RegisterTeacher attaches the teacher-token routes. The uploads route lives
// on the shared contests prefix, so it carries its guard itself.
func (h *SubmissionHandler) RegisterTeacher(contests, submissions fiber.Router, guard fiber.Handler) {
	contests.Post("/:id/uploads", guard, h.teacherUpload)
	submissions.Delete("/:id", h.delete)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	aiImage, err := c.FormFile("ai_image")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "ai_image file is required")
	}

	realImage, err := c.FormFile("real_image")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "real_image file is required")
	}

	submission, err := h.service.Submit(c.Context(), sessionIDFromRequest(c), contestID, aiImage, realImage)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", submission)
}

func (h *SubmissionHandler) teacherUpload(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	realImage, err := c.FormFile("real_image")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "real_image file is required")
	}

	// The AI half comes either as a file or as a generation prompt.
	aiImage, _ := c.FormFile("ai_image")
	payload := dto.TeacherUploadRequest{AIPrompt: c.FormValue("ai_prompt")}

	submission, err := h.service.TeacherUpload(c.Context(), teacherIDFromContext(c), contestID, payload, aiImage, realImage)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "image pair uploaded", submission)
}

func (h *SubmissionHandler) delete(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	if err := h.service.Delete(c.Context(), teacherIDFromContext(c), submissionID); err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission deleted", nil)
}
