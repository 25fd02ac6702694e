package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/internal/utils"
)

// VoteHandler manages the ballot endpoint.
type VoteHandler struct {
	service service.VoteService
	logger  zerolog.Logger
}

// NewVoteHandler builds a vote handler instance.
func NewVoteHandler(service service.VoteService, logger zerolog.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		logger:  logger.With().Str("component", "vote_handler").Logger(),
	}
}

// RegisterPublic attaches the participant vote route.
func (h *VoteHandler) RegisterPublic(contests fiber.Router, limit fiber.Handler) {
	contests.Post("/:id/votes", limit, h.vote)
}

func (h *VoteHandler) vote(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	var payload dto.VoteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
	}

	vote, err := h.service.Vote(c.Context(), sessionIDFromRequest(c), contestID, payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "vote recorded", vote)
}
