package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/internal/utils"
)

func teacherIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("teacher_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// sessionIDFromRequest extracts the participant bearer secret. It travels in
// the X-Session-ID header.
func sessionIDFromRequest(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-Session-ID"))
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

// handleDomainError maps the service error taxonomy onto HTTP statuses and
// stable codes. Anything outside the taxonomy is logged and reported as an
// opaque internal error.
func handleDomainError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidPhase), errors.Is(err, service.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrValidation):
		status = fiber.StatusBadRequest
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendErrorCode(c, status, "internal_error", "internal server error")
	}

	return utils.SendErrorCode(c, status, service.ErrorCode(err), err.Error())
}
