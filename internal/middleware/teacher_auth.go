package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/internal/utils"
)

// TeacherProtected validates the teacher capability token and stores the
// resolved teacher id in request locals. The token is not signed; it is
// parsed syntactically and trusted like a session cookie.
func TeacherProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthenticated", "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthenticated", "invalid authorization header")
		}

		token := strings.TrimSpace(authorization[len(bearer):])
		teacherID, err := service.ParseTeacherToken(token)
		if err != nil {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthenticated", "invalid token")
		}

		c.Locals("teacher_id", teacherID)

		return c.Next()
	}
}
