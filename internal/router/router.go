package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/realorai/realorai-api/internal/config"
	"github.com/realorai/realorai-api/internal/handler"
	"github.com/realorai/realorai-api/internal/middleware"
	"github.com/realorai/realorai-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ClassroomHandler  *handler.ClassroomHandler
	ContestHandler    *handler.ContestHandler
	SubmissionHandler *handler.SubmissionHandler
	VoteHandler       *handler.VoteHandler
	TeacherMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	guard := deps.TeacherMiddleware
	if guard == nil {
		guard = middleware.TeacherProtected()
	}

	// Classrooms and submissions are teacher-only prefixes and take the
	// guard on the group. The contests prefix carries both the teacher
	// management routes and the participant surface, so its routes attach
	// their own guard or rate limit; a group-level handler on the shared
	// prefix would intercept the other surface's requests.
	classrooms := api.Group("/classrooms", guard)
	submissions := api.Group("/submissions", guard)
	contests := api.Group("/contests")
	limit := middleware.RateLimit("participant", 30, time.Minute)

	if deps.ClassroomHandler != nil {
		deps.ClassroomHandler.Register(classrooms)
	}
	if deps.ContestHandler != nil {
		deps.ContestHandler.RegisterTeacher(classrooms, contests, guard)
		deps.ContestHandler.RegisterPublic(contests, limit)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterTeacher(contests, submissions, guard)
		deps.SubmissionHandler.RegisterPublic(contests, limit)
	}
	if deps.VoteHandler != nil {
		deps.VoteHandler.RegisterPublic(contests, limit)
	}
}
