package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/config"
	"github.com/realorai/realorai-api/internal/database"
	"github.com/realorai/realorai-api/internal/handler"
	"github.com/realorai/realorai-api/internal/middleware"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
	"github.com/realorai/realorai-api/internal/router"
	"github.com/realorai/realorai-api/internal/service"
	"github.com/realorai/realorai-api/pkg/ai"
	cloud "github.com/realorai/realorai-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Teacher{}, &models.Classroom{}, &models.Contest{}, &models.Participant{}, &models.Submission{}, &models.Vote{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var generator service.AIImageGenerator
	if cfg.OpenAIAPIKey != "" {
		openaiGen, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Logger: logger})
		if err != nil {
			log.Fatalf("failed to create openai generator: %v", err)
		}
		generator = openaiGen
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	contestRepo := repository.NewContestRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	cache := service.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, logger)
	allocator := service.NewJoinCodeAllocator(nil, contestRepo.JoinCodeExists, cfg.JoinCodeMaxAttempts)

	authService := service.NewAuthService(teacherRepo, validate, logger)
	classroomService := service.NewClassroomService(classroomRepo, validate, logger)
	contestService := service.NewContestService(contestRepo, classroomService, participantRepo, submissionRepo, voteRepo, allocator, cache, validate, logger)
	participantService := service.NewParticipantService(participantRepo, contestRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, participantService, contestService, contestRepo, participantRepo, validate, uploader, generator, cache, logger)
	voteService := service.NewVoteService(voteRepo, submissionRepo, contestRepo, participantService, validate, cache, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	classroomHandler := handler.NewClassroomHandler(classroomService, logger)
	contestHandler := handler.NewContestHandler(contestService, participantService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	voteHandler := handler.NewVoteHandler(voteService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		ClassroomHandler:  classroomHandler,
		ContestHandler:    contestHandler,
		SubmissionHandler: submissionHandler,
		VoteHandler:       voteHandler,
		TeacherMiddleware: middleware.TeacherProtected(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
