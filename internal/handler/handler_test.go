package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/realorai/realorai-api/internal/config"
	"github.com/realorai/realorai-api/internal/handler"
	"github.com/realorai/realorai-api/internal/middleware"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
	"github.com/realorai/realorai-api/internal/router"
	"github.com/realorai/realorai-api/internal/service"
)

type blobStore struct {
	mu      sync.Mutex
	counter int
}

func (b *blobStore) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counter++
	return fmt.Sprintf("https://blobs.test/%s-%d", name, b.counter), nil
}

func (b *blobStore) Destroy(context.Context, string) error { return nil }

type promptGenerator struct{}

func (promptGenerator) GenerateImage(context.Context, string) (io.Reader, error) {
	return bytes.NewReader(pngBytes), nil
}

var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)

// newTestApp assembles the full HTTP surface over an in-memory database with
// fake blob storage and image generation.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Teacher{},
		&models.Classroom{},
		&models.Contest{},
		&models.Participant{},
		&models.Submission{},
		&models.Vote{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	contestRepo := repository.NewContestRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	cache := service.NewSummaryCache(nil, time.Minute, logger)
	allocator := service.NewJoinCodeAllocator(nil, contestRepo.JoinCodeExists, 5)

	authSvc := service.NewAuthService(teacherRepo, validate, logger)
	classroomSvc := service.NewClassroomService(classroomRepo, validate, logger)
	contestSvc := service.NewContestService(contestRepo, classroomSvc, participantRepo, submissionRepo, voteRepo, allocator, cache, validate, logger)
	participantSvc := service.NewParticipantService(participantRepo, contestRepo, validate, logger)
	submissionSvc := service.NewSubmissionService(submissionRepo, participantSvc, contestSvc, contestRepo, participantRepo, validate, &blobStore{}, promptGenerator{}, cache, logger)
	voteSvc := service.NewVoteService(voteRepo, submissionRepo, contestRepo, participantSvc, validate, cache, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "realorai-test", AppEnv: "test"}, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authSvc, logger),
		ClassroomHandler:  handler.NewClassroomHandler(classroomSvc, logger),
		ContestHandler:    handler.NewContestHandler(contestSvc, participantSvc, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionSvc, logger),
		VoteHandler:       handler.NewVoteHandler(voteSvc, logger),
		TeacherMiddleware: middleware.TeacherProtected(),
	})

	return app, db
}

// envelopeSchema pins the response contract every endpoint shares.
var envelopeSchema = jsonschema.MustCompileString("envelope.json", `{
	"type": "object",
	"required": ["success", "message"],
	"properties": {
		"success": {"type": "boolean"},
		"message": {"type": "string", "minLength": 1},
		"code": {"type": "string"},
		"data": {}
	},
	"additionalProperties": false
}`)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// do performs a request against the app and decodes the response envelope,
// validating it against the shared schema on the way.
func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var raw interface{}
	require.NoError(t, json.Unmarshal(body, &raw), "body: %s", body)
	require.NoError(t, envelopeSchema.Validate(raw), "body: %s", body)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return resp.StatusCode, env
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NotEmpty(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// multipartRequest builds an upload request. Entries whose key ends in
// "_image" become PNG file parts; everything else becomes a plain field.
func multipartRequest(t *testing.T, method, target string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if strings.HasSuffix(key, "_image") {
			part, err := writer.CreateFormFile(key, value)
			require.NoError(t, err)
			_, err = part.Write(pngBytes)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// registerTeacher creates an account over the API and returns its bearer token.
func registerTeacher(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	status, env := do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"name":     "Ms. Rivera",
		"email":    email,
		"password": "correct horse battery",
	}))
	require.Equal(t, http.StatusCreated, status)

	var auth struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &auth)
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func withSession(req *http.Request, sessionID string) *http.Request {
	req.Header.Set("X-Session-ID", sessionID)
	return req
}

// createContest drives the teacher flow up to a live contest and returns its
// id and join code.
func createContest(t *testing.T, app *fiber.App, token, contestType string) (uint, string) {
	t.Helper()

	status, env := do(t, app, authed(jsonRequest(t, http.MethodPost, "/api/v1/classrooms", fiber.Map{"name": "Period 3"}), token))
	require.Equal(t, http.StatusCreated, status)

	var classroom struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &classroom)

	status, env = do(t, app, authed(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/classrooms/%d/contests", classroom.ID), fiber.Map{
		"title":        "Real or AI?",
		"contest_type": contestType,
	}), token))
	require.Equal(t, http.StatusCreated, status)

	var contest struct {
		ID       uint   `json:"id"`
		JoinCode string `json:"join_code"`
	}
	decodeData(t, env, &contest)
	require.Regexp(t, `^[A-Z0-9]{6}$`, contest.JoinCode)
	return contest.ID, contest.JoinCode
}

// joinContest admits a participant and returns its session token.
func joinContest(t *testing.T, app *fiber.App, joinCode, nickname string) string {
	t.Helper()

	status, env := do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/contests/join", fiber.Map{
		"join_code": joinCode,
		"nickname":  nickname,
	}))
	require.Equal(t, http.StatusCreated, status)

	var joined struct {
		SessionID string `json:"session_id"`
	}
	decodeData(t, env, &joined)
	require.NotEmpty(t, joined.SessionID)
	return joined.SessionID
}

func setStatus(t *testing.T, app *fiber.App, token string, contestID uint, status string) {
	t.Helper()

	code, _ := do(t, app, authed(jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/contests/%d/status", contestID), fiber.Map{
		"status": status,
	}), token))
	require.Equal(t, http.StatusOK, code)
}
