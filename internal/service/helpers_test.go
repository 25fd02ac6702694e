package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// SQLite cannot take concurrent writers; funnel everything through one
	// connection so the concurrency tests exercise the constraints instead
	// of tripping over table locks.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Teacher{}, &models.Classroom{}, &models.Contest{}, &models.Participant{}, &models.Submission{}, &models.Vote{}))
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeStore is an in-memory ImageStore double that records uploads and
// destroys and can be told to fail either operation.
type fakeStore struct {
	mu         sync.Mutex
	uploads    []string
	destroyed  []string
	failNext   bool
	failAll    bool
	destroyErr error
	counter    int
}

func (f *fakeStore) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failNext {
		f.failNext = false
		return "", fmt.Errorf("blob store unavailable")
	}
	f.counter++
	url := fmt.Sprintf("https://blobs.test/%s-%d", name, f.counter)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStore) Destroy(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, url)
	return nil
}

type fakeGenerator struct {
	image []byte
	err   error
}

func (f *fakeGenerator) GenerateImage(context.Context, string) (io.Reader, error) {
	if f.err != nil {
		return nil, f.err
	}
	return bytes.NewReader(f.image), nil
}

// pngBytes is a prefix carrying the PNG magic so mimetype sniffing sees a
// real image.
var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x00}, 32)...)

func makeImageFile(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func makeTextFile(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("just some plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

// testEnv wires real repositories on an in-memory database behind the full
// service stack, with fake blob storage and image generation.
type testEnv struct {
	db           *gorm.DB
	store        *fakeStore
	generator    *fakeGenerator
	auth         AuthService
	classrooms   ClassroomService
	contests     ContestService
	participants ParticipantService
	submissions  SubmissionService
	votes        VoteService
	cache        *SummaryCache
	seq          int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := testLogger()

	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	contestRepo := repository.NewContestRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	cache := NewSummaryCache(nil, time.Minute, logger)
	allocator := NewJoinCodeAllocator(nil, contestRepo.JoinCodeExists, 5)

	store := &fakeStore{}
	generator := &fakeGenerator{image: pngBytes}

	classrooms := NewClassroomService(classroomRepo, validate, logger)
	contests := NewContestService(contestRepo, classrooms, participantRepo, submissionRepo, voteRepo, allocator, cache, validate, logger)
	participants := NewParticipantService(participantRepo, contestRepo, validate, logger)
	submissions := NewSubmissionService(submissionRepo, participants, contests, contestRepo, participantRepo, validate, store, generator, cache, logger)
	votes := NewVoteService(voteRepo, submissionRepo, contestRepo, participants, validate, cache, logger)

	return &testEnv{
		db:           db,
		store:        store,
		generator:    generator,
		auth:         NewAuthService(teacherRepo, validate, logger),
		classrooms:   classrooms,
		contests:     contests,
		participants: participants,
		submissions:  submissions,
		votes:        votes,
		cache:        cache,
	}
}

// seedContest creates a teacher, classroom and contest directly in the store
// and returns them.
func (e *testEnv) seedContest(t *testing.T, status, contestType string) (models.Teacher, models.Contest) {
	t.Helper()

	e.seq++
	teacher := models.Teacher{Name: "Ms. Rivera", Email: fmt.Sprintf("rivera-%d@example.com", e.seq), PasswordHash: "x"}
	require.NoError(t, e.db.Create(&teacher).Error)

	classroom := models.Classroom{Name: "Period 3", TeacherID: teacher.ID}
	require.NoError(t, e.db.Create(&classroom).Error)

	contest := models.Contest{
		Title:       "Real or AI?",
		ClassroomID: classroom.ID,
		TeacherID:   teacher.ID,
		JoinCode:    RandomJoinCode(),
		Status:      status,
		ContestType: contestType,
	}
	require.NoError(t, e.db.Create(&contest).Error)

	return teacher, contest
}

func (e *testEnv) joinAs(t *testing.T, contest models.Contest, nickname string) dto.JoinResponse {
	t.Helper()

	joined, err := e.participants.Join(context.Background(), dto.JoinRequest{JoinCode: contest.JoinCode, Nickname: nickname})
	require.NoError(t, err)
	return joined
}
