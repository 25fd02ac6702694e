package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
)

// ImageStore abstracts the blob store holding contest images. Destroy is
// best-effort by contract: callers may ignore its error.
type ImageStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Destroy(ctx context.Context, url string) error
}

// AIImageGenerator produces an image from a text prompt for teacher uploads
// that ship no AI file.
type AIImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (io.Reader, error)
}

// SubmissionService records image pairs, one per participant, and bridges
// teacher uploads through single-use virtual participants.
type SubmissionService interface {
	// Submit stores a participant's image pair. Legal only while the contest
	// is in the SUBMISSION phase, and at most once per participant.
	Submit(ctx context.Context, sessionID string, contestID uint, aiImage, realImage *multipart.FileHeader) (dto.SubmissionResponse, error)
	// TeacherUpload seeds an image pair owned by a fresh virtual participant.
	// Unlike Submit it is not gated on contest phase. When aiImage is nil and
	// the request carries a prompt, the AI image is generated.
	TeacherUpload(ctx context.Context, teacherID, contestID uint, payload dto.TeacherUploadRequest, aiImage, realImage *multipart.FileHeader) (dto.SubmissionResponse, error)
	// Delete removes a submission. A virtual owner is deleted in the same
	// transaction; a real participant survives. Blob cleanup is best-effort
	// and never blocks the row deletion.
	Delete(ctx context.Context, teacherID, submissionID uint) error
}

type submissionService struct {
	submissions  repository.SubmissionRepository
	participants ParticipantService
	contests     ContestService
	contestRepo  repository.ContestRepository
	virtualCount repository.ParticipantRepository
	validator    *validator.Validate
	store        ImageStore
	generator    AIImageGenerator
	cache        *SummaryCache
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewSubmissionService constructs a SubmissionService instance. generator may
// be nil when no AI provider is configured.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	participantSvc ParticipantService,
	contestSvc ContestService,
	contestRepo repository.ContestRepository,
	participantRepo repository.ParticipantRepository,
	validate *validator.Validate,
	store ImageStore,
	generator AIImageGenerator,
	cache *SummaryCache,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions:  submissionRepo,
		participants: participantSvc,
		contests:     contestSvc,
		contestRepo:  contestRepo,
		virtualCount: participantRepo,
		validator:    validate,
		store:        store,
		generator:    generator,
		cache:        cache,
		logger:       logger.With().Str("component", "submission_service").Logger(),
		tracer:       otel.Tracer("realorai/submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, sessionID string, contestID uint, aiImage, realImage *multipart.FileHeader) (dto.SubmissionResponse, error) {
	participant, err := s.participants.Resolve(ctx, sessionID, contestID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrContestNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if contest.Status != models.StatusSubmission {
		return dto.SubmissionResponse{}, ErrInvalidPhase
	}

	exists, err := s.submissions.ExistsByParticipant(ctx, participant.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	aiURL, realURL, err := s.uploadPair(ctx, contest.ID, aiImage, realImage)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		ParticipantID: participant.ID,
		ContestID:     contest.ID,
		AIImageURL:    aiURL,
		RealImageURL:  realURL,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		s.destroyBlobs(ctx, aiURL, realURL)
		// The unique index on participant_id is the real guard: two racing
		// submits both pass the pre-check, one loses here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, contest.ID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("participant_id", participant.ID).
		Uint("contest_id", contest.ID).
		Msg("submission recorded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) TeacherUpload(ctx context.Context, teacherID, contestID uint, payload dto.TeacherUploadRequest, aiImage, realImage *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, validationError(err)
	}

	contest, err := s.contests.GetOwned(ctx, teacherID, contestID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	var aiURL string
	switch {
	case aiImage != nil:
		aiURL, err = s.uploadFile(ctx, contest.ID, "ai", aiImage)
	case payload.AIPrompt != "":
		aiURL, err = s.generateAIImage(ctx, contest.ID, payload.AIPrompt)
	default:
		return dto.SubmissionResponse{}, validationError(errors.New("either an ai image file or an ai prompt is required"))
	}
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	realURL, err := s.uploadFile(ctx, contest.ID, "real", realImage)
	if err != nil {
		s.destroyBlobs(ctx, aiURL)
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.createWithVirtualParticipant(ctx, teacherID, contest, aiURL, realURL)
	if err != nil {
		s.destroyBlobs(ctx, aiURL, realURL)
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, contest.ID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("contest_id", contest.ID).
		Msg("teacher upload recorded")

	return dto.NewSubmissionResponse(submission), nil
}

// createWithVirtualParticipant fabricates the single-use owner and the
// submission as one transaction. The ordinal in the nickname is derived from
// the current virtual count; two concurrent uploads can race to the same
// ordinal, in which case the nickname index rejects one and it retries with
// the next.
func (s *submissionService) createWithVirtualParticipant(ctx context.Context, teacherID uint, contest models.Contest, aiURL, realURL string) (models.Submission, error) {
	count, err := s.virtualCount.CountByContest(ctx, contest.ID, models.ParticipantKindVirtual)
	if err != nil {
		return models.Submission{}, err
	}

	const maxOrdinalRetries = 5
	for attempt := 0; attempt < maxOrdinalRetries; attempt++ {
		ordinal := count + int64(attempt) + 1
		nickname := fmt.Sprintf("Teacher Upload #%d", ordinal)

		participant := models.Participant{
			ContestID:    contest.ID,
			Nickname:     nickname,
			NicknameNorm: models.NormalizeNickname(nickname),
			// Scoped to teacher, contest, and upload instance; never handed
			// to a client as a usable credential.
			SessionID: fmt.Sprintf("vp-%d-%d-%s", teacherID, contest.ID, uuid.NewString()),
			Kind:      models.ParticipantKindVirtual,
		}

		submission := models.Submission{
			ContestID:    contest.ID,
			AIImageURL:   aiURL,
			RealImageURL: realURL,
		}

		err := s.submissions.CreateWithParticipant(ctx, &participant, &submission)
		if err == nil {
			return submission, nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Submission{}, err
		}
	}

	return models.Submission{}, fmt.Errorf("%w: could not allocate virtual participant", ErrConflict)
}

func (s *submissionService) Delete(ctx context.Context, teacherID, submissionID uint) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if _, err := s.contests.GetOwned(ctx, teacherID, submission.ContestID); err != nil {
		return err
	}

	deleteOwner := submission.Participant.IsVirtual()
	if err := s.submissions.Delete(ctx, submission, deleteOwner); err != nil {
		return err
	}

	// Blob cleanup happens after the transaction committed and its failure is
	// swallowed: an orphaned blob is acceptable, an orphaned row is not.
	s.destroyBlobs(ctx, submission.AIImageURL, submission.RealImageURL)
	s.cache.Invalidate(ctx, submission.ContestID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Bool("virtual_owner_deleted", deleteOwner).
		Msg("submission deleted")

	return nil
}

func (s *submissionService) uploadPair(ctx context.Context, contestID uint, aiImage, realImage *multipart.FileHeader) (string, string, error) {
	aiURL, err := s.uploadFile(ctx, contestID, "ai", aiImage)
	if err != nil {
		return "", "", err
	}

	realURL, err := s.uploadFile(ctx, contestID, "real", realImage)
	if err != nil {
		s.destroyBlobs(ctx, aiURL)
		return "", "", err
	}

	return aiURL, realURL, nil
}

func (s *submissionService) uploadFile(ctx context.Context, contestID uint, kind string, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", validationError(fmt.Errorf("%s image file is required", kind))
	}

	if err := validateImageType(file); err != nil {
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "submission.upload_image",
		trace.WithAttributes(
			attribute.String("image.kind", kind),
			attribute.Int64("contest.id", int64(contestID)),
		))
	defer span.End()

	reader, err := file.Open()
	if err != nil {
		span.SetStatus(codes.Error, "open failed")
		return "", fmt.Errorf("failed to open %s image: %w", kind, err)
	}
	defer reader.Close()

	url, err := s.store.Upload(ctx, fmt.Sprintf("contest-%d-%s-%s", contestID, kind, file.Filename), reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return "", fmt.Errorf("failed to upload %s image: %w", kind, err)
	}

	return url, nil
}

func (s *submissionService) generateAIImage(ctx context.Context, contestID uint, prompt string) (string, error) {
	if s.generator == nil {
		return "", validationError(errors.New("ai image generation is not configured"))
	}

	ctx, span := s.tracer.Start(ctx, "submission.generate_ai_image")
	defer span.End()

	image, err := s.generator.GenerateImage(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("failed to generate ai image: %w", err)
	}

	return s.store.Upload(ctx, fmt.Sprintf("contest-%d-ai-generated", contestID), image)
}

func (s *submissionService) destroyBlobs(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.store.Destroy(ctx, url); err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("best-effort blob cleanup failed")
		}
	}
}

func validateImageType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	if mime.Is("image/jpeg") || mime.Is("image/png") || mime.Is("image/webp") || mime.Is("image/gif") {
		return nil
	}

	return fmt.Errorf("%w: unsupported image type %s", ErrValidation, mime.String())
}
