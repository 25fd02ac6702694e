package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
)

// ContestService owns the contest lifecycle: creation with join-code
// allocation, explicit teacher-driven phase changes, deletion, and the
// polling read models. Phase gating for joins, submissions and votes lives in
// the services that perform those writes.
type ContestService interface {
	Create(ctx context.Context, teacherID, classroomID uint, payload dto.ContestCreateRequest) (dto.ContestResponse, error)
	SetStatus(ctx context.Context, teacherID, contestID uint, payload dto.ContestStatusRequest) (dto.ContestResponse, error)
	Delete(ctx context.Context, teacherID, contestID uint) error
	ListByClassroom(ctx context.Context, teacherID, classroomID uint) ([]dto.ContestResponse, error)
	TeacherSummary(ctx context.Context, teacherID, contestID uint) (dto.ContestSummaryResponse, error)
	ParticipantSummary(ctx context.Context, sessionID string, contestID uint) (dto.ContestSummaryResponse, error)
	// GetOwned loads a contest and enforces teacher ownership in one step.
	GetOwned(ctx context.Context, teacherID, contestID uint) (models.Contest, error)
}

type contestService struct {
	contests     repository.ContestRepository
	classrooms   ClassroomService
	participants repository.ParticipantRepository
	submissions  repository.SubmissionRepository
	votes        repository.VoteRepository
	allocator    *JoinCodeAllocator
	cache        *SummaryCache
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewContestService constructs a ContestService instance.
func NewContestService(
	contestRepo repository.ContestRepository,
	classroomSvc ClassroomService,
	participantRepo repository.ParticipantRepository,
	submissionRepo repository.SubmissionRepository,
	voteRepo repository.VoteRepository,
	allocator *JoinCodeAllocator,
	cache *SummaryCache,
	validate *validator.Validate,
	logger zerolog.Logger,
) ContestService {
	return &contestService{
		contests:     contestRepo,
		classrooms:   classroomSvc,
		participants: participantRepo,
		submissions:  submissionRepo,
		votes:        voteRepo,
		allocator:    allocator,
		cache:        cache,
		validator:    validate,
		logger:       logger.With().Str("component", "contest_service").Logger(),
	}
}

func (s *contestService) Create(ctx context.Context, teacherID, classroomID uint, payload dto.ContestCreateRequest) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, validationError(err)
	}

	classroom, err := s.classrooms.Get(ctx, teacherID, classroomID)
	if err != nil {
		return dto.ContestResponse{}, err
	}

	// The allocator's existence check is optimistic; a concurrent creation
	// can still win the same candidate. The unique index rejects the losing
	// insert and the whole allocation restarts with a fresh code.
	for attempt := 0; attempt < s.allocator.maxAttempts; attempt++ {
		code, err := s.allocator.Allocate(ctx)
		if err != nil {
			return dto.ContestResponse{}, err
		}

		contest := models.Contest{
			Title:       sanitizeText(payload.Title),
			ClassroomID: classroom.ID,
			TeacherID:   teacherID,
			JoinCode:    code,
			Status:      models.StatusSubmission,
			ContestType: payload.ContestType,
		}

		err = s.contests.Create(ctx, &contest)
		if err == nil {
			s.logger.Info().
				Uint("contest_id", contest.ID).
				Str("join_code", contest.JoinCode).
				Str("contest_type", contest.ContestType).
				Msg("contest created")
			return dto.NewContestResponse(contest), nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ContestResponse{}, err
		}

		s.logger.Warn().Str("join_code", code).Msg("join code collision lost at constraint, retrying")
	}

	return dto.ContestResponse{}, errors.New("could not allocate a unique join code")
}

func (s *contestService) SetStatus(ctx context.Context, teacherID, contestID uint, payload dto.ContestStatusRequest) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, validationError(err)
	}

	contest, err := s.GetOwned(ctx, teacherID, contestID)
	if err != nil {
		return dto.ContestResponse{}, err
	}

	// Any of the four values is settable from any other. Moving back to
	// SUBMISSION after votes exist reopens the submission window on purpose.
	if err := s.contests.UpdateStatus(ctx, contest.ID, payload.Status); err != nil {
		return dto.ContestResponse{}, err
	}

	contest.Status = payload.Status
	s.cache.Invalidate(ctx, contest.ID)

	s.logger.Info().Uint("contest_id", contest.ID).Str("status", payload.Status).Msg("contest status changed")

	return dto.NewContestResponse(contest), nil
}

func (s *contestService) Delete(ctx context.Context, teacherID, contestID uint) error {
	contest, err := s.GetOwned(ctx, teacherID, contestID)
	if err != nil {
		return err
	}

	if err := s.contests.Delete(ctx, contest.ID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, contest.ID)

	s.logger.Info().Uint("contest_id", contest.ID).Msg("contest deleted with all participants, submissions and votes")

	return nil
}

func (s *contestService) ListByClassroom(ctx context.Context, teacherID, classroomID uint) ([]dto.ContestResponse, error) {
	if _, err := s.classrooms.Get(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	contests, err := s.contests.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	return dto.NewContestResponseSlice(contests), nil
}

func (s *contestService) TeacherSummary(ctx context.Context, teacherID, contestID uint) (dto.ContestSummaryResponse, error) {
	contest, err := s.GetOwned(ctx, teacherID, contestID)
	if err != nil {
		return dto.ContestSummaryResponse{}, err
	}

	return s.summary(ctx, contest)
}

func (s *contestService) ParticipantSummary(ctx context.Context, sessionID string, contestID uint) (dto.ContestSummaryResponse, error) {
	if _, err := s.participants.GetBySession(ctx, sessionID, contestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestSummaryResponse{}, ErrInvalidSession
		}
		return dto.ContestSummaryResponse{}, err
	}

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestSummaryResponse{}, ErrContestNotFound
		}
		return dto.ContestSummaryResponse{}, err
	}

	return s.summary(ctx, contest)
}

func (s *contestService) summary(ctx context.Context, contest models.Contest) (dto.ContestSummaryResponse, error) {
	if cached, ok := s.cache.Get(ctx, contest.ID); ok {
		return cached, nil
	}

	participants, err := s.participants.ListByContest(ctx, contest.ID, models.ParticipantKindReal)
	if err != nil {
		return dto.ContestSummaryResponse{}, err
	}

	submissions, err := s.submissions.ListByContest(ctx, contest.ID)
	if err != nil {
		return dto.ContestSummaryResponse{}, err
	}

	counts, err := s.votes.CountByContest(ctx, contest.ID)
	if err != nil {
		return dto.ContestSummaryResponse{}, err
	}

	tallies := make([]dto.SubmissionTally, 0, len(submissions))
	for _, submission := range submissions {
		tallies = append(tallies, dto.SubmissionTally{
			SubmissionID: submission.ID,
			Nickname:     submission.Participant.Nickname,
			AIImageURL:   submission.AIImageURL,
			RealImageURL: submission.RealImageURL,
			VoteCount:    counts[submission.ID],
			CreatedAt:    submission.CreatedAt,
		})
	}

	summary := dto.ContestSummaryResponse{
		Contest:      dto.NewContestResponse(contest),
		Participants: dto.NewParticipantResponseSlice(participants),
		Submissions:  tallies,
	}

	s.cache.Set(ctx, contest.ID, summary)

	return summary, nil
}

func (s *contestService) GetOwned(ctx context.Context, teacherID, contestID uint) (models.Contest, error) {
	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Contest{}, ErrContestNotFound
		}
		return models.Contest{}, err
	}

	if contest.TeacherID != teacherID {
		return models.Contest{}, ErrContestNotFound
	}

	return contest, nil
}
