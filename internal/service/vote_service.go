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

// VoteService records ballots: one per participant, never for the
// participant's own submission, only while the contest is in VOTING.
type VoteService interface {
	Vote(ctx context.Context, sessionID string, contestID uint, payload dto.VoteRequest) (dto.VoteResponse, error)
}

type voteService struct {
	votes        repository.VoteRepository
	submissions  repository.SubmissionRepository
	contests     repository.ContestRepository
	participants ParticipantService
	validator    *validator.Validate
	cache        *SummaryCache
	logger       zerolog.Logger
}

// NewVoteService constructs a VoteService instance.
func NewVoteService(
	voteRepo repository.VoteRepository,
	submissionRepo repository.SubmissionRepository,
	contestRepo repository.ContestRepository,
	participantSvc ParticipantService,
	validate *validator.Validate,
	cache *SummaryCache,
	logger zerolog.Logger,
) VoteService {
	return &voteService{
		votes:        voteRepo,
		submissions:  submissionRepo,
		contests:     contestRepo,
		participants: participantSvc,
		validator:    validate,
		cache:        cache,
		logger:       logger.With().Str("component", "vote_service").Logger(),
	}
}

func (s *voteService) Vote(ctx context.Context, sessionID string, contestID uint, payload dto.VoteRequest) (dto.VoteResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.VoteResponse{}, validationError(err)
	}

	participant, err := s.participants.Resolve(ctx, sessionID, contestID)
	if err != nil {
		return dto.VoteResponse{}, err
	}

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VoteResponse{}, ErrContestNotFound
		}
		return dto.VoteResponse{}, err
	}

	if contest.Status != models.StatusVoting {
		return dto.VoteResponse{}, ErrInvalidPhase
	}

	voted, err := s.votes.ExistsByParticipant(ctx, participant.ID)
	if err != nil {
		return dto.VoteResponse{}, err
	}
	if voted {
		return dto.VoteResponse{}, ErrDuplicateVote
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VoteResponse{}, ErrSubmissionNotFound
		}
		return dto.VoteResponse{}, err
	}

	if submission.ContestID != contest.ID {
		return dto.VoteResponse{}, ErrSubmissionNotFound
	}

	if submission.ParticipantID == participant.ID {
		return dto.VoteResponse{}, ErrSelfVote
	}

	vote := models.Vote{
		ParticipantID: participant.ID,
		SubmissionID:  submission.ID,
		ContestID:     contest.ID,
	}

	if err := s.votes.Create(ctx, &vote); err != nil {
		// The unique index on participant_id is the authoritative duplicate
		// guard; a racing second ballot loses here, not at the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.VoteResponse{}, ErrDuplicateVote
		}
		return dto.VoteResponse{}, err
	}

	s.cache.Invalidate(ctx, contest.ID)

	s.logger.Info().
		Uint("vote_id", vote.ID).
		Uint("participant_id", participant.ID).
		Uint("submission_id", submission.ID).
		Msg("vote recorded")

	return dto.VoteResponse{
		VoteID:       vote.ID,
		SubmissionID: submission.ID,
		ContestID:    contest.ID,
		CreatedAt:    vote.CreatedAt,
	}, nil
}
