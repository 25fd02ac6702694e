package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
)

// ParticipantService admits entrants into contests and resolves session
// tokens back to participants.
type ParticipantService interface {
	// Join admits a participant. Preconditions are checked in order and the
	// first failure wins: unknown join code, closed submission phase, then
	// nickname collision.
	Join(ctx context.Context, payload dto.JoinRequest) (dto.JoinResponse, error)
	// Resolve validates a session token against one contest. It fails with
	// ErrInvalidSession unless the pair matches exactly one participant.
	Resolve(ctx context.Context, sessionID string, contestID uint) (models.Participant, error)
}

type participantService struct {
	participants repository.ParticipantRepository
	contests     repository.ContestRepository
	validator    *validator.Validate
	logger       zerolog.Logger
	newSessionID func() string
}

// NewParticipantService constructs a ParticipantService instance.
func NewParticipantService(participantRepo repository.ParticipantRepository, contestRepo repository.ContestRepository, validate *validator.Validate, logger zerolog.Logger) ParticipantService {
	return &participantService{
		participants: participantRepo,
		contests:     contestRepo,
		validator:    validate,
		logger:       logger.With().Str("component", "participant_service").Logger(),
		newSessionID: uuid.NewString,
	}
}

func (s *participantService) Join(ctx context.Context, payload dto.JoinRequest) (dto.JoinResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JoinResponse{}, validationError(err)
	}

	contest, err := s.contests.GetByJoinCode(ctx, payload.JoinCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinResponse{}, ErrContestNotFound
		}
		return dto.JoinResponse{}, err
	}

	if contest.Status != models.StatusSubmission {
		return dto.JoinResponse{}, ErrInvalidPhase
	}

	nickname := sanitizeText(payload.Nickname)
	if nickname == "" {
		return dto.JoinResponse{}, validationError(errors.New("nickname must not be empty"))
	}

	norm := models.NormalizeNickname(nickname)
	taken, err := s.participants.NicknameExists(ctx, contest.ID, norm)
	if err != nil {
		return dto.JoinResponse{}, err
	}
	if taken {
		return dto.JoinResponse{}, ErrNicknameTaken
	}

	participant := models.Participant{
		ContestID:    contest.ID,
		Nickname:     nickname,
		NicknameNorm: norm,
		SessionID:    s.newSessionID(),
		Kind:         models.ParticipantKindReal,
	}

	if err := s.participants.Create(ctx, &participant); err != nil {
		// The (contest, nickname_norm) unique index closes the race between
		// two simultaneous joins that both passed the pre-check. A session id
		// collision would trip the same translated error, but session ids are
		// UUIDs; the nickname index is the one that fires in practice.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.JoinResponse{}, ErrNicknameTaken
		}
		return dto.JoinResponse{}, err
	}

	s.logger.Info().
		Uint("participant_id", participant.ID).
		Uint("contest_id", contest.ID).
		Msg("participant joined contest")

	return dto.JoinResponse{
		ParticipantID: participant.ID,
		SessionID:     participant.SessionID,
		ContestID:     contest.ID,
		ContestTitle:  contest.Title,
		Nickname:      participant.Nickname,
	}, nil
}

func (s *participantService) Resolve(ctx context.Context, sessionID string, contestID uint) (models.Participant, error) {
	if sessionID == "" {
		return models.Participant{}, ErrInvalidSession
	}

	participant, err := s.participants.GetBySession(ctx, sessionID, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Participant{}, ErrInvalidSession
		}
		return models.Participant{}, err
	}

	return participant, nil
}
