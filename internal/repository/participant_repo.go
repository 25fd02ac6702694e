package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/models"
)

// ParticipantRepository defines data operations for contest participants.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id uint) (models.Participant, error)
	// GetBySession resolves the participant identified by a session token
	// scoped to one contest. Exactly one row matches or the lookup fails.
	GetBySession(ctx context.Context, sessionID string, contestID uint) (models.Participant, error)
	NicknameExists(ctx context.Context, contestID uint, nicknameNorm string) (bool, error)
	ListByContest(ctx context.Context, contestID uint, kind string) ([]models.Participant, error)
	CountByContest(ctx context.Context, contestID uint, kind string) (int64, error)
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository instantiates the repository.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *participantRepository) GetByID(ctx context.Context, id uint) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).First(&participant, id).Error; err != nil {
		return models.Participant{}, err
	}

	return participant, nil
}

func (r *participantRepository) GetBySession(ctx context.Context, sessionID string, contestID uint) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("contest_id = ?", contestID).
		First(&participant).Error; err != nil {
		return models.Participant{}, err
	}

	return participant, nil
}

func (r *participantRepository) NicknameExists(ctx context.Context, contestID uint, nicknameNorm string) (bool, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).Select("id").
		Where("contest_id = ?", contestID).
		Where("nickname_norm = ?", nicknameNorm).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *participantRepository) ListByContest(ctx context.Context, contestID uint, kind string) ([]models.Participant, error) {
	query := r.db.WithContext(ctx).Where("contest_id = ?", contestID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var participants []models.Participant
	if err := query.Order("created_at ASC").Find(&participants).Error; err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *participantRepository) CountByContest(ctx context.Context, contestID uint, kind string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Participant{}).Where("contest_id = ?", contestID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
