package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/models"
)

// ContestRepository defines data operations for contests.
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id uint) (models.Contest, error)
	GetByJoinCode(ctx context.Context, joinCode string) (models.Contest, error)
	JoinCodeExists(ctx context.Context, joinCode string) (bool, error)
	ListByClassroom(ctx context.Context, classroomID uint) ([]models.Contest, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository instantiates the repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Create(contest).Error
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).First(&contest, id).Error; err != nil {
		return models.Contest{}, err
	}

	return contest, nil
}

func (r *contestRepository) GetByJoinCode(ctx context.Context, joinCode string) (models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).Where("join_code = ?", joinCode).First(&contest).Error; err != nil {
		return models.Contest{}, err
	}

	return contest, nil
}

func (r *contestRepository) JoinCodeExists(ctx context.Context, joinCode string) (bool, error) {
	var contest models.Contest
	err := r.db.WithContext(ctx).Select("id").Where("join_code = ?", joinCode).First(&contest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *contestRepository) ListByClassroom(ctx context.Context, classroomID uint) ([]models.Contest, error) {
	var contests []models.Contest
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("created_at DESC").
		Find(&contests).Error; err != nil {
		return nil, err
	}

	return contests, nil
}

func (r *contestRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Contest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the contest together with its participants, submissions and
// votes in one transaction.
func (r *contestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteContestDescendants(tx, []uint{id}); err != nil {
			return err
		}
		return tx.Delete(&models.Contest{}, id).Error
	})
}
