package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/models"
)

// SubmissionRepository defines data operations for image-pair submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	// CreateWithParticipant inserts a virtual participant and its submission
	// as one transaction. Either both rows land or neither does.
	CreateWithParticipant(ctx context.Context, participant *models.Participant, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ExistsByParticipant(ctx context.Context, participantID uint) (bool, error)
	ListByContest(ctx context.Context, contestID uint) ([]models.Submission, error)
	// Delete removes the submission, its votes, and — when deleteOwner is set —
	// the owning participant, atomically.
	Delete(ctx context.Context, submission models.Submission, deleteOwner bool) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) CreateWithParticipant(ctx context.Context, participant *models.Participant, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			return err
		}

		submission.ParticipantID = participant.ID
		return tx.Create(submission).Error
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Participant").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ExistsByParticipant(ctx context.Context, participantID uint) (bool, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Select("id").
		Where("participant_id = ?", participantID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *submissionRepository) ListByContest(ctx context.Context, contestID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Participant").
		Where("contest_id = ?", contestID).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Delete(ctx context.Context, submission models.Submission, deleteOwner bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submission.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Submission{}, submission.ID).Error; err != nil {
			return err
		}

		if !deleteOwner {
			return nil
		}

		if err := tx.Where("participant_id = ?", submission.ParticipantID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Participant{}, submission.ParticipantID).Error
	})
}
