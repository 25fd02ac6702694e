package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/models"
)

// VoteRepository defines data operations for ballots.
type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	// ExistsByParticipant reports whether the participant has voted at all.
	// The check is global: a participant holds at most one vote, ever.
	ExistsByParticipant(ctx context.Context, participantID uint) (bool, error)
	// CountByContest returns per-submission tallies for one contest.
	CountByContest(ctx context.Context, contestID uint) (map[uint]int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository instantiates the repository.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) ExistsByParticipant(ctx context.Context, participantID uint) (bool, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).Select("id").
		Where("participant_id = ?", participantID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *voteRepository) CountByContest(ctx context.Context, contestID uint) (map[uint]int64, error) {
	type tally struct {
		SubmissionID uint
		Total        int64
	}

	var rows []tally
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("submission_id, COUNT(*) AS total").
		Where("contest_id = ?", contestID).
		Group("submission_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SubmissionID] = row.Total
	}

	return counts, nil
}
