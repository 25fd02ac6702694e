package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/models"
)

// ClassroomWithCount pairs a classroom with the number of contests it holds.
type ClassroomWithCount struct {
	Classroom    models.Classroom
	ContestCount int64
}

// ClassroomRepository defines data operations for classrooms.
type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]ClassroomWithCount, error)
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id uint) error
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository instantiates the repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]ClassroomWithCount, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}

	result := make([]ClassroomWithCount, 0, len(classrooms))
	for _, classroom := range classrooms {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Contest{}).
			Where("classroom_id = ?", classroom.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, ClassroomWithCount{Classroom: classroom, ContestCount: count})
	}

	return result, nil
}

func (r *classroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Save(classroom).Error
}

// Delete removes the classroom and every descendant row in one transaction.
// Descendants are deleted explicitly, bottom-up, rather than trusting the
// store's FK cascade behaviour, so the result is identical on every backend
// AutoMigrate supports.
func (r *classroomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contestIDs []uint
		if err := tx.Model(&models.Contest{}).
			Where("classroom_id = ?", id).
			Pluck("id", &contestIDs).Error; err != nil {
			return err
		}

		if len(contestIDs) > 0 {
			if err := deleteContestDescendants(tx, contestIDs); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", contestIDs).Delete(&models.Contest{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Classroom{}, id).Error
	})
}

func deleteContestDescendants(tx *gorm.DB, contestIDs []uint) error {
	if err := tx.Where("contest_id IN ?", contestIDs).Delete(&models.Vote{}).Error; err != nil {
		return err
	}
	if err := tx.Where("contest_id IN ?", contestIDs).Delete(&models.Submission{}).Error; err != nil {
		return err
	}
	return tx.Where("contest_id IN ?", contestIDs).Delete(&models.Participant{}).Error
}
