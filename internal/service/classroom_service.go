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

// ClassroomService manages classrooms for their owning teacher. Ownership
// failures surface as ErrClassroomNotFound so one teacher cannot probe for
// another's resources.
type ClassroomService interface {
	Create(ctx context.Context, teacherID uint, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error)
	Rename(ctx context.Context, teacherID, classroomID uint, payload dto.ClassroomRenameRequest) (dto.ClassroomResponse, error)
	Delete(ctx context.Context, teacherID, classroomID uint) error
	List(ctx context.Context, teacherID uint) ([]dto.ClassroomResponse, error)
	Get(ctx context.Context, teacherID, classroomID uint) (models.Classroom, error)
}

type classroomService struct {
	classrooms repository.ClassroomRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewClassroomService constructs a ClassroomService instance.
func NewClassroomService(classroomRepo repository.ClassroomRepository, validate *validator.Validate, logger zerolog.Logger) ClassroomService {
	return &classroomService{
		classrooms: classroomRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "classroom_service").Logger(),
	}
}

func (s *classroomService) Create(ctx context.Context, teacherID uint, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, validationError(err)
	}

	classroom := models.Classroom{
		Name:      sanitizeText(payload.Name),
		TeacherID: teacherID,
	}

	if err := s.classrooms.Create(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Uint("teacher_id", teacherID).Msg("classroom created")

	return dto.NewClassroomResponse(classroom, 0), nil
}

func (s *classroomService) Rename(ctx context.Context, teacherID, classroomID uint, payload dto.ClassroomRenameRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, validationError(err)
	}

	classroom, err := s.Get(ctx, teacherID, classroomID)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom.Name = sanitizeText(payload.Name)
	if err := s.classrooms.Update(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	return dto.NewClassroomResponse(classroom, 0), nil
}

func (s *classroomService) Delete(ctx context.Context, teacherID, classroomID uint) error {
	if _, err := s.Get(ctx, teacherID, classroomID); err != nil {
		return err
	}

	if err := s.classrooms.Delete(ctx, classroomID); err != nil {
		return err
	}

	s.logger.Info().Uint("classroom_id", classroomID).Msg("classroom deleted with all contests")

	return nil
}

func (s *classroomService) List(ctx context.Context, teacherID uint) ([]dto.ClassroomResponse, error) {
	classrooms, err := s.classrooms.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return dto.NewClassroomResponseSlice(classrooms), nil
}

// Get loads a classroom and enforces ownership in one step.
func (s *classroomService) Get(ctx context.Context, teacherID, classroomID uint) (models.Classroom, error) {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Classroom{}, ErrClassroomNotFound
		}
		return models.Classroom{}, err
	}

	if classroom.TeacherID != teacherID {
		return models.Classroom{}, ErrClassroomNotFound
	}

	return classroom, nil
}
