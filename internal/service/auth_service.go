package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/realorai/realorai-api/internal/dto"
	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
)

// AuthService handles teacher account registration and sign-in. Sign-in
// issues the plaintext capability token consumed by the teacher middleware.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
}

type authService struct {
	teachers  repository.TeacherRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(teacherRepo repository.TeacherRepository, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		teachers:  teacherRepo,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	teacher := models.Teacher{
		Name:         sanitizeText(payload.Name),
		Email:        payload.Email,
		PasswordHash: string(hash),
	}

	if err := s.teachers.Create(ctx, &teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("teacher_id", teacher.ID).Msg("teacher registered")

	return dto.AuthResponse{
		TeacherID: teacher.ID,
		Name:      teacher.Name,
		Token:     IssueTeacherToken(teacher.ID, s.now()),
	}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, validationError(err)
	}

	teacher, err := s.teachers.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return dto.AuthResponse{
		TeacherID: teacher.ID,
		Name:      teacher.Name,
		Token:     IssueTeacherToken(teacher.ID, s.now()),
	}, nil
}
