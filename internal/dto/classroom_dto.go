package dto

import (
	"time"

	"github.com/realorai/realorai-api/internal/models"
	"github.com/realorai/realorai-api/internal/repository"
)

// ClassroomCreateRequest creates a classroom.
type ClassroomCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// ClassroomRenameRequest renames a classroom.
type ClassroomRenameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// ClassroomResponse is the API projection of a classroom.
type ClassroomResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	ContestCount int64     `json:"contest_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewClassroomResponse maps a model to its response form.
func NewClassroomResponse(classroom models.Classroom, contestCount int64) ClassroomResponse {
	return ClassroomResponse{
		ID:           classroom.ID,
		Name:         classroom.Name,
		ContestCount: contestCount,
		CreatedAt:    classroom.CreatedAt,
	}
}

// NewClassroomResponseSlice maps counted classrooms to their response form.
func NewClassroomResponseSlice(classrooms []repository.ClassroomWithCount) []ClassroomResponse {
	result := make([]ClassroomResponse, 0, len(classrooms))
	for _, entry := range classrooms {
		result = append(result, NewClassroomResponse(entry.Classroom, entry.ContestCount))
	}
	return result
}
