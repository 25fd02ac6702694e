package dto

import (
	"time"

	"github.com/realorai/realorai-api/internal/models"
)

// TeacherUploadRequest seeds an image pair into a contest on behalf of the
// teacher. The AI image comes either as an uploaded file or, when AIPrompt is
// set, is generated on the fly.
type TeacherUploadRequest struct {
	AIPrompt string `json:"ai_prompt" validate:"omitempty,max=1000"`
}

// SubmissionResponse is the API projection of a submission.
type SubmissionResponse struct {
	ID            uint      `json:"id"`
	ParticipantID uint      `json:"participant_id"`
	ContestID     uint      `json:"contest_id"`
	AIImageURL    string    `json:"ai_image_url"`
	RealImageURL  string    `json:"real_image_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSubmissionResponse maps a model to its response form.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            submission.ID,
		ParticipantID: submission.ParticipantID,
		ContestID:     submission.ContestID,
		AIImageURL:    submission.AIImageURL,
		RealImageURL:  submission.RealImageURL,
		CreatedAt:     submission.CreatedAt,
	}
}
