package dto

import (
	"time"

	"github.com/realorai/realorai-api/internal/models"
)

// ContestCreateRequest creates a contest inside a classroom.
type ContestCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	ContestType string `json:"contest_type" validate:"required,oneof=STUDENT_UPLOAD TEACHER_UPLOAD"`
}

// ContestStatusRequest moves a contest to a new phase. Any of the four values
// may be set from any other; the services gate their own writes on the
// current value.
type ContestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SUBMISSION VOTING RESULTS ENDED"`
}

// ContestResponse is the teacher-facing projection of a contest.
type ContestResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	ClassroomID uint      `json:"classroom_id"`
	JoinCode    string    `json:"join_code"`
	Status      string    `json:"status"`
	ContestType string    `json:"contest_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewContestResponse maps a model to its response form.
func NewContestResponse(contest models.Contest) ContestResponse {
	return ContestResponse{
		ID:          contest.ID,
		Title:       contest.Title,
		ClassroomID: contest.ClassroomID,
		JoinCode:    contest.JoinCode,
		Status:      contest.Status,
		ContestType: contest.ContestType,
		CreatedAt:   contest.CreatedAt,
	}
}

// NewContestResponseSlice maps contests to their response form.
func NewContestResponseSlice(contests []models.Contest) []ContestResponse {
	result := make([]ContestResponse, 0, len(contests))
	for _, contest := range contests {
		result = append(result, NewContestResponse(contest))
	}
	return result
}

// SubmissionTally is one submission plus its vote count, as shown in the
// contest summary.
type SubmissionTally struct {
	SubmissionID uint      `json:"submission_id"`
	Nickname     string    `json:"nickname"`
	AIImageURL   string    `json:"ai_image_url"`
	RealImageURL string    `json:"real_image_url"`
	VoteCount    int64     `json:"vote_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContestSummaryResponse is the polling read model: contest header,
// participant list (virtual entries filtered out), and per-submission vote
// counts.
type ContestSummaryResponse struct {
	Contest      ContestResponse       `json:"contest"`
	Participants []ParticipantResponse `json:"participants"`
	Submissions  []SubmissionTally     `json:"submissions"`
}
