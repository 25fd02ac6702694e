package dto

import (
	"time"

	"github.com/realorai/realorai-api/internal/models"
)

// JoinRequest admits a participant into a contest by join code.
type JoinRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6,alphanum"`
	Nickname string `json:"nickname" validate:"required,min=1,max=64"`
}

// JoinResponse hands the new participant its identifiers. SessionID is the
// bearer secret the client stores and replays; it is only ever returned here.
type JoinResponse struct {
	ParticipantID uint   `json:"participant_id"`
	SessionID     string `json:"session_id"`
	ContestID     uint   `json:"contest_id"`
	ContestTitle  string `json:"contest_title"`
	Nickname      string `json:"nickname"`
}

// ParticipantResponse is the public projection of a participant.
type ParticipantResponse struct {
	ID       uint      `json:"id"`
	Nickname string    `json:"nickname"`
	JoinedAt time.Time `json:"joined_at"`
}

// NewParticipantResponseSlice maps participants to their response form.
func NewParticipantResponseSlice(participants []models.Participant) []ParticipantResponse {
	result := make([]ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		result = append(result, ParticipantResponse{
			ID:       participant.ID,
			Nickname: participant.Nickname,
			JoinedAt: participant.CreatedAt,
		})
	}
	return result
}
