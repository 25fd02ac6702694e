package dto

import "time"

// VoteRequest casts a ballot for one submission.
type VoteRequest struct {
	SubmissionID uint `json:"submission_id" validate:"required"`
}

// VoteResponse confirms a recorded ballot.
type VoteResponse struct {
	VoteID       uint      `json:"vote_id"`
	SubmissionID uint      `json:"submission_id"`
	ContestID    uint      `json:"contest_id"`
	CreatedAt    time.Time `json:"created_at"`
}
