package models

import "time"

// Vote is one ballot. ParticipantID carries a unique index because a
// participant votes at most once ever, not once per contest; ContestID is
// denormalized from the target submission so tallies need no join.
type Vote struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ParticipantID uint        `gorm:"uniqueIndex;not null" json:"participant_id"`
	SubmissionID  uint        `gorm:"index;not null" json:"submission_id"`
	ContestID     uint        `gorm:"index;not null" json:"contest_id"`
	CreatedAt     time.Time   `json:"created_at"`
	Participant   Participant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submission    Submission  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
