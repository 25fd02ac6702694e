package models

import "time"

// Submission is one AI/real image pair. The unique index on ParticipantID is
// the authoritative at-most-one-submission guard; service pre-checks only
// exist for friendlier error messages.
type Submission struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ParticipantID uint        `gorm:"uniqueIndex;not null" json:"participant_id"`
	ContestID     uint        `gorm:"index;not null" json:"contest_id"`
	AIImageURL    string      `gorm:"size:512;not null" json:"ai_image_url"`
	RealImageURL  string      `gorm:"size:512;not null" json:"real_image_url"`
	CreatedAt     time.Time   `json:"created_at"`
	Participant   Participant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Contest       Contest     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
