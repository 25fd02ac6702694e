package models

import "time"

// Contest statuses. Every phase change is an explicit teacher action; the
// other entities gate their own writes on the current value.
const (
	// StatusSubmission accepts new participants and image pairs.
	StatusSubmission = "SUBMISSION"
	// StatusVoting accepts votes; joins and submissions are closed.
	StatusVoting = "VOTING"
	// StatusResults exposes tallies; all mutations are closed.
	StatusResults = "RESULTS"
	// StatusEnded archives the contest.
	StatusEnded = "ENDED"
)

// Contest types, fixed at creation.
const (
	// ContestTypeStudentUpload means participants submit their own image pairs.
	ContestTypeStudentUpload = "STUDENT_UPLOAD"
	// ContestTypeTeacherUpload means the teacher seeds all image pairs.
	ContestTypeTeacherUpload = "TEACHER_UPLOAD"
)

// Contest is a single "AI vs real" round run inside a classroom. TeacherID
// duplicates the classroom's owner so ownership checks need no join.
type Contest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	ClassroomID uint      `gorm:"index;not null" json:"classroom_id"`
	TeacherID   uint      `gorm:"index;not null" json:"teacher_id"`
	JoinCode    string    `gorm:"size:6;uniqueIndex;not null" json:"join_code"`
	Status      string    `gorm:"size:16;not null" json:"status"`
	ContestType string    `gorm:"size:16;not null" json:"contest_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Classroom   Classroom `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ValidStatus reports whether s is one of the four contest statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusSubmission, StatusVoting, StatusResults, StatusEnded:
		return true
	}
	return false
}

// ValidContestType reports whether t is a known contest type.
func ValidContestType(t string) bool {
	return t == ContestTypeStudentUpload || t == ContestTypeTeacherUpload
}
