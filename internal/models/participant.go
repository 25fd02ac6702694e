package models

import (
	"strings"
	"time"
)

// Participant kinds. Virtual participants exist only to own teacher-uploaded
// submissions and never receive a usable session token.
const (
	ParticipantKindReal    = "REAL"
	ParticipantKindVirtual = "VIRTUAL"
)

// Participant is one admitted entrant in one contest. NicknameNorm holds the
// lowercased nickname so the (contest, nickname) uniqueness check is
// case-insensitive at the constraint level, not just in application code.
type Participant struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ContestID    uint      `gorm:"not null;uniqueIndex:idx_participants_contest_nickname" json:"contest_id"`
	Nickname     string    `gorm:"size:64;not null" json:"nickname"`
	NicknameNorm string    `gorm:"size:64;not null;uniqueIndex:idx_participants_contest_nickname" json:"-"`
	SessionID    string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Kind         string    `gorm:"size:8;not null;default:REAL" json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
	Contest      Contest   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// NormalizeNickname maps a nickname to its uniqueness key.
func NormalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// IsVirtual reports whether the participant was fabricated for a teacher upload.
func (p Participant) IsVirtual() bool {
	return p.Kind == ParticipantKindVirtual
}
