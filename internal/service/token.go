package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Teacher bearer tokens carry the teacher id in plaintext:
// "teacher_<id>_<issueTimestamp>". Parsing is purely syntactic — nothing is
// signed — so the token is a capability equivalent to a session cookie and
// must only travel over trusted channels. Swapping in a signed token later
// only requires keeping the external shape (an opaque string the client
// stores and replays).
const teacherTokenPrefix = "teacher"

// IssueTeacherToken builds a bearer token for the given teacher.
func IssueTeacherToken(teacherID uint, now time.Time) string {
	return fmt.Sprintf("%s_%d_%d", teacherTokenPrefix, teacherID, now.Unix())
}

// ParseTeacherToken resolves a bearer token to a teacher id. It fails with
// ErrInvalidToken when the prefix does not match or the id segment is empty
// or malformed.
func ParseTeacherToken(token string) (uint, error) {
	parts := strings.Split(strings.TrimSpace(token), "_")
	if len(parts) < 3 || parts[0] != teacherTokenPrefix || parts[1] == "" {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}

	return uint(id), nil
}
