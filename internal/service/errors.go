package service

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map these to HTTP statuses with errors.Is; the
// specific sentinels below wrap a category so a single check catches every
// variant. NotFound deliberately covers both "does not exist" and "exists but
// belongs to someone else" so resource existence never leaks across teachers.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrInvalidPhase    = errors.New("operation not allowed in current contest phase")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
)

// Specific failures, each bound to its category.
var (
	ErrTeacherNotFound     = fmt.Errorf("%w: teacher", ErrNotFound)
	ErrClassroomNotFound   = fmt.Errorf("%w: classroom", ErrNotFound)
	ErrContestNotFound     = fmt.Errorf("%w: contest", ErrNotFound)
	ErrSubmissionNotFound  = fmt.Errorf("%w: submission", ErrNotFound)
	ErrNicknameTaken       = fmt.Errorf("%w: nickname already taken in this contest", ErrConflict)
	ErrDuplicateSubmission = fmt.Errorf("%w: participant already submitted", ErrConflict)
	ErrDuplicateVote       = fmt.Errorf("%w: participant already voted", ErrConflict)
	ErrSelfVote            = fmt.Errorf("%w: cannot vote for own submission", ErrConflict)
	ErrEmailTaken          = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrInvalidToken        = fmt.Errorf("%w: invalid bearer token", ErrUnauthenticated)
	ErrInvalidSession      = fmt.Errorf("%w: unknown session for this contest", ErrUnauthenticated)
)

// ErrorCode returns the stable machine-readable code for a domain error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, ErrNicknameTaken):
		return "nickname_taken"
	case errors.Is(err, ErrDuplicateSubmission):
		return "duplicate_submission"
	case errors.Is(err, ErrDuplicateVote):
		return "duplicate_vote"
	case errors.Is(err, ErrSelfVote):
		return "self_vote"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	}
	return "internal_error"
}
