package service

import (
	"context"
	"crypto/rand"
	"fmt"
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLength   = 6
)

// JoinCodeGenerator produces a candidate join code.
type JoinCodeGenerator func() string

// JoinCodeExistsFunc reports whether a candidate collides with a live contest.
type JoinCodeExistsFunc func(ctx context.Context, code string) (bool, error)

// JoinCodeAllocator hands out short human-entry codes. The existence check is
// an optimistic pre-filter only: two allocations can race on the same
// candidate, and the unique index on contests.join_code decides the loser,
// whose insert the caller retries as a fresh allocation.
type JoinCodeAllocator struct {
	generate    JoinCodeGenerator
	exists      JoinCodeExistsFunc
	maxAttempts int
}

// NewJoinCodeAllocator constructs an allocator. A nil generator falls back to
// the crypto/rand default.
func NewJoinCodeAllocator(generate JoinCodeGenerator, exists JoinCodeExistsFunc, maxAttempts int) *JoinCodeAllocator {
	if generate == nil {
		generate = RandomJoinCode
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &JoinCodeAllocator{generate: generate, exists: exists, maxAttempts: maxAttempts}
}

// Allocate returns a candidate code that did not collide with any live
// contest at check time.
func (a *JoinCodeAllocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		code := a.generate()

		taken, err := a.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("join code existence check: %w", err)
		}

		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("exhausted %d join code attempts", a.maxAttempts)
}

// RandomJoinCode draws a 6-character uppercase base-36 code.
func RandomJoinCode() string {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; a fixed
		// candidate still resolves through the collision loop.
		return "AAAAAA"
	}

	for i := range buf {
		buf[i] = joinCodeAlphabet[int(buf[i])%len(joinCodeAlphabet)]
	}

	return string(buf)
}
