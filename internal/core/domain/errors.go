package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSetlistNotFound = errors.New("setlist not found")
	ErrSongNotFound    = errors.New("song not found")
	ErrAlreadyVoted    = errors.New("already voted for this song")
	ErrRateLimited     = errors.New("vote rate limit exceeded")
	ErrUnavailable     = errors.New("vote store unavailable")
)

// RateLimitedError carries the retry hint surfaced as the Retry-After header.
// A zero RetryAfter means the quota does not replenish (guest limit).
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%v (retry after %s)", ErrRateLimited, e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
