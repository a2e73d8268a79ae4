package ports

import (
	"context"
	"time"

	"github.com/setvote/api/internal/core/domain"
)

// RateLimitDecision is the outcome of a quota check. RetryAfter is only
// meaningful when Allowed is false; zero means the quota does not replenish.
type RateLimitDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// VoteRateLimiter enforces per-identity vote ceilings: a rolling window for
// authenticated users and a total cap for guests. The check is pure; the
// caller only proceeds to the vote store when allowed.
type VoteRateLimiter interface {
	Allow(ctx context.Context, identity domain.Identity) (RateLimitDecision, error)
}
