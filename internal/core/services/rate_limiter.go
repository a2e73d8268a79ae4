package services

import (
	"context"
	"fmt"
	"time"

	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

// RateLimiterConfig holds the vote quota policy. Users get a rolling window;
// guests get a total cap and must sign in once it is spent.
type RateLimiterConfig struct {
	UserLimit  int64
	UserWindow time.Duration
	GuestLimit int64
}

// storeRateLimiter counts vote rows in the store rather than keeping a
// process-local counter. The store is shared state, so the check stays exact
// in a horizontally scaled deployment, at the cost of one indexed query per
// cast attempt.
type storeRateLimiter struct {
	voteRepo ports.VoteRepository
	cfg      RateLimiterConfig
	now      func() time.Time
}

func NewStoreRateLimiter(voteRepo ports.VoteRepository, cfg RateLimiterConfig) ports.VoteRateLimiter {
	return &storeRateLimiter{
		voteRepo: voteRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (l *storeRateLimiter) Allow(ctx context.Context, identity domain.Identity) (ports.RateLimitDecision, error) {
	if identity.IsGuest() {
		return l.allowGuest(ctx, identity)
	}
	return l.allowUser(ctx, identity)
}

func (l *storeRateLimiter) allowGuest(ctx context.Context, identity domain.Identity) (ports.RateLimitDecision, error) {
	total, err := l.voteRepo.CountAll(ctx, identity)
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("failed to count guest votes: %w", err)
	}
	if total >= l.cfg.GuestLimit {
		// Guests do not replenish; RetryAfter stays zero.
		return ports.RateLimitDecision{Allowed: false}, nil
	}
	return ports.RateLimitDecision{Allowed: true}, nil
}

func (l *storeRateLimiter) allowUser(ctx context.Context, identity domain.Identity) (ports.RateLimitDecision, error) {
	now := l.now()
	since := now.Add(-l.cfg.UserWindow)

	count, oldest, err := l.voteRepo.WindowUsage(ctx, identity, since)
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("failed to count window votes: %w", err)
	}
	if count < l.cfg.UserLimit {
		return ports.RateLimitDecision{Allowed: true}, nil
	}

	// Rolling window: the next slot opens when the oldest vote in the window
	// ages out.
	retryAfter := oldest.Add(l.cfg.UserWindow).Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return ports.RateLimitDecision{Allowed: false, RetryAfter: retryAfter}, nil
}
