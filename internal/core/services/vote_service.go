package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

type voteService struct {
	setlistRepo ports.SetlistRepository
	voteRepo    ports.VoteRepository
	aggregates  ports.VoteAggregateReader
	limiter     ports.VoteRateLimiter
	notifier    ports.ChangeNotifier
	log         *slog.Logger
	now         func() time.Time
}

func NewVoteService(
	setlistRepo ports.SetlistRepository,
	voteRepo ports.VoteRepository,
	aggregates ports.VoteAggregateReader,
	limiter ports.VoteRateLimiter,
	notifier ports.ChangeNotifier,
	log *slog.Logger,
) ports.VoteService {
	return &voteService{
		setlistRepo: setlistRepo,
		voteRepo:    voteRepo,
		aggregates:  aggregates,
		limiter:     limiter,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

func (s *voteService) CastVote(ctx context.Context, input ports.CastVoteInput) (*ports.CastVoteResult, error) {
	setlistID, exists, err := s.setlistRepo.SongLocation(ctx, input.SongID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve song: %w", err)
	}
	if !exists {
		return nil, domain.ErrSongNotFound
	}

	decision, err := s.limiter.Allow(ctx, input.Identity)
	if err != nil {
		return nil, fmt.Errorf("failed to check vote quota: %w", err)
	}
	if !decision.Allowed {
		return nil, &domain.RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	vote := &domain.Vote{
		ID:       uuid.New(),
		Identity: input.Identity,
		SongID:   input.SongID,
		CastAt:   s.now(),
	}

	count, err := s.voteRepo.CastVote(ctx, vote)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			// Expected on duplicate clicks and timeout retries, not an error.
			s.log.Debug("duplicate vote rejected", "song_id", input.SongID)
			return nil, domain.ErrAlreadyVoted
		}
		return nil, err
	}

	// The vote is durable at this point. Notification is best-effort: a missed
	// push is healed by the snapshot read on resubscription.
	s.notifier.Publish(ports.CountUpdate{
		SetlistID: setlistID,
		SongID:    input.SongID,
		VoteCount: count,
	})

	return &ports.CastVoteResult{SongID: input.SongID, VoteCount: count}, nil
}

func (s *voteService) Snapshot(ctx context.Context, setlistID uuid.UUID, viewer domain.Identity) ([]domain.SongTally, error) {
	if _, err := s.setlistRepo.GetSetlist(ctx, setlistID); err != nil {
		return nil, err
	}
	return s.aggregates.Snapshot(ctx, setlistID, viewer)
}
