package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
)

// VoteRepository is the durable vote store. CastVote must be atomic and
// idempotent: the vote row insert and the counter increment share one
// transaction, and a second cast for the same (identity, song) pair fails with
// domain.ErrAlreadyVoted via the unique index, never by check-then-insert.
type VoteRepository interface {
	// CastVote inserts the vote and increments the song's materialized count,
	// returning the post-increment count so the caller reads its own write.
	CastVote(ctx context.Context, vote *domain.Vote) (int64, error)
	HasVoted(ctx context.Context, identity domain.Identity, songID uuid.UUID) (bool, error)
	// WindowUsage returns how many votes the identity cast since the given
	// instant and the cast time of the oldest of them. The oldest timestamp is
	// the zero time when the count is zero.
	WindowUsage(ctx context.Context, identity domain.Identity, since time.Time) (int64, time.Time, error)
	CountAll(ctx context.Context, identity domain.Identity) (int64, error)
}

// VoteAggregateReader unifies the two count strategies: the materialized
// counters are the fast read path, RecountSetlist recomputes them from vote
// rows and is the repair path.
type VoteAggregateReader interface {
	GetCounts(ctx context.Context, setlistID uuid.UUID) ([]domain.SongCount, error)
	Snapshot(ctx context.Context, setlistID uuid.UUID, viewer domain.Identity) ([]domain.SongTally, error)
	RecountSetlist(ctx context.Context, setlistID uuid.UUID) error
}

type CastVoteInput struct {
	Identity domain.Identity
	SongID   uuid.UUID
}

type CastVoteResult struct {
	SongID    uuid.UUID `json:"song_id"`
	VoteCount int64     `json:"vote_count"`
}

type VoteService interface {
	CastVote(ctx context.Context, input CastVoteInput) (*CastVoteResult, error)
	Snapshot(ctx context.Context, setlistID uuid.UUID, viewer domain.Identity) ([]domain.SongTally, error)
}

type RecountService interface {
	RecountAll(ctx context.Context) error
}
