package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// CastVote inserts the vote row and bumps the song's materialized counter in
// one transaction. Duplicate casts hit the unique index on (identity, song_id)
// and surface as domain.ErrAlreadyVoted; a reader can never observe the vote
// committed without the counter reflecting it.
func (r *voteRepository) CastVote(ctx context.Context, vote *domain.Vote) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapError("begin cast vote", err)
	}
	defer tx.Rollback()

	insertVote := `
		INSERT INTO votes (id, identity, song_id, cast_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, insertVote, vote.ID, vote.Identity.String(), vote.SongID, vote.CastAt)
	if err != nil {
		return 0, mapError("insert vote", err)
	}

	bumpCount := `
		INSERT INTO song_vote_counts (song_id, setlist_id, vote_count, last_updated_at)
		SELECT s.id, s.setlist_id, 1, NOW()
		FROM songs s
		WHERE s.id = $1
		ON CONFLICT (song_id) DO UPDATE
		SET vote_count = song_vote_counts.vote_count + 1,
		    last_updated_at = NOW()
		RETURNING vote_count
	`
	var count int64
	if err := tx.QueryRowContext(ctx, bumpCount, vote.SongID).Scan(&count); err != nil {
		return 0, mapError("increment vote count", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, mapError("commit cast vote", err)
	}

	return count, nil
}

func (r *voteRepository) HasVoted(ctx context.Context, identity domain.Identity, songID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM votes WHERE identity = $1 AND song_id = $2 LIMIT 1`

	var exists int
	err := r.db.QueryRowContext(ctx, query, identity.String(), songID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

func (r *voteRepository) WindowUsage(ctx context.Context, identity domain.Identity, since time.Time) (int64, time.Time, error) {
	query := `
		SELECT COUNT(*), MIN(cast_at)
		FROM votes
		WHERE identity = $1 AND cast_at >= $2
	`

	var count int64
	var oldest sql.NullTime
	err := r.db.QueryRowContext(ctx, query, identity.String(), since).Scan(&count, &oldest)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count votes in window: %w", err)
	}
	return count, oldest.Time, nil
}

func (r *voteRepository) CountAll(ctx context.Context, identity domain.Identity) (int64, error) {
	query := `SELECT COUNT(*) FROM votes WHERE identity = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, identity.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}
