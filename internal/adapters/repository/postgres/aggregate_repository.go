package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

type aggregateRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

func NewAggregateRepository(db *sql.DB) ports.VoteAggregateReader {
	return &aggregateRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *aggregateRepository) GetCounts(ctx context.Context, setlistID uuid.UUID) ([]domain.SongCount, error) {
	query, args, err := r.builder.
		Select("s.id", "COALESCE(c.vote_count, 0)").
		From("songs s").
		LeftJoin("song_vote_counts c ON c.song_id = s.id").
		Where(squirrel.Eq{"s.setlist_id": setlistID}).
		OrderBy("s.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build counts query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.SongCount
	for rows.Next() {
		var c domain.SongCount
		if err := rows.Scan(&c.SongID, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}

	return counts, nil
}

// Snapshot returns every song of the setlist with its current count and the
// viewer's voted flag, the payload of the initial page load and of the
// stream's reconnect refresh.
func (r *aggregateRepository) Snapshot(ctx context.Context, setlistID uuid.UUID, viewer domain.Identity) ([]domain.SongTally, error) {
	query, args, err := r.builder.
		Select("s.id", "COALESCE(c.vote_count, 0)").
		Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM votes v WHERE v.song_id = s.id AND v.identity = ?)",
			viewer.String(),
		)).
		From("songs s").
		LeftJoin("song_vote_counts c ON c.song_id = s.id").
		Where(squirrel.Eq{"s.setlist_id": setlistID}).
		OrderBy("s.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer rows.Close()

	var tallies []domain.SongTally
	for rows.Next() {
		var t domain.SongTally
		if err := rows.Scan(&t.SongID, &t.VoteCount, &t.ViewerHasVoted); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot: %w", err)
	}

	return tallies, nil
}

// RecountSetlist rebuilds the materialized counters of one setlist from the
// vote rows. Songs without votes get an explicit zero row so a recount also
// repairs counters inflated by manual edits.
func (r *aggregateRepository) RecountSetlist(ctx context.Context, setlistID uuid.UUID) error {
	query := `
		INSERT INTO song_vote_counts (song_id, setlist_id, vote_count, last_updated_at)
		SELECT s.id, s.setlist_id, COUNT(v.id), NOW()
		FROM songs s
		LEFT JOIN votes v ON v.song_id = s.id
		WHERE s.setlist_id = $1
		GROUP BY s.id, s.setlist_id
		ON CONFLICT (song_id) DO UPDATE
		SET vote_count = EXCLUDED.vote_count,
		    last_updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, setlistID)
	if err != nil {
		return fmt.Errorf("failed to recount setlist %s: %w", setlistID, err)
	}

	return nil
}
