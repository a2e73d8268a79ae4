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

type setlistRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

func NewSetlistRepository(db *sql.DB) ports.SetlistRepository {
	return &setlistRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *setlistRepository) SaveSetlist(ctx context.Context, setlist *domain.Setlist) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	querySetlist := `
		INSERT INTO setlists (id, show_id)
		VALUES ($1, $2)
	`
	_, err = tx.ExecContext(ctx, querySetlist, setlist.ID, setlist.ShowID)
	if err != nil {
		return fmt.Errorf("failed to insert setlist: %w", err)
	}

	querySong := `
		INSERT INTO songs (id, setlist_id, display_name, source_ref, is_fan_suggested)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, querySong)
	if err != nil {
		return fmt.Errorf("failed to prepare song statement: %w", err)
	}
	defer stmt.Close()

	for _, song := range setlist.Songs {
		_, err = stmt.ExecContext(ctx, song.ID, song.SetlistID, song.DisplayName, song.SourceRef, song.IsFanSuggested)
		if err != nil {
			return fmt.Errorf("failed to insert song: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *setlistRepository) GetSetlist(ctx context.Context, id uuid.UUID) (*domain.Setlist, error) {
	query := `
		SELECT id, show_id, created_at
		FROM setlists
		WHERE id = $1
	`

	var setlist domain.Setlist
	err := r.db.QueryRowContext(ctx, query, id).Scan(&setlist.ID, &setlist.ShowID, &setlist.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSetlistNotFound
		}
		return nil, fmt.Errorf("failed to get setlist: %w", err)
	}

	songs, err := r.ListSongs(ctx, setlist.ID)
	if err != nil {
		return nil, err
	}
	setlist.Songs = songs

	return &setlist, nil
}

func (r *setlistRepository) ListSetlistIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT id FROM setlists`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list setlists: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan setlist id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setlists: %w", err)
	}

	return ids, nil
}

func (r *setlistRepository) AddSong(ctx context.Context, song *domain.Song) error {
	query := `
		INSERT INTO songs (id, setlist_id, display_name, source_ref, is_fan_suggested)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, song.ID, song.SetlistID, song.DisplayName, song.SourceRef, song.IsFanSuggested)
	if err != nil {
		return mapError("add song", err)
	}
	return nil
}

func (r *setlistRepository) SongLocation(ctx context.Context, songID uuid.UUID) (uuid.UUID, bool, error) {
	query := `SELECT setlist_id FROM songs WHERE id = $1`

	var setlistID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, songID).Scan(&setlistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to locate song: %w", err)
	}
	return setlistID, true, nil
}

func (r *setlistRepository) ListSongs(ctx context.Context, setlistID uuid.UUID) ([]domain.Song, error) {
	query, args, err := r.builder.
		Select("id", "setlist_id", "display_name", "source_ref", "is_fan_suggested", "created_at").
		From("songs").
		Where(squirrel.Eq{"setlist_id": setlistID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build songs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch songs: %w", err)
	}
	defer rows.Close()

	var songs []domain.Song
	for rows.Next() {
		var song domain.Song
		if err := rows.Scan(&song.ID, &song.SetlistID, &song.DisplayName, &song.SourceRef, &song.IsFanSuggested, &song.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating songs: %w", err)
	}

	return songs, nil
}
