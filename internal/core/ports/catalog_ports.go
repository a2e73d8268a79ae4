package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
)

// SetlistRepository is the catalog read/write interface the vote engine needs.
// Catalog synchronization from external providers happens elsewhere; the vote
// engine only validates targets against it.
type SetlistRepository interface {
	SaveSetlist(ctx context.Context, setlist *domain.Setlist) error
	GetSetlist(ctx context.Context, id uuid.UUID) (*domain.Setlist, error)
	ListSetlistIDs(ctx context.Context) ([]uuid.UUID, error)
	AddSong(ctx context.Context, song *domain.Song) error
	// SongLocation reports whether a song exists and, if so, which setlist it
	// belongs to. The setlist id keys the change notification channel.
	SongLocation(ctx context.Context, songID uuid.UUID) (uuid.UUID, bool, error)
	ListSongs(ctx context.Context, setlistID uuid.UUID) ([]domain.Song, error)
}

type SongInput struct {
	DisplayName string
	SourceRef   string
}

type CreateSetlistInput struct {
	ShowID string
	Songs  []SongInput
}

type CatalogService interface {
	CreateSetlist(ctx context.Context, input CreateSetlistInput) (*domain.Setlist, error)
	SuggestSong(ctx context.Context, setlistID uuid.UUID, input SongInput) (*domain.Song, error)
	GetSetlist(ctx context.Context, id string) (*domain.Setlist, error)
}
