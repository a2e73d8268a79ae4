package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

type catalogService struct {
	repo ports.SetlistRepository
}

func NewCatalogService(repo ports.SetlistRepository) ports.CatalogService {
	return &catalogService{
		repo: repo,
	}
}

func (s *catalogService) CreateSetlist(ctx context.Context, input ports.CreateSetlistInput) (*domain.Setlist, error) {
	if input.ShowID == "" {
		return nil, errors.New("show id is required")
	}

	setlistID := uuid.New()
	now := time.Now()

	setlist := &domain.Setlist{
		ID:        setlistID,
		ShowID:    input.ShowID,
		CreatedAt: now,
	}

	for _, in := range input.Songs {
		name := strings.TrimSpace(in.DisplayName)
		if name == "" {
			continue
		}
		setlist.Songs = append(setlist.Songs, domain.Song{
			ID:          uuid.New(),
			SetlistID:   setlistID,
			DisplayName: name,
			SourceRef:   in.SourceRef,
			CreatedAt:   now,
		})
	}

	if len(setlist.Songs) == 0 {
		return nil, errors.New("at least one song is required")
	}

	if err := s.repo.SaveSetlist(ctx, setlist); err != nil {
		return nil, err
	}

	return setlist, nil
}

func (s *catalogService) SuggestSong(ctx context.Context, setlistID uuid.UUID, input ports.SongInput) (*domain.Song, error) {
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, errors.New("song name is required")
	}

	if _, err := s.repo.GetSetlist(ctx, setlistID); err != nil {
		return nil, err
	}

	song := &domain.Song{
		ID:             uuid.New(),
		SetlistID:      setlistID,
		DisplayName:    name,
		SourceRef:      input.SourceRef,
		IsFanSuggested: true,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.AddSong(ctx, song); err != nil {
		return nil, err
	}

	return song, nil
}

func (s *catalogService) GetSetlist(ctx context.Context, id string) (*domain.Setlist, error) {
	setlistID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrSetlistNotFound
	}

	return s.repo.GetSetlist(ctx, setlistID)
}
