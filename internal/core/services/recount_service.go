package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/ports"
)

// recountService rebuilds every song's materialized count from the vote rows.
// It is the repair path for aggregates: the counters are maintained
// transactionally on each cast, so this only matters after manual fixes or a
// suspected drift.
type recountService struct {
	setlistRepo ports.SetlistRepository
	aggregates  ports.VoteAggregateReader
}

func NewRecountService(setlistRepo ports.SetlistRepository, aggregates ports.VoteAggregateReader) ports.RecountService {
	return &recountService{
		setlistRepo: setlistRepo,
		aggregates:  aggregates,
	}
}

func (s *recountService) RecountAll(ctx context.Context) error {
	setlistIDs, err := s.setlistRepo.ListSetlistIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list setlists: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(setlistIDs))

	for _, setlistID := range setlistIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := s.aggregates.RecountSetlist(ctx, id); err != nil {
				errChan <- fmt.Errorf("failed to recount setlist %s: %w", id, err)
			}
		}(setlistID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}
