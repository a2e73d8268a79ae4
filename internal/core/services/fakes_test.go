package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

// fakeVoteRepo is an in-memory vote store enforcing the same uniqueness
// semantics as the postgres adapter.
type fakeVoteRepo struct {
	mu     sync.Mutex
	votes  map[string]domain.Vote // identity|song -> vote
	counts map[uuid.UUID]int64
	err    error
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{
		votes:  make(map[string]domain.Vote),
		counts: make(map[uuid.UUID]int64),
	}
}

func voteKey(identity domain.Identity, songID uuid.UUID) string {
	return identity.String() + "|" + songID.String()
}

func (r *fakeVoteRepo) CastVote(_ context.Context, vote *domain.Vote) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	key := voteKey(vote.Identity, vote.SongID)
	if _, ok := r.votes[key]; ok {
		return 0, domain.ErrAlreadyVoted
	}
	r.votes[key] = *vote
	r.counts[vote.SongID]++
	return r.counts[vote.SongID], nil
}

func (r *fakeVoteRepo) HasVoted(_ context.Context, identity domain.Identity, songID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.votes[voteKey(identity, songID)]
	return ok, nil
}

func (r *fakeVoteRepo) WindowUsage(_ context.Context, identity domain.Identity, since time.Time) (int64, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, time.Time{}, r.err
	}
	var count int64
	var oldest time.Time
	for _, v := range r.votes {
		if v.Identity != identity || v.CastAt.Before(since) {
			continue
		}
		count++
		if oldest.IsZero() || v.CastAt.Before(oldest) {
			oldest = v.CastAt
		}
	}
	return count, oldest, nil
}

func (r *fakeVoteRepo) CountAll(_ context.Context, identity domain.Identity) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var count int64
	for _, v := range r.votes {
		if v.Identity == identity {
			count++
		}
	}
	return count, nil
}

// seed inserts a vote directly, bypassing the service path.
func (r *fakeVoteRepo) seed(identity domain.Identity, songID uuid.UUID, castAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[voteKey(identity, songID)] = domain.Vote{
		ID:       uuid.New(),
		Identity: identity,
		SongID:   songID,
		CastAt:   castAt,
	}
	r.counts[songID]++
}

type fakeSetlistRepo struct {
	mu       sync.Mutex
	setlists map[uuid.UUID]*domain.Setlist
	songs    map[uuid.UUID]uuid.UUID // song -> setlist
}

func newFakeSetlistRepo() *fakeSetlistRepo {
	return &fakeSetlistRepo{
		setlists: make(map[uuid.UUID]*domain.Setlist),
		songs:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *fakeSetlistRepo) SaveSetlist(_ context.Context, setlist *domain.Setlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setlists[setlist.ID] = setlist
	for _, song := range setlist.Songs {
		r.songs[song.ID] = setlist.ID
	}
	return nil
}

func (r *fakeSetlistRepo) GetSetlist(_ context.Context, id uuid.UUID) (*domain.Setlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setlist, ok := r.setlists[id]
	if !ok {
		return nil, domain.ErrSetlistNotFound
	}
	return setlist, nil
}

func (r *fakeSetlistRepo) ListSetlistIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.setlists))
	for id := range r.setlists {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeSetlistRepo) AddSong(_ context.Context, song *domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	setlist, ok := r.setlists[song.SetlistID]
	if !ok {
		return domain.ErrSetlistNotFound
	}
	setlist.Songs = append(setlist.Songs, *song)
	r.songs[song.ID] = song.SetlistID
	return nil
}

func (r *fakeSetlistRepo) SongLocation(_ context.Context, songID uuid.UUID) (uuid.UUID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setlistID, ok := r.songs[songID]
	return setlistID, ok, nil
}

func (r *fakeSetlistRepo) ListSongs(_ context.Context, setlistID uuid.UUID) ([]domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setlist, ok := r.setlists[setlistID]
	if !ok {
		return nil, domain.ErrSetlistNotFound
	}
	return setlist.Songs, nil
}

type fakeLimiter struct {
	decision ports.RateLimitDecision
	err      error
	calls    int
}

func (l *fakeLimiter) Allow(context.Context, domain.Identity) (ports.RateLimitDecision, error) {
	l.calls++
	return l.decision, l.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	updates []ports.CountUpdate
}

func (n *fakeNotifier) Subscribe(uuid.UUID) (<-chan ports.CountUpdate, func()) {
	ch := make(chan ports.CountUpdate)
	close(ch)
	return ch, func() {}
}

func (n *fakeNotifier) Publish(update ports.CountUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
}

func (n *fakeNotifier) published() []ports.CountUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.CountUpdate(nil), n.updates...)
}

type fakeAggregates struct {
	mu        sync.Mutex
	tallies   map[uuid.UUID][]domain.SongTally
	recounted []uuid.UUID
	err       error
}

func newFakeAggregates() *fakeAggregates {
	return &fakeAggregates{tallies: make(map[uuid.UUID][]domain.SongTally)}
}

func (a *fakeAggregates) GetCounts(_ context.Context, setlistID uuid.UUID) ([]domain.SongCount, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	counts := make([]domain.SongCount, 0, len(a.tallies[setlistID]))
	for _, t := range a.tallies[setlistID] {
		counts = append(counts, domain.SongCount{SongID: t.SongID, VoteCount: t.VoteCount})
	}
	return counts, nil
}

func (a *fakeAggregates) Snapshot(_ context.Context, setlistID uuid.UUID, _ domain.Identity) ([]domain.SongTally, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tallies[setlistID], a.err
}

func (a *fakeAggregates) RecountSetlist(_ context.Context, setlistID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.recounted = append(a.recounted, setlistID)
	return nil
}
