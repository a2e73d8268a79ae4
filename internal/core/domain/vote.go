package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is immutable once cast. At most one vote exists per (identity, song)
// pair; the votes table enforces this with a unique index.
type Vote struct {
	ID       uuid.UUID `json:"id"`
	Identity Identity  `json:"-"`
	SongID   uuid.UUID `json:"song_id"`
	CastAt   time.Time `json:"cast_at"`
}

// SongCount is the materialized vote count for one song.
type SongCount struct {
	SongID    uuid.UUID `json:"song_id"`
	VoteCount int64     `json:"vote_count"`
}

// SongTally is one row of the snapshot a setlist page loads: the current count
// plus whether the requesting viewer already voted for the song.
type SongTally struct {
	SongID         uuid.UUID `json:"song_id"`
	VoteCount      int64     `json:"vote_count"`
	ViewerHasVoted bool      `json:"viewer_has_voted"`
}
