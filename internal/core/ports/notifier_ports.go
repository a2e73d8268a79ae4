package ports

import (
	"github.com/google/uuid"
)

// CountUpdate is pushed to every subscriber of a setlist after a vote commits.
// Delivery is a hint to refresh the song's count, not a delta: subscribers
// must tolerate duplicates, drops, and reordering, and heal via the snapshot
// read on (re)subscription.
type CountUpdate struct {
	SetlistID uuid.UUID `json:"setlist_id"`
	SongID    uuid.UUID `json:"song_id"`
	VoteCount int64     `json:"vote_count"`
}

// ChangeNotifier fans aggregate changes out to viewers of a setlist.
// Subscribe returns the update stream and an unsubscribe function that is
// idempotent: calling it twice, or for an already-gone subscription, is safe.
// Publish never fails; a committed vote is never rolled back because a
// notification could not be delivered.
type ChangeNotifier interface {
	Subscribe(setlistID uuid.UUID) (<-chan CountUpdate, func())
	Publish(update CountUpdate)
}
