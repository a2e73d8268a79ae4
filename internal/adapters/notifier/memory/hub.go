// Package memory provides the in-process change notifier. Subscriptions are
// keyed by setlist because a setlist page renders every song's count together.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/ports"
)

const defaultBuffer = 16

type subscriber struct {
	ch chan ports.CountUpdate
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a viewer of the given setlist. The returned cancel
// function is idempotent; after it returns the channel is closed and no
// further updates arrive.
func (h *Hub) Subscribe(setlistID uuid.UUID) (<-chan ports.CountUpdate, func()) {
	sub := &subscriber{ch: make(chan ports.CountUpdate, h.buffer)}

	h.mu.Lock()
	set, ok := h.subs[setlistID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[setlistID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		set, ok := h.subs[setlistID]
		if !ok {
			return
		}
		if _, ok := set[sub]; !ok {
			return
		}
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, setlistID)
		}
		close(sub.ch)
	}

	return sub.ch, cancel
}

// Publish pushes an update to every current subscriber of the setlist. It
// never blocks: when a subscriber's buffer is full the oldest pending update
// is discarded in favor of the new one. Counts only grow, so keeping the
// newest value per delivery is safe, and the snapshot read heals anything a
// slow consumer misses.
func (h *Hub) Publish(update ports.CountUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[update.SetlistID] {
		select {
		case sub.ch <- update:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- update:
			default:
			}
		}
	}
}

// SubscriberCount reports active subscriptions for a setlist.
func (h *Hub) SubscriberCount(setlistID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[setlistID])
}
