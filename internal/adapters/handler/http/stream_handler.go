package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/ports"
)

// StreamHandler serves the realtime channel as server-sent events. Each event
// is a refresh hint carrying the song's current count; clients must tolerate
// duplicates and drops and re-read the snapshot endpoint after a reconnect.
type StreamHandler struct {
	notifier ports.ChangeNotifier
	log      *slog.Logger
}

func NewStreamHandler(notifier ports.ChangeNotifier, log *slog.Logger) *StreamHandler {
	return &StreamHandler{
		notifier: notifier,
		log:      log,
	}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	setlistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid setlist id", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	updates, cancel := h.notifier.Subscribe(setlistID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client the subscription is live so it knows to (re)load the
	// snapshot; anything cast before this point is only in the snapshot.
	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(update)
			if err != nil {
				h.log.Error("failed to marshal count update", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: count\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
