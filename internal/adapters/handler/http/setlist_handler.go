package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

type SetlistHandler struct {
	catalog ports.CatalogService
	votes   ports.VoteService
	log     *slog.Logger
}

func NewSetlistHandler(catalog ports.CatalogService, votes ports.VoteService, log *slog.Logger) *SetlistHandler {
	return &SetlistHandler{
		catalog: catalog,
		votes:   votes,
		log:     log,
	}
}

type createSetlistRequest struct {
	ShowID string      `json:"show_id"`
	Songs  []songInput `json:"songs"`
}

type songInput struct {
	DisplayName string `json:"display_name"`
	SourceRef   string `json:"source_ref"`
}

func (h *SetlistHandler) CreateSetlist(w http.ResponseWriter, r *http.Request) {
	var req createSetlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreateSetlistInput{ShowID: req.ShowID}
	for _, s := range req.Songs {
		input.Songs = append(input.Songs, ports.SongInput{
			DisplayName: s.DisplayName,
			SourceRef:   s.SourceRef,
		})
	}

	setlist, err := h.catalog.CreateSetlist(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(setlist); err != nil {
		h.log.Error("failed to encode setlist response", "error", err)
	}
}

func (h *SetlistHandler) GetSetlist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	setlist, err := h.catalog.GetSetlist(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSetlistNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("failed to get setlist", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(setlist); err != nil {
		h.log.Error("failed to encode setlist response", "error", err)
	}
}

func (h *SetlistHandler) SuggestSong(w http.ResponseWriter, r *http.Request) {
	setlistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid setlist id", http.StatusBadRequest)
		return
	}

	var req songInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	song, err := h.catalog.SuggestSong(r.Context(), setlistID, ports.SongInput{
		DisplayName: req.DisplayName,
		SourceRef:   req.SourceRef,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSetlistNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(song); err != nil {
		h.log.Error("failed to encode song response", "error", err)
	}
}

// GetVotes serves the snapshot a setlist page loads first: every song with its
// current count and the viewer's voted flag. The realtime stream only refreshes
// what this endpoint establishes.
func (h *SetlistHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	setlistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid setlist id", http.StatusBadRequest)
		return
	}

	tallies, err := h.votes.Snapshot(r.Context(), setlistID, IdentityFrom(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrSetlistNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("failed to load vote snapshot", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if tallies == nil {
		tallies = []domain.SongTally{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tallies); err != nil {
		h.log.Error("failed to encode snapshot response", "error", err)
	}
}
