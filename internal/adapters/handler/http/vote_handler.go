package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
	"github.com/setvote/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	log     *slog.Logger
}

func NewVoteHandler(service ports.VoteService, log *slog.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		log:     log,
	}
}

type castVoteRequest struct {
	SongID uuid.UUID `json:"song_id"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SongID == uuid.Nil {
		http.Error(w, "song_id is required", http.StatusBadRequest)
		return
	}

	input := ports.CastVoteInput{
		Identity: IdentityFrom(r.Context()),
		SongID:   req.SongID,
	}

	result, err := h.service.CastVote(r.Context(), input)
	if err != nil {
		h.writeVoteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.log.Error("failed to encode vote response", "error", err)
	}
}

func (h *VoteHandler) writeVoteError(w http.ResponseWriter, err error) {
	var rateErr *domain.RateLimitedError

	switch {
	case errors.Is(err, domain.ErrSongNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyVoted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &rateErr):
		if rateErr.RetryAfter > 0 {
			seconds := int64(math.Ceil(rateErr.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
		}
		http.Error(w, domain.ErrRateLimited.Error(), http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrUnavailable):
		h.log.Error("vote store unavailable", "error", err)
		http.Error(w, "service unavailable, retry later", http.StatusServiceUnavailable)
	default:
		h.log.Error("cast vote failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
