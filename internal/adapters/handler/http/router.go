package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	identity *IdentityResolver,
	voteHandler *VoteHandler,
	setlistHandler *SetlistHandler,
	streamHandler *StreamHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(identity.Middleware)

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		r.Route("/setlists", func(r chi.Router) {
			r.Post("/", setlistHandler.CreateSetlist)
			r.Get("/{id}", setlistHandler.GetSetlist)
			r.Post("/{id}/songs", setlistHandler.SuggestSong)
			r.Get("/{id}/votes", setlistHandler.GetVotes)
			r.Get("/{id}/stream", streamHandler.Stream)
		})

		r.Route("/votes", func(r chi.Router) {
			r.Post("/", voteHandler.CastVote)
		})
	})

	return r
}
