package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/saigoneats/internal/venueservice"
)

// NewRouter creates a chi router with all API routes mounted.
// Reads, votes and new submissions are public; moderation routes sit
// behind Bearer auth when authEnabled is true.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *venueservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Directory.
	r.Get("/venues", h.ListVenues)
	r.Get("/venues/recent", h.RecentVenues)
	r.Get("/venues/{id}", h.GetVenue)
	r.Get("/taxonomy", h.Taxonomy)
	r.Get("/stats", h.Stats)

	// Votes.
	r.Group(func(r chi.Router) {
		r.Use(RequireVoter)
		r.Post("/venues/{id}/votes", h.Vote)
		r.Delete("/venues/{id}/votes", h.Unvote)
	})

	// Suggestions.
	r.Post("/submissions", h.Submit)

	// Moderation.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Get("/submissions", h.ListSubmissions)
		r.Get("/submissions/{id}", h.GetSubmission)
		r.Post("/submissions/{id}/approve", h.Approve)
		r.Post("/submissions/{id}/reject", h.Reject)
		r.Post("/submissions/{id}/promote", h.Promote)
		r.Post("/admin/resync", h.Resync)
	})

	// SSE endpoint.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
