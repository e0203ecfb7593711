package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/query"
	"github.com/starford/saigoneats/internal/venueservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *venueservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *venueservice.Service) *Handler {
	return &Handler{svc: svc}
}

// selectionFromQuery reads filter and sort parameters. Long and short
// parameter names are both accepted.
func selectionFromQuery(r *http.Request) query.Selection {
	q := r.URL.Query()
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := q.Get(k); v != "" {
				return v
			}
		}
		return ""
	}
	return query.Selection{
		Type:       first("type"),
		Cuisine:    first("cuisine"),
		District:   first("district"),
		PriceRange: first("price", "priceRange"),
		SearchTerm: first("q", "search"),
		SortBy:     first("sort", "sortBy"),
	}
}

// ListVenues handles GET /venues.
//
//	@Summary		Filter and sort the merged venue directory
//	@Tags			venues
//	@Produce		json
//	@Param			type		query		string	false	"Venue type"
//	@Param			cuisine		query		string	false	"Cuisine or feature tag"
//	@Param			district	query		string	false	"District"
//	@Param			price		query		string	false	"Price range"	Enums(low, medium, high)
//	@Param			q			query		string	false	"Free-text search"
//	@Param			sort		query		string	false	"Sort field"	Enums(name, rating, priceRange)
//	@Success		200			{object}	VenueListResponse
//	@Router			/venues [get]
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r)
	venues := h.svc.Query(r.Context(), sel)
	writeJSON(w, http.StatusOK, VenueListResponse{
		Venues:    venues,
		Total:     len(venues),
		Selection: sel,
	})
}

// RecentVenues handles GET /venues/recent.
//
//	@Summary		Newest approved community venues
//	@Tags			venues
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{object}	VenueListResponse
//	@Router			/venues/recent [get]
func (h *Handler) RecentVenues(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	venues, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, "recent venues", err)
		return
	}
	writeJSON(w, http.StatusOK, VenueListResponse{Venues: venues, Total: len(venues)})
}

// GetVenue handles GET /venues/{id}.
//
//	@Summary		Get one venue by id
//	@Tags			venues
//	@Produce		json
//	@Param			id	path		string	true	"Venue id"
//	@Success		200	{object}	Venue
//	@Failure		404	{object}	errResponse
//	@Router			/venues/{id} [get]
func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get venue", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Vote handles POST /venues/{id}/votes.
//
//	@Summary		Upvote a venue
//	@Tags			votes
//	@Produce		json
//	@Param			id			path		string	true	"Venue id"
//	@Param			X-Voter-ID	header		string	true	"Anonymous voter id"
//	@Success		200			{object}	VoteResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Router			/venues/{id}/votes [post]
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	h.changeVote(w, r, true)
}

// Unvote handles DELETE /venues/{id}/votes.
//
//	@Summary		Withdraw an upvote
//	@Tags			votes
//	@Produce		json
//	@Param			id			path		string	true	"Venue id"
//	@Param			X-Voter-ID	header		string	true	"Anonymous voter id"
//	@Success		200			{object}	VoteResponse
//	@Failure		404			{object}	errResponse
//	@Router			/venues/{id}/votes [delete]
func (h *Handler) Unvote(w http.ResponseWriter, r *http.Request) {
	h.changeVote(w, r, false)
}

func (h *Handler) changeVote(w http.ResponseWriter, r *http.Request, up bool) {
	id := chi.URLParam(r, "id")
	voter := voterFrom(r.Context())

	var (
		n   int
		err error
	)
	if up {
		n, err = h.svc.Vote(r.Context(), id, voter)
	} else {
		n, err = h.svc.Unvote(r.Context(), id, voter)
	}
	if err != nil {
		writeError(w, "vote", err)
		return
	}
	writeJSON(w, http.StatusOK, VoteResponse{ID: id, Votes: n, Voted: up})
}

// Taxonomy handles GET /taxonomy.
//
//	@Summary		List accepted filter values
//	@Tags			venues
//	@Produce		json
//	@Success		200	{object}	Taxonomy
//	@Router			/taxonomy [get]
func (h *Handler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Taxonomy(r.Context()))
}

// Stats handles GET /stats.
//
//	@Summary		Collection counts
//	@Tags			venues
//	@Produce		json
//	@Success		200	{object}	Stats
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

// Submit handles POST /submissions.
//
//	@Summary		Suggest a new venue
//	@Tags			submissions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SubmitRequest	true	"Suggestion"
//	@Success		201		{object}	Submission
//	@Failure		400		{object}	errResponse
//	@Router			/submissions [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sub, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		writeError(w, "submit", err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ListSubmissions handles GET /submissions.
//
//	@Summary		List stored submissions
//	@Tags			moderation
//	@Produce		json
//	@Param			status	query		string	false	"Moderation status"	Enums(pending, approved, rejected)
//	@Param			sort	query		string	false	"Ordering"			Enums(recent)
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SubmissionListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/submissions [get]
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := venueservice.ListOptions{
		Recent: strings.EqualFold(q.Get("sort"), "recent"),
	}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("status"); raw != "" {
		status, ok := models.ParseSubmissionStatus(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown status"))
			return
		}
		opts.Status = status
	}

	subs, err := h.svc.ListSubmissions(r.Context(), opts)
	if err != nil {
		writeError(w, "list submissions", err)
		return
	}
	writeJSON(w, http.StatusOK, SubmissionListResponse{Submissions: subs, Total: len(subs)})
}

// GetSubmission handles GET /submissions/{id}.
//
//	@Summary		Get one stored submission
//	@Tags			moderation
//	@Produce		json
//	@Param			id	path		string	true	"Submission id"
//	@Success		200	{object}	Submission
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/submissions/{id} [get]
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.GetSubmission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get submission", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Approve handles POST /submissions/{id}/approve.
//
//	@Summary		Approve a submission
//	@Tags			moderation
//	@Produce		json
//	@Param			id	path		string	true	"Submission id"
//	@Success		200	{object}	Venue
//	@Failure		404	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/submissions/{id}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "approve", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Reject handles POST /submissions/{id}/reject.
//
//	@Summary		Reject a submission
//	@Tags			moderation
//	@Param			id	path	string	true	"Submission id"
//	@Success		204	"Submission rejected"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/submissions/{id}/reject [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "reject", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Promote handles POST /submissions/{id}/promote.
//
//	@Summary		Copy an approved submission into the curated list
//	@Tags			moderation
//	@Produce		json
//	@Param			id	path		string	true	"Submission id"
//	@Success		200	{object}	Venue
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/submissions/{id}/promote [post]
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Promote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "promote", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Resync handles POST /admin/resync.
//
//	@Summary		Reload the curated file and the submission feed
//	@Tags			moderation
//	@Produce		json
//	@Success		200	{object}	ResyncResponse
//	@Security		BearerAuth
//	@Router			/admin/resync [post]
func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	meta, err := h.svc.Resync(r.Context())
	if err != nil {
		writeError(w, "resync", err)
		return
	}
	writeJSON(w, http.StatusOK, ResyncResponse{Source: meta, Stats: h.svc.Stats(r.Context())})
}
