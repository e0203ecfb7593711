package api

import (
	"github.com/starford/saigoneats/internal/catalog"
	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/query"
	"github.com/starford/saigoneats/internal/venueservice"
)

// SubmitRequest is the request body for a new suggestion (aliased from the
// domain layer).
type SubmitRequest = venueservice.SubmitInput

// Venue is a merged directory record.
type Venue = models.Venue

// Submission is a stored community submission.
type Submission = models.RawSubmission

// Taxonomy lists accepted filter values.
type Taxonomy = venueservice.Taxonomy

// Stats summarises the collection.
type Stats = catalog.Stats

// VenueListResponse wraps query results.
type VenueListResponse struct {
	Venues    []Venue         `json:"venues" validate:"required"`
	Total     int             `json:"total" example:"42" validate:"required"`
	Selection query.Selection `json:"selection"`
}

// SubmissionListResponse wraps stored submissions.
type SubmissionListResponse struct {
	Submissions []Submission `json:"submissions" validate:"required"`
	Total       int          `json:"total" example:"3" validate:"required"`
}

// VoteResponse reports a venue's tally after a vote change.
type VoteResponse struct {
	ID    string `json:"id" example:"pho-hoa" validate:"required"`
	Votes int    `json:"votes" example:"12" validate:"required"`
	Voted bool   `json:"voted"`
}

// ResyncResponse reports the curated file state after a reload.
type ResyncResponse struct {
	Source models.SourceMeta `json:"source"`
	Stats  Stats             `json:"stats"`
}
