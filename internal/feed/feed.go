package feed

import "github.com/starford/saigoneats/internal/models"

// Repository is the persistence surface the service layer depends on.
// Consumers should depend on it rather than on *DB so tests can swap in
// fakes.
type Repository interface {
	InsertSubmission(s models.RawSubmission) error
	GetSubmission(id string) (models.RawSubmission, error)
	ListSubmissions(status models.SubmissionStatus) ([]models.RawSubmission, error)
	SetStatus(id string, status models.SubmissionStatus) error
	AddVote(venueID, voterID string) (int, error)
	RemoveVote(venueID, voterID string) (int, error)
	Tallies() (map[string]models.VoterSet, error)
	Close() error
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)
