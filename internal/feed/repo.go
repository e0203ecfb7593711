package feed

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/saigoneats/internal/apperr"
	"github.com/starford/saigoneats/internal/models"
)

// payload is the JSON column of a submission row. Identity, moderation
// state and votes live in their own columns and tables.
type payload struct {
	PlaceData models.PlaceData `json:"placeData"`
	UserInput models.UserInput `json:"userInput"`
	CreatedAt models.Timestamp `json:"createdAt"`
	Votes     int              `json:"votes,omitempty"`
}

// InsertSubmission stores a new submission. An empty status becomes
// pending and an empty source becomes suggestion.
func (db *DB) InsertSubmission(s models.RawSubmission) error {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return fmt.Errorf("feed: insert submission: empty id: %w", apperr.ErrInvalid)
	}
	if s.Status == "" {
		s.Status = models.StatusPending
	}
	if s.Source == "" {
		s.Source = models.SourceSuggestion
	}
	if !s.CreatedAt.Valid {
		s.CreatedAt = models.NewTimestamp(time.Now().UTC())
	}

	body, err := json.Marshal(payload{
		PlaceData: s.PlaceData,
		UserInput: s.UserInput,
		CreatedAt: s.CreatedAt,
		Votes:     s.Votes,
	})
	if err != nil {
		return fmt.Errorf("feed: encode submission: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO submissions (id, status, source, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, string(s.Status), string(s.Source), string(body), s.CreatedAt.Time, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("feed: insert submission %s: %w", id, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("feed: insert submission: %w", err)
	}
	return nil
}

// GetSubmission returns one submission with its vote tally.
func (db *DB) GetSubmission(id string) (models.RawSubmission, error) {
	row := db.conn.QueryRow(`SELECT id, status, source, payload FROM submissions WHERE id = ?`, strings.TrimSpace(id))
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RawSubmission{}, fmt.Errorf("feed: submission %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.RawSubmission{}, err
	}

	voters, err := db.voters(s.ID)
	if err != nil {
		return models.RawSubmission{}, err
	}
	s.Votes += voters.Len()
	s.VotedBy = voters
	return s, nil
}

// ListSubmissions returns submissions in insertion order. An empty status
// returns every submission.
func (db *DB) ListSubmissions(status models.SubmissionStatus) ([]models.RawSubmission, error) {
	q := `SELECT id, status, source, payload FROM submissions`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY rowid`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("feed: list submissions: %w", err)
	}
	defer rows.Close()

	out := []models.RawSubmission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("feed: list submissions: %w", err)
	}

	tallies, err := db.Tallies()
	if err != nil {
		return nil, err
	}
	for i := range out {
		if set, ok := tallies[out[i].ID]; ok {
			out[i].Votes += set.Len()
			out[i].VotedBy = set
		} else {
			out[i].VotedBy = models.NewVoterSet()
		}
	}
	return out, nil
}

// SetStatus moves a submission to status.
func (db *DB) SetStatus(id string, status models.SubmissionStatus) error {
	res, err := db.conn.Exec(`UPDATE submissions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("feed: set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("feed: set status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("feed: submission %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// AddVote records voterID's vote for venueID and returns the new tally.
// A second vote by the same voter is rejected with apperr.ErrConflict.
func (db *DB) AddVote(venueID, voterID string) (int, error) {
	venueID, voterID = strings.TrimSpace(venueID), strings.TrimSpace(voterID)
	if venueID == "" || voterID == "" {
		return 0, fmt.Errorf("feed: add vote: empty id: %w", apperr.ErrInvalid)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("feed: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`INSERT INTO votes (venue_id, voter_id, created_at) VALUES (?, ?, ?)`,
		venueID, voterID, time.Now().UTC()); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("feed: %s already voted for %s: %w", voterID, venueID, apperr.ErrConflict)
		}
		return 0, fmt.Errorf("feed: add vote: %w", err)
	}

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM votes WHERE venue_id = ?`, venueID).Scan(&n); err != nil {
		return 0, fmt.Errorf("feed: count votes: %w", err)
	}
	return n, tx.Commit()
}

// RemoveVote withdraws voterID's vote for venueID and returns the new
// tally. Withdrawing a vote that was never cast is apperr.ErrNotFound.
func (db *DB) RemoveVote(venueID, voterID string) (int, error) {
	venueID, voterID = strings.TrimSpace(venueID), strings.TrimSpace(voterID)

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("feed: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM votes WHERE venue_id = ? AND voter_id = ?`, venueID, voterID)
	if err != nil {
		return 0, fmt.Errorf("feed: remove vote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("feed: no vote by %s for %s: %w", voterID, venueID, apperr.ErrNotFound)
	}

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM votes WHERE venue_id = ?`, venueID).Scan(&n); err != nil {
		return 0, fmt.Errorf("feed: count votes: %w", err)
	}
	return n, tx.Commit()
}

// Tallies returns the voter set of every venue with at least one vote.
func (db *DB) Tallies() (map[string]models.VoterSet, error) {
	rows, err := db.conn.Query(`SELECT venue_id, voter_id FROM votes`)
	if err != nil {
		return nil, fmt.Errorf("feed: tallies: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.VoterSet)
	for rows.Next() {
		var venueID, voterID string
		if err := rows.Scan(&venueID, &voterID); err != nil {
			return nil, err
		}
		set, ok := out[venueID]
		if !ok {
			set = models.NewVoterSet()
			out[venueID] = set
		}
		set.Add(voterID)
	}
	return out, rows.Err()
}

func (db *DB) voters(venueID string) (models.VoterSet, error) {
	rows, err := db.conn.Query(`SELECT voter_id FROM votes WHERE venue_id = ?`, venueID)
	if err != nil {
		return nil, fmt.Errorf("feed: voters: %w", err)
	}
	defer rows.Close()

	set := models.NewVoterSet()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		set.Add(v)
	}
	return set, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(sc scanner) (models.RawSubmission, error) {
	var (
		id, status, source, body string
	)
	if err := sc.Scan(&id, &status, &source, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RawSubmission{}, err
		}
		return models.RawSubmission{}, fmt.Errorf("feed: scan submission: %w", err)
	}
	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return models.RawSubmission{}, fmt.Errorf("feed: decode submission %s: %w", id, err)
	}
	return models.RawSubmission{
		ID:        id,
		Status:    models.SubmissionStatus(status),
		Source:    models.SubmissionSource(source),
		PlaceData: p.PlaceData,
		UserInput: p.UserInput,
		CreatedAt: p.CreatedAt,
		Votes:     p.Votes,
	}, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
