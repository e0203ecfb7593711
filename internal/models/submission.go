package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// SubmissionStatus is the moderation state of a community submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// SubmissionSource tags where a submission came from.
type SubmissionSource string

const (
	SourceSuggestion SubmissionSource = "suggestion"
	SourceStatic     SubmissionSource = "static"
)

// PlaceData is the place half of a submission, usually filled from a maps lookup.
type PlaceData struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone,omitempty"`
	Website       string `json:"website,omitempty"`
	District      string `json:"district,omitempty"`
	GoogleMapsURL string `json:"googleMapsUrl,omitempty"`
}

// CuisineKind tags the shape of a submitted cuisine value.
type CuisineKind int

const (
	CuisineNone CuisineKind = iota
	CuisineSingle
	CuisineMulti
)

// CuisineInput is the cuisine part of a submission: either a single tag or
// a list of tags. The shape is resolved once when decoding.
type CuisineInput struct {
	Kind     CuisineKind
	Cuisine  string
	Cuisines []string
}

// SingleCuisine returns a single-tag input.
func SingleCuisine(c string) CuisineInput {
	if strings.TrimSpace(c) == "" {
		return CuisineInput{}
	}
	return CuisineInput{Kind: CuisineSingle, Cuisine: c}
}

// MultiCuisine returns a multi-tag input.
func MultiCuisine(cs ...string) CuisineInput {
	if len(cs) == 0 {
		return CuisineInput{}
	}
	return CuisineInput{Kind: CuisineMulti, Cuisines: cs}
}

// Tags returns the trimmed, non-empty tags in submission order.
func (c CuisineInput) Tags() []string {
	var raw []string
	switch c.Kind {
	case CuisineSingle:
		raw = []string{c.Cuisine}
	case CuisineMulti:
		raw = c.Cuisines
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// UserInput is the free-form half of a submission.
type UserInput struct {
	SubmitterName string       `json:"submitterName"`
	Category      string       `json:"category"`
	Cuisine       CuisineInput `json:"-"`
	Comments      string       `json:"comments,omitempty"`
}

type userInputJSON struct {
	SubmitterName string          `json:"submitterName"`
	Category      string          `json:"category"`
	Cuisine       json.RawMessage `json:"cuisine,omitempty"`
	Cuisines      []string        `json:"cuisines,omitempty"`
	Comments      *string         `json:"comments,omitempty"`
}

// UnmarshalJSON accepts "cuisine" as a string, null or array, and
// "cuisines" as an array. A non-empty "cuisines" wins.
func (u *UserInput) UnmarshalJSON(data []byte) error {
	var aux userInputJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.SubmitterName = aux.SubmitterName
	u.Category = aux.Category
	u.Comments = ""
	if aux.Comments != nil {
		u.Comments = *aux.Comments
	}
	u.Cuisine = CuisineInput{}

	if len(aux.Cuisines) > 0 {
		u.Cuisine = MultiCuisine(aux.Cuisines...)
		return nil
	}
	raw := bytes.TrimSpace(aux.Cuisine)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		u.Cuisine = MultiCuisine(list...)
	default:
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return err
		}
		u.Cuisine = SingleCuisine(single)
	}
	return nil
}

// MarshalJSON writes the cuisine back in the shape it was received.
func (u UserInput) MarshalJSON() ([]byte, error) {
	aux := userInputJSON{
		SubmitterName: u.SubmitterName,
		Category:      u.Category,
	}
	if u.Comments != "" {
		aux.Comments = &u.Comments
	}
	switch u.Cuisine.Kind {
	case CuisineSingle:
		raw, err := json.Marshal(u.Cuisine.Cuisine)
		if err != nil {
			return nil, err
		}
		aux.Cuisine = raw
	case CuisineMulti:
		aux.Cuisines = u.Cuisine.Cuisines
	}
	return json.Marshal(aux)
}

// Timestamp is a creation time that may arrive as {seconds, nanoseconds},
// an ISO-8601 string or a bare number of seconds. Valid is false when the
// value was missing or could not be parsed.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NewTimestamp wraps t as a valid timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// UnmarshalJSON never fails; unparseable input leaves the timestamp invalid.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	switch raw[0] {
	case '{':
		var obj struct {
			Seconds     *int64 `json:"seconds"`
			Nanoseconds int64  `json:"nanoseconds"`
			// Admin SDK exports use underscored keys.
			AltSeconds *int64 `json:"_seconds"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		secs := obj.Seconds
		if secs == nil {
			secs = obj.AltSeconds
		}
		if secs == nil {
			return nil
		}
		*t = NewTimestamp(time.UnixMilli(*secs * 1000).UTC())
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				*t = NewTimestamp(parsed.UTC())
				return nil
			}
		}
	default:
		var secs float64
		if err := json.Unmarshal(raw, &secs); err != nil {
			return nil
		}
		*t = NewTimestamp(time.UnixMilli(int64(secs * 1000)).UTC())
	}
	return nil
}

// MarshalJSON writes {seconds, nanoseconds}, or null when invalid.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Seconds     int64 `json:"seconds"`
		Nanoseconds int   `json:"nanoseconds"`
	}{Seconds: t.Time.Unix(), Nanoseconds: t.Time.Nanosecond()})
}

// RawSubmission is a community-proposed venue as stored by the submission feed.
type RawSubmission struct {
	ID        string           `json:"id"`
	Status    SubmissionStatus `json:"status"`
	Source    SubmissionSource `json:"source,omitempty"`
	PlaceData PlaceData        `json:"placeData"`
	UserInput UserInput        `json:"userInput"`
	CreatedAt Timestamp        `json:"createdAt"`
	Votes     int              `json:"votes,omitempty"`
	VotedBy   VoterSet         `json:"votedBy,omitempty"`
}

// Approved reports whether the submission may enter the merged collection.
func (s *RawSubmission) Approved() bool {
	return s.Status == StatusApproved
}

// SourceMeta describes the curated catalog file as last seen on disk.
type SourceMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseSubmissionStatus resolves s case-insensitively.
func ParseSubmissionStatus(s string) (SubmissionStatus, bool) {
	switch SubmissionStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}
