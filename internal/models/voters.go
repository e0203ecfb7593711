package models

import (
	"encoding/json"
	"slices"
)

// VoterSet is the set of voter ids that have voted for a venue.
// A nil VoterSet is empty and safe to read.
type VoterSet map[string]struct{}

// NewVoterSet builds a set from ids, ignoring empty strings.
func NewVoterSet(ids ...string) VoterSet {
	s := make(VoterSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was not already present.
func (s VoterSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s VoterSet) Remove(id string) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

// Has reports membership.
func (s VoterSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of voters.
func (s VoterSet) Len() int { return len(s) }

// Slice returns the ids in sorted order.
func (s VoterSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy. Cloning nil yields nil.
func (s VoterSet) Clone() VoterSet {
	if s == nil {
		return nil
	}
	out := make(VoterSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s VoterSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array, dropping duplicates.
func (s *VoterSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewVoterSet(ids...)
	return nil
}
