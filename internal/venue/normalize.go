// Package venue applies the validation and defaulting rules every record
// passes through before it enters the catalog.
package venue

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/saigoneats/internal/models"
)

var (
	ErrMissingID   = errors.New("venue: id is required")
	ErrMissingName = errors.New("venue: name is required")
	ErrInvalidType = errors.New("venue: unknown type")
)

// Normalize returns the canonical form of raw, or an error when the record
// must be skipped. raw is not modified.
func Normalize(raw models.Venue) (models.Venue, error) {
	v := raw.Clone()

	v.ID = strings.TrimSpace(v.ID)
	if v.ID == "" {
		return models.Venue{}, ErrMissingID
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return models.Venue{}, fmt.Errorf("%w (id %q)", ErrMissingName, v.ID)
	}

	t, ok := models.ParseLocationType(string(v.Type))
	if !ok {
		return models.Venue{}, fmt.Errorf("%w %q (id %q)", ErrInvalidType, v.Type, v.ID)
	}
	v.Type = t

	if v.Cuisine != "" {
		if c, ok := models.ParseCuisine(string(v.Cuisine)); ok {
			v.Cuisine = c
		} else {
			v.Features = append(v.Features, string(v.Cuisine))
			v.Cuisine = ""
		}
	}

	if p, ok := models.ParsePriceRange(string(v.PriceRange)); ok {
		v.PriceRange = p
	} else {
		v.PriceRange = models.PriceMedium
	}

	v.Features = NormalizeFeatures(v.Features)

	if v.Votes < 0 {
		v.Votes = 0
	}
	if v.VotedBy == nil {
		v.VotedBy = models.VoterSet{}
	}
	return v, nil
}

// NormalizeFeatures drops blank tags, title-cases the rest and removes
// duplicates, keeping the first occurrence. The result is never nil.
func NormalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, f := range in {
		f = TitleCase(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// TitleCase splits s on spaces and underscores, upper-cases the first letter
// of each word, lower-cases the rest and joins the words with one space.
// "take_away" becomes "Take Away"; "dine-in" becomes "Dine-in".
func TitleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
