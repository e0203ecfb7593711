// Package submission converts community submissions into venue records.
package submission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/venue"
)

var (
	ErrMissingID       = errors.New("submission: id is required")
	ErrMissingName     = errors.New("submission: place name is required")
	ErrInvalidCategory = errors.New("submission: unknown category")
)

const (
	featureDineIn    = "Dine-in"
	defaultSubmitter = "Anonymous"
	defaultAddress   = "Address not provided"
	defaultSiteLabel = "Visit Website"
)

// keywordFeatures maps comment keywords to the feature they imply.
// Order is the order features are appended in.
var keywordFeatures = []struct {
	feature  string
	keywords []string
}{
	{"Delivery", []string{"delivery"}},
	{"Takeaway", []string{"takeaway", "take away", "take-away"}},
	{"Breakfast", []string{"breakfast"}},
	{"Lunch", []string{"lunch"}},
	{"Dinner", []string{"dinner"}},
	{"WiFi", []string{"wifi", "wi-fi"}},
	{"Parking", []string{"parking"}},
	{"Reservation", []string{"reservation"}},
}

// Normalizer turns raw submissions into venue records.
type Normalizer struct {
	now func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used for missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts s into a canonical venue record. It does not look at
// s.Status; callers decide which submissions are eligible.
func (n *Normalizer) Normalize(s models.RawSubmission) (models.Venue, error) {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return models.Venue{}, ErrMissingID
	}
	name := strings.TrimSpace(s.PlaceData.Name)
	if name == "" {
		return models.Venue{}, fmt.Errorf("%w (id %q)", ErrMissingName, id)
	}
	locType, ok := models.ParseLocationType(s.UserInput.Category)
	if !ok {
		return models.Venue{}, fmt.Errorf("%w %q (id %q)", ErrInvalidCategory, s.UserInput.Category, id)
	}

	cuisines := s.UserInput.Cuisine.Tags()

	v := models.Venue{
		ID:            id,
		Name:          name,
		Type:          locType,
		FullAddress:   strings.TrimSpace(s.PlaceData.Address),
		GoogleMapsURL: strings.TrimSpace(s.PlaceData.GoogleMapsURL),
		Features:      Features(locType, cuisines, s.UserInput.Comments),
		Description:   strings.TrimSpace(s.UserInput.Comments),
		SuggestedBy:   strings.TrimSpace(s.UserInput.SubmitterName),
		Votes:         s.Votes,
		VotedBy:       s.VotedBy.Clone(),
	}
	if len(cuisines) > 0 {
		v.Cuisine = models.Cuisine(cuisines[0])
	}
	if v.FullAddress == "" {
		v.FullAddress = defaultAddress
	}
	if v.SuggestedBy == "" {
		v.SuggestedBy = defaultSubmitter
	}
	if phone := strings.TrimSpace(s.PlaceData.Phone); phone != "" {
		v.Contact = &models.Contact{Phone: phone, PhoneClickable: ClickablePhone(phone)}
	}
	if site := strings.TrimSpace(s.PlaceData.Website); site != "" {
		v.Website = &models.Website{URL: site, Label: defaultSiteLabel}
	}

	submittedAt := n.now().UTC()
	if s.CreatedAt.Valid {
		submittedAt = s.CreatedAt.Time
	}
	v.SubmittedAt = &submittedAt

	return venue.Normalize(v)
}

// Features builds the feature list for a submission: the category when it
// is not a plain restaurant, every cuisine tag, Dine-in, then any keyword
// features found in comments. The result is title-cased and deduplicated.
func Features(t models.LocationType, cuisines []string, comments string) []string {
	features := make([]string, 0, len(cuisines)+4)
	if t != models.TypeRestaurant {
		features = append(features, string(t))
	}
	features = append(features, cuisines...)
	features = append(features, featureDineIn)

	text := strings.ToLower(comments)
	for _, kf := range keywordFeatures {
		for _, kw := range kf.keywords {
			if strings.Contains(text, kw) {
				features = append(features, kf.feature)
				break
			}
		}
	}
	return venue.NormalizeFeatures(features)
}

// ClickablePhone strips everything but digits and '+' for tel: links.
func ClickablePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
