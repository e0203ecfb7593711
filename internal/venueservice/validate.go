package venueservice

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/saigoneats/internal/apperr"
	"github.com/starford/saigoneats/internal/models"
)

var phoneRe = regexp.MustCompile(`^[0-9+()\-.\s]{6,20}$`)

// ValidationError reports which submission fields were rejected. It
// matches apperr.ErrInvalid under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Is makes ValidationError match apperr.ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == apperr.ErrInvalid
}

var knownCategory = validation.By(func(value any) error {
	s, _ := value.(string)
	if _, ok := models.ParseLocationType(s); !ok {
		return errors.New("must be one of the known venue types")
	}
	return nil
})

var tagLength = validation.By(func(value any) error {
	c, _ := value.(models.CuisineInput)
	for _, t := range c.Tags() {
		if len(t) > 50 {
			return fmt.Errorf("tag %q is too long", t)
		}
	}
	return nil
})

// validateSubmission checks the user-supplied halves of a submission.
func validateSubmission(p models.PlaceData, u models.UserInput) error {
	errs := validation.Errors{
		"placeData.name":          validation.Validate(strings.TrimSpace(p.Name), validation.Required, validation.Length(1, 200)),
		"placeData.address":       validation.Validate(p.Address, validation.Length(0, 500)),
		"placeData.phone":         validation.Validate(strings.TrimSpace(p.Phone), validation.Match(phoneRe)),
		"placeData.website":       validation.Validate(strings.TrimSpace(p.Website), is.URL),
		"placeData.googleMapsUrl": validation.Validate(strings.TrimSpace(p.GoogleMapsURL), is.URL),
		"userInput.submitterName": validation.Validate(u.SubmitterName, validation.Length(0, 100)),
		"userInput.category":      validation.Validate(strings.TrimSpace(u.Category), validation.Required, knownCategory),
		"userInput.cuisine":       validation.Validate(u.Cuisine, tagLength),
		"userInput.comments":      validation.Validate(u.Comments, validation.Length(0, 2000)),
	}
	err := errs.Filter()
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for k, v := range verrs {
		out.Fields[k] = v.Error()
	}
	return out
}
