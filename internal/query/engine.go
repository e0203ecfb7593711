package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/saigoneats/internal/models"
)

// Engine evaluates selections over a venue collection.
// An Engine is safe for concurrent use.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an Engine that orders names by the rules of locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

type predicate func(v *models.Venue) bool

func matchNone(*models.Venue) bool { return false }

// compile turns sel into its active predicates.
func compile(sel Selection) []predicate {
	var preds []predicate

	if raw := strings.TrimSpace(sel.Type); raw != "" {
		if t, ok := models.ParseLocationType(raw); ok {
			preds = append(preds, func(v *models.Venue) bool { return v.Type == t })
		} else {
			preds = append(preds, matchNone)
		}
	}

	if raw := strings.TrimSpace(sel.Cuisine); raw != "" {
		// A value outside the cuisine enum can still match a feature tag.
		c, known := models.ParseCuisine(raw)
		preds = append(preds, func(v *models.Venue) bool {
			if known && v.Cuisine == c {
				return true
			}
			for _, f := range v.Features {
				if strings.EqualFold(f, raw) {
					return true
				}
			}
			return false
		})
	}

	if raw := strings.TrimSpace(sel.District); raw != "" {
		if d, ok := models.ParseDistrict(raw); ok {
			needle := strings.ToLower(string(d))
			preds = append(preds, func(v *models.Venue) bool {
				return strings.Contains(strings.ToLower(v.FullAddress), needle)
			})
		} else {
			preds = append(preds, matchNone)
		}
	}

	if raw := strings.TrimSpace(sel.PriceRange); raw != "" {
		if p, ok := models.ParsePriceRange(raw); ok {
			preds = append(preds, func(v *models.Venue) bool { return v.EffectivePrice() == p })
		} else {
			preds = append(preds, matchNone)
		}
	}

	if term := strings.ToLower(strings.TrimSpace(sel.SearchTerm)); term != "" {
		preds = append(preds, func(v *models.Venue) bool {
			return strings.Contains(strings.ToLower(v.Name), term) ||
				strings.Contains(strings.ToLower(v.FullAddress), term) ||
				strings.Contains(strings.ToLower(v.Description), term)
		})
	}

	return preds
}

// Match reports whether v satisfies every active filter in sel.
func (e *Engine) Match(v models.Venue, sel Selection) bool {
	for _, p := range compile(sel) {
		if !p(&v) {
			return false
		}
	}
	return true
}

// Apply returns the records matching sel, ordered by sel.SortBy. Records
// are copied; the input is never modified. An unknown sort key keeps the
// input order.
func (e *Engine) Apply(records []models.Venue, sel Selection) []models.Venue {
	preds := compile(sel)
	out := make([]models.Venue, 0, len(records))

next:
	for i := range records {
		for _, p := range preds {
			if !p(&records[i]) {
				continue next
			}
		}
		out = append(out, records[i].Clone())
	}

	if key, ok := ParseSortKey(sel.SortBy); ok {
		slices.SortStableFunc(out, e.comparator(key))
	}
	return out
}

// comparator returns the ordering for key. Collators are not safe for
// concurrent use, so each call builds its own.
func (e *Engine) comparator(key SortKey) func(a, b models.Venue) int {
	switch key {
	case SortName:
		col := collate.New(e.locale)
		return func(a, b models.Venue) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortRating:
		return func(a, b models.Venue) int {
			return cmp.Compare(b.Rating, a.Rating)
		}
	case SortPrice:
		return func(a, b models.Venue) int {
			return cmp.Compare(a.EffectivePrice().Rank(), b.EffectivePrice().Rank())
		}
	}
	return func(models.Venue, models.Venue) int { return 0 }
}

// Compare exposes the ordering for key, mainly for tests.
func (e *Engine) Compare(key SortKey, a, b models.Venue) int {
	return e.comparator(key)(a, b)
}
