// Package catalog holds the merged venue collection and the active
// filter/sort selection, recomputing results on every change.
package catalog

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/query"
	"github.com/starford/saigoneats/internal/submission"
	"github.com/starford/saigoneats/internal/venue"
)

// Stats summarises the current collection.
type Stats struct {
	Curated     int `json:"curated"`
	Submissions int `json:"submissions"`
	Approved    int `json:"approved"`
	Merged      int `json:"merged"`
	Results     int `json:"results"`
}

// ChangeFunc is called after every recompute, outside the store lock.
type ChangeFunc func(Stats)

// Store owns the curated set, the raw submissions, the derived merged
// collection and the results of the active selection.
//
// Every mutation recomputes merged and results before returning, under a
// single write lock; readers never observe a half-applied change. When
// mutations race, the last one to take the lock wins.
type Store struct {
	logger     *slog.Logger
	engine     *query.Engine
	normalizer *submission.Normalizer
	onChange   ChangeFunc

	mu          sync.RWMutex
	curated     []models.Venue
	submissions []models.RawSubmission
	approved    []models.Venue
	merged      []models.Venue
	index       map[string]int
	selection   query.Selection
	results     []models.Venue
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithEngine sets the query engine.
func WithEngine(e *query.Engine) Option {
	return func(s *Store) {
		s.engine = e
	}
}

// WithNormalizer sets the submission normalizer.
func WithNormalizer(n *submission.Normalizer) Option {
	return func(s *Store) {
		s.normalizer = n
	}
}

// WithOnChange registers a hook run after every recompute.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		logger:     slog.Default(),
		engine:     query.NewEngine(language.Und),
		normalizer: submission.New(),
		merged:     []models.Venue{},
		results:    []models.Venue{},
		index:      map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceCurated swaps the curated set. Records failing validation are
// logged and skipped.
func (s *Store) ReplaceCurated(records []models.Venue) {
	curated := make([]models.Venue, 0, len(records))
	for _, r := range records {
		v, err := venue.Normalize(r)
		if err != nil {
			s.logger.Warn("catalog: skipped curated record",
				slog.String("id", r.ID),
				slog.String("error", err.Error()))
			continue
		}
		curated = append(curated, v)
	}

	s.update(func() {
		s.curated = curated
	})
}

// ReplaceSubmissions swaps the raw submission set. Only approved
// submissions are normalized into the collection; malformed ones are
// logged and skipped.
func (s *Store) ReplaceSubmissions(raws []models.RawSubmission) {
	kept := make([]models.RawSubmission, len(raws))
	copy(kept, raws)

	approved := make([]models.Venue, 0, len(raws))
	for _, raw := range raws {
		if !raw.Approved() {
			continue
		}
		v, err := s.normalizer.Normalize(raw)
		if err != nil {
			s.logger.Warn("catalog: skipped submission",
				slog.String("id", raw.ID),
				slog.String("error", err.Error()))
			continue
		}
		approved = append(approved, v)
	}

	s.update(func() {
		s.submissions = kept
		s.approved = approved
	})
}

// SetSelection replaces the whole selection.
func (s *Store) SetSelection(sel query.Selection) {
	s.update(func() { s.selection = sel })
}

// SetSearchTerm sets the free-text filter.
func (s *Store) SetSearchTerm(term string) {
	s.update(func() { s.selection.SearchTerm = term })
}

// SetType sets the type filter; "" clears it.
func (s *Store) SetType(t string) {
	s.update(func() { s.selection.Type = t })
}

// SetCuisine sets the cuisine filter; "" clears it.
func (s *Store) SetCuisine(c string) {
	s.update(func() { s.selection.Cuisine = c })
}

// SetDistrict sets the district filter; "" clears it.
func (s *Store) SetDistrict(d string) {
	s.update(func() { s.selection.District = d })
}

// SetPriceRange sets the price filter; "" clears it.
func (s *Store) SetPriceRange(p string) {
	s.update(func() { s.selection.PriceRange = p })
}

// SetSortBy sets the ordering; "" restores merge order.
func (s *Store) SetSortBy(key string) {
	s.update(func() { s.selection.SortBy = key })
}

// ResetFilters clears every filter and the sort.
func (s *Store) ResetFilters() {
	s.update(func() { s.selection = query.Selection{} })
}

// update applies mutate and recomputes under the write lock, then fires the
// change hook.
func (s *Store) update(mutate func()) {
	s.mu.Lock()
	mutate()
	s.recomputeLocked()
	stats := s.statsLocked()
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(stats)
	}
}

func (s *Store) recomputeLocked() {
	s.merged = merge(s.curated, s.approved)
	s.index = make(map[string]int, len(s.merged))
	for i, v := range s.merged {
		s.index[v.ID] = i
	}
	s.results = s.engine.Apply(s.merged, s.selection)
}

// merge concatenates curated and approved. When an id occurs more than
// once, the last occurrence wins and keeps its position.
func merge(curated, approved []models.Venue) []models.Venue {
	all := make([]models.Venue, 0, len(curated)+len(approved))
	all = append(all, curated...)
	all = append(all, approved...)

	seen := make(map[string]struct{}, len(all))
	keep := make([]bool, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if _, dup := seen[all[i].ID]; dup {
			continue
		}
		seen[all[i].ID] = struct{}{}
		keep[i] = true
	}

	out := make([]models.Venue, 0, len(seen))
	for i, v := range all {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) statsLocked() Stats {
	return Stats{
		Curated:     len(s.curated),
		Submissions: len(s.submissions),
		Approved:    len(s.approved),
		Merged:      len(s.merged),
		Results:     len(s.results),
	}
}

// Results returns a copy of the results of the active selection.
func (s *Store) Results() []models.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.results)
}

// Selection returns the active selection.
func (s *Store) Selection() query.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Merged returns a copy of the merged collection in merge order.
func (s *Store) Merged() []models.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.merged)
}

// Submissions returns a copy of the raw submissions as last supplied.
func (s *Store) Submissions() []models.RawSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RawSubmission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Get returns the merged record with the given id.
func (s *Store) Get(id string) (models.Venue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[strings.TrimSpace(id)]
	if !ok {
		return models.Venue{}, false
	}
	return s.merged[i].Clone(), true
}

// Query evaluates sel against the current merged collection without
// touching the active selection.
func (s *Store) Query(sel query.Selection) []models.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Apply(s.merged, sel)
}

// Stats returns collection counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func cloneAll(in []models.Venue) []models.Venue {
	out := make([]models.Venue, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}
