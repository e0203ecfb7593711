// Package venueservice coordinates the catalog store, the submission feed
// and the curated file behind one API used by every transport.
package venueservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/saigoneats/internal/apperr"
	"github.com/starford/saigoneats/internal/catalog"
	"github.com/starford/saigoneats/internal/feed"
	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/parser"
	"github.com/starford/saigoneats/internal/query"
	"github.com/starford/saigoneats/internal/sse"
	"github.com/starford/saigoneats/internal/storage"
	"github.com/starford/saigoneats/internal/submission"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishChange(kind sse.Kind, id string)
}

// Taxonomy lists the values each filter accepts.
type Taxonomy struct {
	Types       []string `json:"types"`
	Cuisines    []string `json:"cuisines"`
	Districts   []string `json:"districts"`
	PriceRanges []string `json:"priceRanges"`
	SortKeys    []string `json:"sortKeys"`
}

// SubmitInput is a new community suggestion.
type SubmitInput struct {
	PlaceData models.PlaceData `json:"placeData"`
	UserInput models.UserInput `json:"userInput"`
}

// ListOptions narrows ListSubmissions.
type ListOptions struct {
	Status models.SubmissionStatus
	// Recent orders newest first instead of insertion order.
	Recent bool
	// Limit caps the result; zero means no cap.
	Limit int
}

// Service is the application layer shared by the HTTP, MCP and queue
// transports.
type Service struct {
	store      *catalog.Store
	db         feed.Repository
	src        storage.Source
	normalizer *submission.Normalizer
	pub        Publisher
	logger     *slog.Logger
	newID      func() string
	now        func() time.Time

	// fileMu serializes read-modify-write cycles on the curated file.
	fileMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDFunc overrides submission id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new venue service.
func NewService(store *catalog.Store, db feed.Repository, src storage.Source, opts ...Option) *Service {
	s := &Service{
		store:      store,
		db:         db,
		src:        src,
		normalizer: submission.New(),
		logger:     slog.Default(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying catalog store.
func (s *Service) Store() *catalog.Store { return s.store }

// Query evaluates sel against the merged collection.
func (s *Service) Query(_ context.Context, sel query.Selection) []models.Venue {
	return s.store.Query(sel)
}

// Get returns one merged venue.
func (s *Service) Get(_ context.Context, id string) (models.Venue, error) {
	v, ok := s.store.Get(id)
	if !ok {
		return models.Venue{}, fmt.Errorf("venueservice: venue %s: %w", id, apperr.ErrNotFound)
	}
	return v, nil
}

// Stats returns the current collection counts.
func (s *Service) Stats(_ context.Context) catalog.Stats {
	return s.store.Stats()
}

// Taxonomy returns the accepted filter values.
func (s *Service) Taxonomy(_ context.Context) Taxonomy {
	t := Taxonomy{}
	for _, v := range models.LocationTypes {
		t.Types = append(t.Types, string(v))
	}
	for _, v := range models.Cuisines {
		t.Cuisines = append(t.Cuisines, string(v))
	}
	for _, v := range models.Districts {
		t.Districts = append(t.Districts, string(v))
	}
	for _, v := range models.PriceRanges {
		t.PriceRanges = append(t.PriceRanges, string(v))
	}
	for _, v := range query.SortKeys {
		t.SortKeys = append(t.SortKeys, string(v))
	}
	return t
}

// SetSelection replaces the session selection and returns its results.
func (s *Service) SetSelection(_ context.Context, sel query.Selection) []models.Venue {
	s.store.SetSelection(sel)
	return s.store.Results()
}

// ResetSelection clears the session selection and returns its results.
func (s *Service) ResetSelection(_ context.Context) []models.Venue {
	s.store.ResetFilters()
	return s.store.Results()
}

// Results returns the session selection and its results.
func (s *Service) Results(_ context.Context) (query.Selection, []models.Venue) {
	return s.store.Selection(), s.store.Results()
}

// Submit validates and stores a new pending suggestion.
func (s *Service) Submit(_ context.Context, in SubmitInput) (models.RawSubmission, error) {
	if err := validateSubmission(in.PlaceData, in.UserInput); err != nil {
		return models.RawSubmission{}, err
	}

	sub := models.RawSubmission{
		ID:        s.newID(),
		Status:    models.StatusPending,
		Source:    models.SourceSuggestion,
		PlaceData: in.PlaceData,
		UserInput: in.UserInput,
		CreatedAt: models.NewTimestamp(s.now().UTC()),
	}
	if err := s.db.InsertSubmission(sub); err != nil {
		return models.RawSubmission{}, err
	}
	if err := feed.SyncSubmissions(s.db, s.store); err != nil {
		return models.RawSubmission{}, err
	}

	s.logger.Info("submission received", slog.String("id", sub.ID), slog.String("name", sub.PlaceData.Name))
	s.publish(sse.KindSubmissionCreated, sub.ID)
	sub.VotedBy = models.NewVoterSet()
	return sub, nil
}

// Approve moves a submission into the approved set and returns the venue it
// becomes. A submission that cannot be normalized is refused with
// apperr.ErrInvalid and stays in its current state.
func (s *Service) Approve(_ context.Context, id string) (models.Venue, error) {
	sub, err := s.db.GetSubmission(id)
	if err != nil {
		return models.Venue{}, err
	}
	sub.Status = models.StatusApproved
	v, err := s.normalizer.Normalize(sub)
	if err != nil {
		return models.Venue{}, fmt.Errorf("venueservice: approve %s: %w: %s", id, apperr.ErrInvalid, err.Error())
	}

	if err := s.db.SetStatus(sub.ID, models.StatusApproved); err != nil {
		return models.Venue{}, err
	}
	if err := feed.SyncSubmissions(s.db, s.store); err != nil {
		return models.Venue{}, err
	}

	s.logger.Info("submission approved", slog.String("id", sub.ID))
	s.publish(sse.KindSubmissionApproved, sub.ID)
	return v, nil
}

// Reject marks a submission rejected; it leaves the collection if it was
// approved.
func (s *Service) Reject(_ context.Context, id string) error {
	if err := s.db.SetStatus(id, models.StatusRejected); err != nil {
		return err
	}
	if err := feed.SyncSubmissions(s.db, s.store); err != nil {
		return err
	}

	s.logger.Info("submission rejected", slog.String("id", id))
	s.publish(sse.KindSubmissionRejected, id)
	return nil
}

// GetSubmission returns one stored submission.
func (s *Service) GetSubmission(_ context.Context, id string) (models.RawSubmission, error) {
	return s.db.GetSubmission(id)
}

// ListSubmissions returns stored submissions.
func (s *Service) ListSubmissions(_ context.Context, opts ListOptions) ([]models.RawSubmission, error) {
	subs, err := s.db.ListSubmissions(opts.Status)
	if err != nil {
		return nil, err
	}
	if opts.Recent {
		slices.SortStableFunc(subs, func(a, b models.RawSubmission) int {
			return b.CreatedAt.Time.Compare(a.CreatedAt.Time)
		})
	}
	if opts.Limit > 0 && len(subs) > opts.Limit {
		subs = subs[:opts.Limit]
	}
	return subs, nil
}

// Vote records voterID's vote for a venue and returns its new vote count.
func (s *Service) Vote(ctx context.Context, venueID, voterID string) (int, error) {
	if _, err := s.Get(ctx, venueID); err != nil {
		return 0, err
	}
	if _, err := s.db.AddVote(venueID, voterID); err != nil {
		return 0, err
	}
	return s.afterVote(ctx, venueID)
}

// Unvote withdraws voterID's vote for a venue and returns its new count.
func (s *Service) Unvote(ctx context.Context, venueID, voterID string) (int, error) {
	if _, err := s.Get(ctx, venueID); err != nil {
		return 0, err
	}
	if _, err := s.db.RemoveVote(venueID, voterID); err != nil {
		return 0, err
	}
	return s.afterVote(ctx, venueID)
}

func (s *Service) afterVote(ctx context.Context, venueID string) (int, error) {
	if _, err := feed.Sync(s.src, s.db, s.store, s.logger); err != nil {
		return 0, err
	}
	s.publish(sse.KindVoteUpdated, venueID)

	v, err := s.Get(ctx, venueID)
	if err != nil {
		return 0, err
	}
	return v.Votes, nil
}

// Promote copies an approved submission into the curated file. An entry
// with the same id is replaced in place; otherwise the venue is appended.
func (s *Service) Promote(_ context.Context, id string) (models.Venue, error) {
	sub, err := s.db.GetSubmission(id)
	if err != nil {
		return models.Venue{}, err
	}
	if !sub.Approved() {
		return models.Venue{}, fmt.Errorf("venueservice: promote %s: status %s: %w", id, sub.Status, apperr.ErrConflict)
	}
	v, err := s.normalizer.Normalize(sub)
	if err != nil {
		return models.Venue{}, fmt.Errorf("venueservice: promote %s: %w: %s", id, apperr.ErrInvalid, err.Error())
	}
	// Tallies are overlaid from the vote table on load.
	v.Votes = max(0, v.Votes-v.VotedBy.Len())
	v.VotedBy = nil

	s.fileMu.Lock()
	err = s.writeCurated(func(venues []models.Venue) []models.Venue {
		i := slices.IndexFunc(venues, func(c models.Venue) bool { return strings.TrimSpace(c.ID) == v.ID })
		if i >= 0 {
			venues[i] = v
			return venues
		}
		return append(venues, v)
	})
	s.fileMu.Unlock()
	if err != nil {
		return models.Venue{}, err
	}

	if _, err := feed.Sync(s.src, s.db, s.store, s.logger); err != nil {
		return models.Venue{}, err
	}
	s.logger.Info("submission promoted", slog.String("id", v.ID), slog.String("path", s.src.Path()))
	s.publish(sse.KindCatalogReloaded, v.ID)
	return v, nil
}

func (s *Service) writeCurated(edit func([]models.Venue) []models.Venue) error {
	var venues []models.Venue
	data, err := s.src.Read()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		venues = []models.Venue{}
	case err != nil:
		return err
	default:
		if venues, err = parser.ParseCatalog(data); err != nil {
			return err
		}
	}

	out, err := parser.EncodeCatalog(edit(venues))
	if err != nil {
		return err
	}
	return s.src.Write(out)
}

// Resync reloads both sources into the store.
func (s *Service) Resync(_ context.Context) (models.SourceMeta, error) {
	meta, err := feed.Sync(s.src, s.db, s.store, s.logger)
	if err != nil {
		return meta, err
	}
	st := s.store.Stats()
	s.logger.Info("catalog resynced",
		slog.Int("curated", st.Curated),
		slog.Int("approved", st.Approved),
		slog.Int("merged", st.Merged))
	s.publish(sse.KindCatalogReloaded, "")
	return meta, nil
}

// Recent returns the newest approved submissions as venues, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Venue, error) {
	subs, err := s.ListSubmissions(ctx, ListOptions{Status: models.StatusApproved, Recent: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.Venue, 0, len(subs))
	for _, sub := range subs {
		if v, ok := s.store.Get(sub.ID); ok {
			out = append(out, v)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Service) publish(kind sse.Kind, id string) {
	if s.pub != nil {
		s.pub.PublishChange(kind, id)
	}
}
