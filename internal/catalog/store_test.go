package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/query"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testStore(opts ...Option) *Store {
	return New(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func ids(vs []models.Venue) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func curatedA() models.Venue {
	return models.Venue{
		ID: "a", Name: "Pho A", Type: "restaurant", Cuisine: "vietnamese",
		PriceRange: "low", FullAddress: "12 X St, District 1",
	}
}

const submissionB = `[{
	"id": "b",
	"status": "approved",
	"placeData": {"name": "Cafe B", "address": "5 Y St, District 3"},
	"userInput": {"category": "cafe", "cuisines": ["coffee"], "comments": "", "submitterName": "Jo"},
	"createdAt": {"seconds": 0, "nanoseconds": 0}
}]`

func decodeSubmissions(t *testing.T, raw string) []models.RawSubmission {
	t.Helper()
	var out []models.RawSubmission
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestEndToEndScenario(t *testing.T) {
	s := testStore()
	s.ReplaceCurated([]models.Venue{curatedA()})
	s.ReplaceSubmissions(decodeSubmissions(t, submissionB))

	assert.Equal(t, []string{"a"}, ids(s.Query(query.Selection{District: "District 1"})))
	assert.Equal(t, []string{"b"}, ids(s.Query(query.Selection{Cuisine: "coffee"})))
	assert.Equal(t, []string{"b"}, ids(s.Query(query.Selection{PriceRange: "medium"})))
}

func TestReplaceSubmissions_OnlyApproved(t *testing.T) {
	subs := decodeSubmissions(t, submissionB)
	pending := subs[0]
	pending.ID = "p"
	pending.Status = models.StatusPending
	subs = append(subs, pending)

	s := testStore()
	s.ReplaceSubmissions(subs)

	assert.Equal(t, []string{"b"}, ids(s.Merged()))
	assert.Len(t, s.Submissions(), 2)
	st := s.Stats()
	assert.Equal(t, 2, st.Submissions)
	assert.Equal(t, 1, st.Approved)
}

func TestReplaceSubmissions_SkipsMalformed(t *testing.T) {
	subs := decodeSubmissions(t, submissionB)
	bad := subs[0]
	bad.ID = "bad"
	bad.UserInput.Category = "nightclub"
	noName := subs[0]
	noName.ID = "noname"
	noName.PlaceData.Name = ""

	s := testStore()
	s.ReplaceSubmissions([]models.RawSubmission{bad, subs[0], noName})
	assert.Equal(t, []string{"b"}, ids(s.Merged()))
}

func TestReplaceCurated_SkipsMalformed(t *testing.T) {
	s := testStore()
	s.ReplaceCurated([]models.Venue{
		curatedA(),
		{ID: "x", Name: "", Type: "bar"},
		{ID: "y", Name: "Y", Type: "club"},
	})
	assert.Equal(t, []string{"a"}, ids(s.Merged()))
}

func TestMerge_SubmissionSupersedesCurated(t *testing.T) {
	subs := decodeSubmissions(t, submissionB)
	subs[0].ID = "a"

	s := testStore()
	s.ReplaceCurated([]models.Venue{curatedA(), {ID: "c", Name: "C", Type: "bar"}})
	s.ReplaceSubmissions(subs)

	merged := s.Merged()
	require.Equal(t, []string{"c", "a"}, ids(merged))
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Cafe B", got.Name)
	assert.Equal(t, models.TypeCafe, got.Type)
}

func TestMerge_DuplicateWithinSourceLastWins(t *testing.T) {
	first := curatedA()
	second := curatedA()
	second.Name = "Pho A (moved)"

	s := testStore()
	s.ReplaceCurated([]models.Venue{first, {ID: "c", Name: "C", Type: "bar"}, second})

	assert.Equal(t, []string{"c", "a"}, ids(s.Merged()))
	got, _ := s.Get("a")
	assert.Equal(t, "Pho A (moved)", got.Name)
}

func TestSetters_RecomputeResults(t *testing.T) {
	s := testStore()
	s.ReplaceCurated([]models.Venue{
		curatedA(),
		{ID: "c", Name: "Bar C", Type: "bar", FullAddress: "1 Z St, District 1", PriceRange: "high", Rating: 4},
	})
	s.ReplaceSubmissions(decodeSubmissions(t, submissionB))
	assert.Equal(t, []string{"a", "c", "b"}, ids(s.Results()))

	s.SetDistrict("District 1")
	assert.Equal(t, []string{"a", "c"}, ids(s.Results()))

	s.SetSortBy("rating")
	assert.Equal(t, []string{"c", "a"}, ids(s.Results()))

	s.SetType("bar")
	assert.Equal(t, []string{"c"}, ids(s.Results()))

	s.SetPriceRange("low")
	assert.Empty(t, s.Results())

	s.ResetFilters()
	assert.Equal(t, query.Selection{}, s.Selection())
	assert.Equal(t, []string{"a", "c", "b"}, ids(s.Results()))

	s.SetSearchTerm("y st")
	assert.Equal(t, []string{"b"}, ids(s.Results()))

	s.SetSearchTerm("")
	s.SetCuisine("Vietnamese")
	assert.Equal(t, []string{"a"}, ids(s.Results()))
}

func TestReplace_ReRunsActiveSelection(t *testing.T) {
	s := testStore()
	s.SetCuisine("coffee")
	assert.Empty(t, s.Results())

	s.ReplaceSubmissions(decodeSubmissions(t, submissionB))
	assert.Equal(t, []string{"b"}, ids(s.Results()))
}

func TestOnChangeHook(t *testing.T) {
	var calls []Stats
	s := testStore(WithOnChange(func(st Stats) { calls = append(calls, st) }))

	s.ReplaceCurated([]models.Venue{curatedA()})
	s.SetType("cafe")

	require.Len(t, calls, 2)
	assert.Equal(t, Stats{Curated: 1, Merged: 1, Results: 1}, calls[0])
	assert.Equal(t, Stats{Curated: 1, Merged: 1, Results: 0}, calls[1])
}

func TestReadsReturnCopies(t *testing.T) {
	s := testStore()
	s.ReplaceCurated([]models.Venue{curatedA()})

	res := s.Results()
	res[0].Name = "mutated"
	res[0].Features = append(res[0].Features, "X")

	got, _ := s.Get("a")
	assert.Equal(t, "Pho A", got.Name)
	assert.Empty(t, got.Features)
}

func TestEmptyStore(t *testing.T) {
	s := testStore()
	assert.Empty(t, s.Results())
	assert.Empty(t, s.Query(query.Selection{Type: "bar"}))
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestConcurrentMutations(t *testing.T) {
	s := testStore()
	subs := decodeSubmissions(t, submissionB)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); s.ReplaceCurated([]models.Venue{curatedA()}) }()
		go func() { defer wg.Done(); s.ReplaceSubmissions(subs) }()
		go func() { defer wg.Done(); _ = s.Query(query.Selection{SortBy: "name"}) }()
	}
	wg.Wait()

	assert.Equal(t, []string{"a", "b"}, ids(s.Merged()))
}
