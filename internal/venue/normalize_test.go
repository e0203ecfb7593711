package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/saigoneats/internal/models"
)

func TestNormalize_DefaultsPriceToMedium(t *testing.T) {
	v, err := Normalize(models.Venue{ID: "a", Name: "Pho A", Type: "restaurant"})
	require.NoError(t, err)
	assert.Equal(t, models.PriceMedium, v.PriceRange)
}

func TestNormalize_UnknownPriceReadsAsMedium(t *testing.T) {
	v, err := Normalize(models.Venue{ID: "a", Name: "Pho A", Type: "restaurant", PriceRange: "cheap"})
	require.NoError(t, err)
	assert.Equal(t, models.PriceMedium, v.PriceRange)
}

func TestNormalize_ResolvesTypeCaseInsensitively(t *testing.T) {
	v, err := Normalize(models.Venue{ID: "a", Name: "Brew", Type: "Coffee_Shop"})
	require.NoError(t, err)
	assert.Equal(t, models.TypeCoffeeShop, v.Type)
}

func TestNormalize_Rejects(t *testing.T) {
	cases := []struct {
		name string
		in   models.Venue
		want error
	}{
		{"empty name", models.Venue{ID: "a", Name: "  ", Type: "bar"}, ErrMissingName},
		{"unknown type", models.Venue{ID: "a", Name: "X", Type: "nightclub"}, ErrInvalidType},
		{"missing type", models.Venue{ID: "a", Name: "X"}, ErrInvalidType},
		{"missing id", models.Venue{Name: "X", Type: "bar"}, ErrMissingID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNormalize_FeaturesCleaned(t *testing.T) {
	in := models.Venue{
		ID: "a", Name: "X", Type: "cafe",
		Features: []string{"dine-in", "", "  ", "Dine-in", "free_wifi", "TAKEAWAY", "takeaway"},
	}
	v, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dine-in", "Free Wifi", "Takeaway"}, v.Features)
	// input untouched
	assert.Len(t, in.Features, 7)
}

func TestNormalize_UnknownCuisineFoldedIntoFeatures(t *testing.T) {
	v, err := Normalize(models.Venue{ID: "a", Name: "X", Type: "cafe", Cuisine: "coffee"})
	require.NoError(t, err)
	assert.Empty(t, v.Cuisine)
	assert.Equal(t, []string{"Coffee"}, v.Features)
}

func TestNormalize_KnownCuisineCanonicalised(t *testing.T) {
	v, err := Normalize(models.Venue{ID: "a", Name: "X", Type: "restaurant", Cuisine: "Street_Food"})
	require.NoError(t, err)
	assert.Equal(t, models.CuisineStreetFood, v.Cuisine)
}

func TestNormalize_NegativeVotesClamped(t *testing.T) {
	v, err := Normalize(models.Venue{ID: "a", Name: "X", Type: "bar", Votes: -3})
	require.NoError(t, err)
	assert.Zero(t, v.Votes)
	assert.NotNil(t, v.VotedBy)
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"delivery":       "Delivery",
		"WiFi":           "Wifi",
		"street_food":    "Street Food",
		"  rooftop  bar": "Rooftop Bar",
		"dine-in":        "Dine-in",
		"đặc sản":        "Đặc Sản",
		"":               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TitleCase(in), "TitleCase(%q)", in)
	}
}
