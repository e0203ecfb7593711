// Package models defines the domain types for the venue directory.
package models

import (
	"slices"
	"strings"
	"time"
)

// LocationType is the kind of venue.
type LocationType string

const (
	TypeRestaurant LocationType = "restaurant"
	TypeCafe       LocationType = "cafe"
	TypeDessert    LocationType = "dessert"
	TypeSpa        LocationType = "spa"
	TypeBar        LocationType = "bar"
	TypeBakery     LocationType = "bakery"
	TypeCoffeeShop LocationType = "coffee shop"
	TypeBistro     LocationType = "bistro"
)

// LocationTypes lists every known type in display order.
var LocationTypes = []LocationType{
	TypeRestaurant, TypeCafe, TypeDessert, TypeSpa,
	TypeBar, TypeBakery, TypeCoffeeShop, TypeBistro,
}

// ParseLocationType resolves s case-insensitively. Underscores and hyphens
// are read as spaces, so "coffee_shop" and "Coffee-Shop" both resolve.
func ParseLocationType(s string) (LocationType, bool) {
	key := enumKey(s)
	for _, t := range LocationTypes {
		if string(t) == key {
			return t, true
		}
	}
	// "coffeeshop" is a common spelling in submissions.
	if key == "coffeeshop" {
		return TypeCoffeeShop, true
	}
	return "", false
}

// Cuisine is a cuisine tag. The zero value means unclassified.
type Cuisine string

const (
	CuisineVietnamese    Cuisine = "vietnamese"
	CuisineChinese       Cuisine = "chinese"
	CuisineJapanese      Cuisine = "japanese"
	CuisineKorean        Cuisine = "korean"
	CuisineThai          Cuisine = "thai"
	CuisineAmerican      Cuisine = "american"
	CuisineItalian       Cuisine = "italian"
	CuisineFrench        Cuisine = "french"
	CuisineMexican       Cuisine = "mexican"
	CuisinePizza         Cuisine = "pizza"
	CuisineBurger        Cuisine = "burger"
	CuisineSeafood       Cuisine = "seafood"
	CuisineBBQ           Cuisine = "bbq"
	CuisineInternational Cuisine = "international"
	CuisineFusion        Cuisine = "fusion"
	CuisineStreetFood    Cuisine = "street food"
	CuisineCafe          Cuisine = "cafe"
	CuisineBakery        Cuisine = "bakery"
	CuisineDessert       Cuisine = "dessert"
)

// Cuisines lists every known cuisine grouped as asian, western, category, other.
var Cuisines = []Cuisine{
	CuisineVietnamese, CuisineChinese, CuisineJapanese, CuisineKorean, CuisineThai,
	CuisineAmerican, CuisineItalian, CuisineFrench, CuisineMexican,
	CuisinePizza, CuisineBurger, CuisineSeafood, CuisineBBQ,
	CuisineInternational, CuisineFusion, CuisineStreetFood, CuisineCafe, CuisineBakery, CuisineDessert,
}

// ParseCuisine resolves s case-insensitively against Cuisines.
func ParseCuisine(s string) (Cuisine, bool) {
	key := enumKey(s)
	for _, c := range Cuisines {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// District is a city district matched against a venue's free-text address.
type District string

const (
	DistrictD1        District = "District 1"
	DistrictD2        District = "District 2"
	DistrictD3        District = "District 3"
	DistrictD4        District = "District 4"
	DistrictD5        District = "District 5"
	DistrictD7        District = "District 7"
	DistrictD8        District = "District 8"
	DistrictBinhThanh District = "Binh Thanh"
	DistrictThuDuc    District = "Thu Duc"
)

// Districts lists every known district.
var Districts = []District{
	DistrictD1, DistrictD2, DistrictD3, DistrictD4, DistrictD5,
	DistrictD7, DistrictD8, DistrictBinhThanh, DistrictThuDuc,
}

// ParseDistrict resolves s case-insensitively against Districts.
func ParseDistrict(s string) (District, bool) {
	key := enumKey(s)
	for _, d := range Districts {
		if strings.ToLower(string(d)) == key {
			return d, true
		}
	}
	return "", false
}

// PriceRange is a coarse price bucket. The zero value reads as PriceMedium.
type PriceRange string

const (
	PriceLow    PriceRange = "low"
	PriceMedium PriceRange = "medium"
	PriceHigh   PriceRange = "high"
)

// PriceRanges lists the buckets in ascending order.
var PriceRanges = []PriceRange{PriceLow, PriceMedium, PriceHigh}

// ParsePriceRange resolves s case-insensitively.
func ParsePriceRange(s string) (PriceRange, bool) {
	switch PriceRange(enumKey(s)) {
	case PriceLow:
		return PriceLow, true
	case PriceMedium:
		return PriceMedium, true
	case PriceHigh:
		return PriceHigh, true
	}
	return "", false
}

// Rank orders price buckets low(0) < medium(1) < high(2).
func (p PriceRange) Rank() int {
	switch p {
	case PriceLow:
		return 0
	case PriceHigh:
		return 2
	default:
		return 1
	}
}

func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Coordinates is a display-only lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Website is a labelled link.
type Website struct {
	URL   string `json:"url" yaml:"url"`
	Label string `json:"label" yaml:"label"`
}

// Contact holds optional contact details.
type Contact struct {
	Phone          string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email          string `json:"email,omitempty" yaml:"email,omitempty"`
	PhoneClickable string `json:"phoneClickable,omitempty" yaml:"phoneClickable,omitempty"`
}

// Venue is the canonical record every source is normalized into.
type Venue struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Type          LocationType      `json:"type" yaml:"type"`
	Cuisine       Cuisine           `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	FullAddress   string            `json:"fullAddress" yaml:"fullAddress"`
	Coordinates   *Coordinates      `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	GoogleMapsURL string            `json:"googleMapsUrl,omitempty" yaml:"googleMapsUrl,omitempty"`
	Features      []string          `json:"features" yaml:"features"`
	PriceRange    PriceRange        `json:"priceRange,omitempty" yaml:"priceRange,omitempty"`
	Website       *Website          `json:"website,omitempty" yaml:"website,omitempty"`
	Contact       *Contact          `json:"contact,omitempty" yaml:"contact,omitempty"`
	OpeningHours  map[string]string `json:"openingHours,omitempty" yaml:"openingHours,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Images        []string          `json:"images,omitempty" yaml:"images,omitempty"`
	Rating        float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
	Reviews       int               `json:"reviews,omitempty" yaml:"reviews,omitempty"`
	SubmittedAt   *time.Time        `json:"submittedAt,omitempty" yaml:"submittedAt,omitempty"`
	SuggestedBy   string            `json:"suggestedBy,omitempty" yaml:"suggestedBy,omitempty"`
	Votes         int               `json:"votes" yaml:"votes,omitempty"`
	VotedBy       VoterSet          `json:"-" yaml:"-"`
}

// EffectivePrice returns the stored price, or PriceMedium when none is stored.
func (v *Venue) EffectivePrice() PriceRange {
	if v.PriceRange == "" {
		return PriceMedium
	}
	return v.PriceRange
}

// HasVoted reports whether voter has voted for v.
func (v *Venue) HasVoted(voter string) bool {
	return v.VotedBy.Has(voter)
}

// Clone returns a copy of v whose slices, maps and pointers are not shared.
func (v Venue) Clone() Venue {
	out := v
	out.Features = slices.Clone(v.Features)
	out.Images = slices.Clone(v.Images)
	if v.OpeningHours != nil {
		out.OpeningHours = make(map[string]string, len(v.OpeningHours))
		for k, h := range v.OpeningHours {
			out.OpeningHours[k] = h
		}
	}
	if v.Coordinates != nil {
		c := *v.Coordinates
		out.Coordinates = &c
	}
	if v.Website != nil {
		w := *v.Website
		out.Website = &w
	}
	if v.Contact != nil {
		c := *v.Contact
		out.Contact = &c
	}
	if v.SubmittedAt != nil {
		t := *v.SubmittedAt
		out.SubmittedAt = &t
	}
	out.VotedBy = v.VotedBy.Clone()
	return out
}
