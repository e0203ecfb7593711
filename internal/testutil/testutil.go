// Package testutil provides shared test helpers for setting up catalog files
// and feed databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/saigoneats/internal/feed"
	"github.com/starford/saigoneats/internal/storage"
)

// TestDB creates a temporary SQLite feed database that is automatically
// cleaned up.
func TestDB(t *testing.T) *feed.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "saigoneats-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := feed.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCatalog creates a temporary curated file holding content. An empty
// content leaves the file absent.
func TestCatalog(t *testing.T, content string) storage.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "venues.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	src, err := storage.NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Catalog is a small curated list used across package tests.
const Catalog = `venues:
  - id: pho-hoa
    name: Phở Hòa Pasteur
    type: restaurant
    cuisine: vietnamese
    fullAddress: 260C Pasteur Street, District 3, Ho Chi Minh City
    features: [dine-in, breakfast]
    priceRange: low
    rating: 4.2
  - id: pizza-4ps
    name: Pizza 4P's
    type: restaurant
    cuisine: pizza
    fullAddress: 8 Thu Khoa Huan Street, District 1, Ho Chi Minh City
    features: [dine-in, reservation]
    priceRange: high
    rating: 4.7
  - id: workshop
    name: The Workshop
    type: coffee shop
    fullAddress: 27 Ngo Duc Ke, District 1, Ho Chi Minh City
    features: [coffee, wifi]
    rating: 4.5
`
