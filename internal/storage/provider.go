// Package storage abstracts the curated catalog file.
package storage

import "github.com/starford/saigoneats/internal/models"

// Source is a single curated catalog document.
type Source interface {
	// Path returns the absolute path of the document.
	Path() string
	// Read returns the raw bytes of the document.
	Read() ([]byte, error)
	// Write atomically replaces the document.
	Write(content []byte) error
	// Stat returns the checksum and modification time of the document.
	Stat() (models.SourceMeta, error)
}
