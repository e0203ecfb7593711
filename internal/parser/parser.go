// Package parser decodes and encodes the curated catalog document.
package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/saigoneats/internal/models"
)

// Catalog is the on-disk shape of the curated list.
type Catalog struct {
	Venues []models.Venue `yaml:"venues"`
}

// ParseCatalog decodes a YAML (or JSON) catalog. Both a {venues: [...]}
// document and a bare list are accepted. An empty document yields an empty
// list. Records are returned as written; validation happens on ingest.
func ParseCatalog(data []byte) ([]models.Venue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []models.Venue{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("parser: decode catalog: %w", err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return []models.Venue{}, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []models.Venue
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("parser: decode venues: %w", err)
		}
		return nonNil(list), nil
	case yaml.MappingNode:
		var c Catalog
		if err := root.Decode(&c); err != nil {
			return nil, fmt.Errorf("parser: decode venues: %w", err)
		}
		return nonNil(c.Venues), nil
	}
	return nil, fmt.Errorf("parser: catalog must be a list or a mapping with a venues key")
}

// EncodeCatalog renders venues as a {venues: [...]} YAML document.
func EncodeCatalog(venues []models.Venue) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Catalog{Venues: nonNil(venues)}); err != nil {
		return nil, fmt.Errorf("parser: encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("parser: encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

func nonNil(vs []models.Venue) []models.Venue {
	if vs == nil {
		return []models.Venue{}
	}
	return vs
}
