package feed

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/parser"
	"github.com/starford/saigoneats/internal/storage"
)

// Sink receives full snapshots of both venue sources. *catalog.Store
// implements it.
type Sink interface {
	ReplaceCurated(records []models.Venue)
	ReplaceSubmissions(raws []models.RawSubmission)
}

// Sync reloads the curated file and the submission feed into sink.
func Sync(src storage.Source, db Repository, sink Sink, logger *slog.Logger) (models.SourceMeta, error) {
	meta, err := SyncCurated(src, db, sink, logger)
	if err != nil {
		return meta, err
	}
	return meta, SyncSubmissions(db, sink)
}

// SyncCurated parses the curated file, overlays persisted vote tallies and
// hands the result to sink. A missing file is treated as an empty catalog.
func SyncCurated(src storage.Source, db Repository, sink Sink, logger *slog.Logger) (models.SourceMeta, error) {
	meta, err := src.Stat()
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("sync: curated file missing", slog.String("path", src.Path()))
		venues, err := overlayVotes(db, nil)
		if err != nil {
			return models.SourceMeta{}, err
		}
		sink.ReplaceCurated(venues)
		return models.SourceMeta{Path: src.Path()}, nil
	}
	if err != nil {
		return models.SourceMeta{}, err
	}

	data, err := src.Read()
	if err != nil {
		return models.SourceMeta{}, err
	}
	venues, err := parser.ParseCatalog(data)
	if err != nil {
		return models.SourceMeta{}, err
	}
	venues, err = overlayVotes(db, venues)
	if err != nil {
		return models.SourceMeta{}, err
	}

	sink.ReplaceCurated(venues)
	logger.Debug("sync: curated loaded",
		slog.String("path", meta.Path),
		slog.Int("records", len(venues)))
	return meta, nil
}

// SyncSubmissions hands every stored submission, with tallies, to sink.
func SyncSubmissions(db Repository, sink Sink) error {
	subs, err := db.ListSubmissions("")
	if err != nil {
		return err
	}
	sink.ReplaceSubmissions(subs)
	return nil
}

func overlayVotes(db Repository, venues []models.Venue) ([]models.Venue, error) {
	tallies, err := db.Tallies()
	if err != nil {
		return nil, err
	}
	for i := range venues {
		set, ok := tallies[venues[i].ID]
		if !ok {
			continue
		}
		venues[i].Votes += set.Len()
		venues[i].VotedBy = set
	}
	return venues, nil
}
