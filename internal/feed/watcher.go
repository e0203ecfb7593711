package feed

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/storage"
)

const debounce = 200 * time.Millisecond

// ReloadCallback is called after a watcher-driven reload of the curated
// file.
type ReloadCallback func(meta models.SourceMeta)

// Watch starts an fsnotify watcher on the directory holding the curated
// file and reloads it into sink until ctx is cancelled. Bursts of events
// are debounced, and a reload is skipped when the content checksum is
// unchanged. The directory is watched rather than the file so that
// editors replacing it by rename are still seen.
func Watch(ctx context.Context, src storage.Source, db Repository, sink Sink, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(src.Path())
	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		return err
	}

	var last string
	if meta, err := src.Stat(); err == nil {
		last = meta.Checksum
	}

	logger.Info("watcher: started", slog.String("path", target))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			meta, err := src.Stat()
			if err != nil {
				logger.Warn("watcher: stat failed", slog.String("path", target), slog.String("error", err.Error()))
				continue
			}
			if meta.Checksum == last {
				logger.Debug("watcher: unchanged", slog.String("path", target))
				continue
			}
			meta, err = SyncCurated(src, db, sink, logger)
			if err != nil {
				logger.Warn("watcher: reload failed", slog.String("path", target), slog.String("error", err.Error()))
				continue
			}
			last = meta.Checksum
			logger.Info("watcher: reloaded", slog.String("path", target), slog.String("checksum", meta.Checksum))
			if cb != nil {
				cb(meta)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
