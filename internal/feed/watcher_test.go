package feed

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/saigoneats/internal/models"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	db := testDB(t)
	src, path := testSource(t, twoVenues)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go Watch(ctx, src, db, sink, quietLogger(), func(models.SourceMeta) {
		reloads.Add(1)
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(path, []byte(twoVenues+"  - id: bar\n    name: Bar\n    type: bar\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		curated, _ := sink.snapshot()
		return len(curated) == 3
	}, "watcher did not reload the curated file")

	if reloads.Load() < 1 {
		t.Error("reload callback not called")
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	db := testDB(t)
	src, _ := testSource(t, twoVenues)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, src, db, sink, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	if err := src.Write([]byte("- id: only\n  name: Only\n  type: dessert\n")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		curated, _ := sink.snapshot()
		return len(curated) == 1 && curated[0].ID == "only"
	}, "watcher did not pick up rename-replaced file")
}

func TestWatcher_UnchangedContentSkipped(t *testing.T) {
	db := testDB(t)
	src, path := testSource(t, twoVenues)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, src, db, sink, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	// Same bytes: checksum matches, no reload.
	_ = os.WriteFile(path, []byte(twoVenues), 0o644)
	time.Sleep(600 * time.Millisecond)

	if _, n := sink.snapshot(); n != 0 {
		t.Errorf("reloads = %d, want 0", n)
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	db := testDB(t)
	src, path := testSource(t, twoVenues)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, src, db, sink, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0o644)
	time.Sleep(600 * time.Millisecond)

	if _, n := sink.snapshot(); n != 0 {
		t.Errorf("reloads = %d, want 0", n)
	}
}
