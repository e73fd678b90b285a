package kv

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change names a watched key whose value or presence changed.
type Change struct {
	Key string
}

// debounce groups the burst of filesystem events a single SQLite commit
// produces (main file, -wal, -shm) into one scan.
const debounce = 40 * time.Millisecond

type entry struct {
	value   string
	present bool
}

// Watcher turns writes to the database file made by any process into
// per-key change notifications.
type Watcher struct {
	store    Storage
	path     string
	keys     []string
	fs       *fsnotify.Watcher
	changes  chan Change
	snapshot map[string]entry
	logger   *slog.Logger
}

// NewWatcher watches the directory holding the database at path and reports
// changes to keys.
func NewWatcher(store Storage, path string, keys []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	w := &Watcher{
		store:   store,
		path:    path,
		keys:    keys,
		fs:      fsw,
		changes: make(chan Change, len(keys)*4),
		logger:  logger,
	}
	w.snapshot = w.read(context.Background())
	return w, nil
}

// Changes delivers key change notifications. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	base := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("settings watcher error", "err", err)
		case <-fire:
			fire = nil
			for _, c := range w.scan(ctx) {
				select {
				case w.changes <- c:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// scan re-reads the watched keys and returns the ones that differ from the
// previous snapshot.
func (w *Watcher) scan(ctx context.Context) []Change {
	next := w.read(ctx)
	var out []Change
	for _, k := range w.keys {
		if next[k] != w.snapshot[k] {
			out = append(out, Change{Key: k})
		}
	}
	w.snapshot = next
	return out
}

func (w *Watcher) read(ctx context.Context) map[string]entry {
	out := make(map[string]entry, len(w.keys))
	for _, k := range w.keys {
		v, ok, err := w.store.Get(ctx, k)
		if err != nil {
			// Keep the previous value so a transient read error does not
			// look like a deletion.
			w.logger.Warn("reading watched setting", "key", k, "err", err)
			out[k] = w.snapshot[k]
			continue
		}
		out[k] = entry{value: v, present: ok}
	}
	return out
}
