// Package watch rebuilds the session index when transcript files
// change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/ewhitmore/sessiondex/internal/indexdb"
	"github.com/ewhitmore/sessiondex/internal/indexer"
	"github.com/ewhitmore/sessiondex/internal/logging"
	"github.com/ewhitmore/sessiondex/internal/project"
)

var watchLog = logging.ForComponent(logging.CompWatch)

// debounceDelay coalesces the burst of events a single transcript
// append produces into one rebuild trigger.
const debounceDelay = 100 * time.Millisecond

// Watcher triggers full index rebuilds from filesystem events on the
// projects root. Rebuilds run sequentially on the Run goroutine, at
// most one per minInterval.
type Watcher struct {
	store   *indexdb.Store
	root    string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
}

// New creates a watcher over the projects root. minInterval is the
// minimum delay between rebuilds; values <= 0 fall back to 2s.
func New(store *indexdb.Store, root string, minInterval time.Duration) (*Watcher, error) {
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		store:   store,
		root:    root,
		watcher: fsw,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}, nil
}

// Run performs an initial build, then blocks rebuilding on changes
// until ctx is cancelled. Returns nil on cancellation; a failed
// rebuild or an unwatchable root ends the loop with its error.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	// Transcripts only exist at the project level, so watch the root
	// plus its immediate subdirectories rather than the whole tree.
	entries, _ := os.ReadDir(w.root)
	for _, e := range entries {
		if e.IsDir() {
			_ = w.watcher.Add(filepath.Join(w.root, e.Name()))
		}
	}

	if _, err := indexer.Build(w.store, w.root); err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	var debounceMu sync.Mutex
	defer func() {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.shouldRebuild(event) {
				continue
			}

			debounceMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
			debounceMu.Unlock()

		case <-trigger:
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			if _, err := indexer.Build(w.store, w.root); err != nil {
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			watchLog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// shouldRebuild reports whether event touches indexed state. A new
// project directory also gets added to the watch set.
func (w *Watcher) shouldRebuild(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, ".jsonl") || base == project.SidecarFileName {
		return true
	}

	if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == w.root {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
			watchLog.Debug("watch_project_added", slog.String("dir", base))
			return true
		}
	}
	return false
}
