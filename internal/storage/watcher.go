package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"presupuesto/internal/log"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// ReloadFunc re-reads one backing document.
type ReloadFunc func(ctx context.Context) error

// Watcher reloads stores when their JSON documents change on disk, e.g.
// when another session of the program saves. Parent directories are watched
// so atomic rename-into-place saves are seen.
type Watcher struct {
	logger   *log.Logger
	debounce time.Duration

	mu      sync.Mutex
	targets map[string]ReloadFunc
}

func NewWatcher(logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Watcher{
		logger:   logger.WithComponent(log.ComponentWatcher),
		debounce: DefaultDebounce,
		targets:  map[string]ReloadFunc{},
	}
}

// SetDebounce overrides the delay between the last event and the reload.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Add registers reload for path. It must be called before Run.
func (w *Watcher) Add(path string, reload ReloadFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	w.mu.Lock()
	w.targets[abs] = reload
	w.mu.Unlock()
	return nil
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	w.mu.Lock()
	dirs := map[string]struct{}{}
	for path := range w.targets {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	w.mu.Unlock()
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", log.FieldFile, dir)
	}

	timers := map[string]*time.Timer{}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			reload, ok := w.targets[path]
			w.mu.Unlock()
			if !ok {
				continue
			}
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				if err := reload(ctx); err != nil {
					w.logger.WarnContext(ctx, "Reload failed", log.FieldFile, path, log.FieldError, err)
					return
				}
				w.logger.InfoContext(ctx, "Reloaded after change on disk", log.FieldFile, path)
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "File watcher error", log.FieldError, err)
		}
	}
}
