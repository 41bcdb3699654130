// Package watch monitors an export tree and triggers full rebuilds when
// files change. Rebuilds are debounced so editor save bursts and bulk
// re-exports collapse into a single run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildFunc runs one full build. It is never invoked concurrently.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors a directory tree for changes and triggers rebuilds.
type Watcher struct {
	root         string
	rebuild      RebuildFunc
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	rebuildChan  chan struct{}
	debounceTime time.Duration
}

// Option adjusts watcher behavior.
type Option func(*Watcher)

// WithDebounce overrides the default debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounceTime = d }
}

// New creates a watcher over the given source tree.
func New(root string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}

	w := &Watcher{
		root:         absRoot,
		rebuild:      rebuild,
		watcher:      fsw,
		stopChan:     make(chan struct{}),
		rebuildChan:  make(chan struct{}, 1),
		debounceTime: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the tree and launches the watch goroutines. It
// returns immediately; rebuilds run until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return err
	}

	slog.Info("Watching for changes", "root", w.root, "debounce", w.debounceTime)

	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)

	return nil
}

// Stop terminates the watch goroutines and releases the OS watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	close(w.stopChan)
	return w.watcher.Close()
}

// addTree registers every directory under root. fsnotify watches are
// not recursive, so each subdirectory needs its own registration.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be registered before their
			// contents can be seen.
			if event.Op&fsnotify.Create != 0 {
				if err := w.maybeAddDir(event.Name); err != nil {
					slog.Warn("Could not watch new directory", "path", event.Name, "error", err)
				}
			}
			slog.Debug("Change detected", "path", event.Name, "op", event.Op.String())
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) maybeAddDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.addTree(path)
}

// rebuildLoop serializes debounced rebuilds.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.rebuildChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", "error", err)
			}
		}
	}
}

// trigger requests a rebuild; a pending request absorbs the new one.
func (w *Watcher) trigger() {
	select {
	case w.rebuildChan <- struct{}{}:
	default:
	}
}
