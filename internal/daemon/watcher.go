package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/lastupdated/internal/logfields"
)

// DocsWatcher monitors the documentation tree and emits debounced refresh
// triggers when content changes.
type DocsWatcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	triggers chan struct{}
	stopChan chan struct{}
}

// NewDocsWatcher creates a watcher over the docs directory tree.
func NewDocsWatcher(root string, debounce time.Duration) (*DocsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &DocsWatcher{
		root:     root,
		watcher:  watcher,
		debounce: debounce,
		triggers: make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}, nil
}

// Triggers returns the channel refresh triggers are delivered on.
func (w *DocsWatcher) Triggers() <-chan struct{} { return w.triggers }

// Start adds all directories under the root to the watch set and begins the
// event loop.
func (w *DocsWatcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	slog.Info("Starting docs watcher", logfields.Path(w.root))
	go w.watchLoop(ctx)
	return nil
}

// Stop shuts down the watcher.
func (w *DocsWatcher) Stop() {
	close(w.stopChan)
	if err := w.watcher.Close(); err != nil {
		slog.Error("Error closing file watcher", logfields.Error(err))
	}
}

// addTree watches every directory under root, skipping hidden ones.
func (w *DocsWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if addErr := w.watcher.Add(p); addErr != nil {
			return fmt.Errorf("failed to watch %s: %w", p, addErr)
		}
		return nil
	})
}

func (w *DocsWatcher) watchLoop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

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
			// New subdirectories need to join the watch set.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if err := w.addTree(event.Name); err != nil {
					slog.Debug("Could not extend watch set", logfields.Path(event.Name))
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Docs change detected", logfields.Path(event.Name))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.trigger)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Docs watcher error", logfields.Error(err))
		}
	}
}

func (w *DocsWatcher) trigger() {
	select {
	case w.triggers <- struct{}{}:
	default:
		// A refresh is already pending.
	}
}
