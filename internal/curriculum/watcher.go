package curriculum

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a Loader when one of its documents changes on disk. Editors
// usually write a file in several steps, so events are debounced before reloading.
type Watcher struct {
	loader   *Loader
	log      *logrus.Logger
	debounce time.Duration
	onReload func(*Index)

	watcher *fsnotify.Watcher
	files   map[string]struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook is called with every index swapped in by the watcher.
func WithReloadHook(fn func(*Index)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher watches the directories holding the loader's documents. Directories
// are watched rather than files so that atomic renames are still seen.
func NewWatcher(loader *Loader, log *logrus.Logger, opts ...WatcherOption) (*Watcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		loader:   loader,
		log:      log,
		debounce: defaultDebounce,
		watcher:  fw,
		files:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	curriculumPath, videosPath := loader.Paths()
	dirs := make(map[string]struct{})
	for _, p := range []string{curriculumPath, videosPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return w, nil
}

// Start begins watching in the background until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run(ctx, w.stopCh, w.doneCh)
}

// Stop ends the watch loop, waits for it and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.WithFields(logrus.Fields{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("Curriculum document changed")

			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Curriculum watcher error")
		case <-timer.C:
			pending = false
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

func (w *Watcher) reload(ctx context.Context) {
	idx, err := w.loader.Reload(ctx)
	if err != nil {
		w.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Curriculum reload failed, keeping previous index")
		return
	}

	w.log.WithFields(logrus.Fields{
		"grades": len(idx.Grades()),
	}).Info("Curriculum reloaded")

	if w.onReload != nil {
		w.onReload(idx)
	}
}
