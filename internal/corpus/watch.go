package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-imports corpus files when they change on disk. Only facts new
// to the loader are trained, so a rewrite of an existing file costs one
// read and no retraining.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	sources  map[string]Source // keyed by cleaned absolute path
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// reloaded, when set, is called after every completed re-import.
	reloaded func(path string, imp Import)
}

// NewWatcher prepares a Watcher for sources. Nothing is watched until Start.
func NewWatcher(l *Loader, sources ...Source) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("corpus: create watcher: %w", err)
	}

	w := &Watcher{
		loader:   l,
		watcher:  fw,
		logger:   l.logger,
		sources:  make(map[string]Source, len(sources)),
		debounce: 250 * time.Millisecond,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, src := range sources {
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("corpus: resolve %s: %w", src.Path, err)
		}
		w.sources[filepath.Clean(abs)] = src
	}
	return w, nil
}

// Start watches the directories holding every source and returns. Editors
// often replace files rather than write them, so directories are watched
// instead of the files themselves.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]struct{})
	for path := range w.sources {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("corpus watch failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.logger.Info("watching corpus directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the watch and waits for any in-flight re-import.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("corpus watcher close", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("corpus watcher error", zap.Error(err))

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)
	if _, ok := w.sources[path]; !ok {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// flush re-imports every source whose last event is older than the
// debounce window.
func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		src := w.sources[path]
		imports, err := w.loader.Load(ctx, src)
		if err != nil {
			w.logger.Warn("corpus re-import failed", zap.String("path", src.Path), zap.Error(err))
			continue
		}
		if w.reloaded != nil && len(imports) == 1 {
			w.reloaded(src.Path, imports[0])
		}
	}
}
