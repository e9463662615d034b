// Package watcher ingests files dropped into a watched directory.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"docchat/internal/domain"
)

// Watcher monitors one directory and ingests supported files as they appear.
// Editors fire several events per save, so paths are debounced before the
// ingest call.
type Watcher struct {
	ingest   func(ctx context.Context, paths []string) error
	loader   domain.Loader
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a watcher. ingest is called with debounced batches of paths.
func New(ingest func(ctx context.Context, paths []string) error, loader domain.Loader, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		ingest:   ingest,
		loader:   loader,
		debounce: 500 * time.Millisecond,
		log:      log,
		pending:  make(map[string]struct{}),
	}
}

// Watch blocks until the context is cancelled, ingesting created and
// modified supported files. Ingest failures are logged and do not stop the
// watch loop.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.log.Info("watching directory", zap.String("dir", dir))

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.loader.Supported(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = struct{}{}
			w.mu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if err := w.ingest(ctx, paths); err != nil {
		w.log.Warn("auto-ingest failed", zap.Strings("paths", paths), zap.Error(err))
	}
}
