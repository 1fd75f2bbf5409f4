package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"log/slog"

	"github.com/fsnotify/fsnotify"

	"hopper/internal/config"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/metrics"
	"hopper/internal/queue"
)

// Watcher feeds the work queue from filesystem creation events. One enqueue
// happens per observed create; no deduplication is attempted.
type Watcher struct {
	cfg    *config.Config
	queue  *queue.Queue
	store  *journal.Store
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a watcher bound to the shared queue. The journal store may be
// nil, in which case discoveries are not recorded.
func New(cfg *config.Config, q *queue.Queue, store *journal.Store, logger *slog.Logger) *Watcher {
	watchLogger := logger
	if watchLogger != nil {
		watchLogger = watchLogger.With(logging.String("component", "watcher"))
	}
	return &Watcher{cfg: cfg, queue: q, store: store, logger: watchLogger}
}

// Start registers the input directory with the OS watcher and launches the
// event loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.Paths.InputDir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch input directory: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.fsw = fsw
	w.cancel = cancel
	w.done = done
	w.running = true

	go w.loop(loopCtx, fsw, done)

	w.log().Info("watching input directory",
		logging.String(logging.FieldPath, w.cfg.Paths.InputDir),
		logging.String("extension", w.cfg.Processing.Extension),
	)
	return nil
}

// Stop closes the OS watcher and waits for the event loop to drain. Safe to
// call repeatedly and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	done := w.done
	w.running = false
	w.cancel = nil
	w.fsw = nil
	w.done = nil
	w.mu.Unlock()

	cancel()
	_ = fsw.Close()
	<-done
	w.log().Info("watcher stopped")
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.handleCreate(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log().Warn("filesystem watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleCreate(ctx context.Context, path string) {
	if filepath.Ext(path) != w.cfg.Processing.Extension {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		w.log().Debug("created path vanished before inspection",
			logging.String(logging.FieldPath, path), logging.Error(err))
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	if w.store != nil {
		if _, err := w.store.RecordDiscovered(ctx, path); err != nil {
			w.log().Warn("could not journal discovery",
				logging.String(logging.FieldPath, path), logging.Error(err))
		}
	}

	task := queue.NewTask(path)
	if err := w.queue.Put(ctx, task); err != nil {
		w.log().Warn("could not enqueue discovered file",
			logging.String(logging.FieldPath, path), logging.Error(err))
		return
	}

	metrics.FileDiscovered()
	w.log().Info("file detected",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldTaskID, task.ID),
	)
}

func (w *Watcher) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return logging.NewNop()
}
