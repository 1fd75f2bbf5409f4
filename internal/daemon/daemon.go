package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"hopper/internal/config"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/metrics"
	"hopper/internal/processor"
	"hopper/internal/queue"
	"hopper/internal/watcher"
	"hopper/internal/worker"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *journal.Store

	queue   *queue.Queue
	watcher *watcher.Watcher
	pool    *worker.Pool
	metrics *metrics.Server

	logPath  string
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	Workers       int
	QueueDepth    int
	Journal       map[queue.Status]int
	JournalDBPath string
	LockFilePath  string
	InputDir      string
	OutputDir     string
	MetricsAddr   string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *journal.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, journal store, and logger")
	}

	q := queue.New(cfg.Processing.QueueCapacity)
	proc := processor.New(cfg, store, logger)
	lockPath := cfg.LockPath()

	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		queue:    q,
		watcher:  watcher.New(cfg, q, store, logger),
		pool:     worker.NewPool(cfg, q, proc, logger),
		logPath:  filepath.Join(cfg.Paths.LogDir, "hopper.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and brings the services up: metrics first,
// then the worker pool, then the watcher, so tasks are never admitted
// before a worker can claim them.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another hopper daemon instance is already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("ensure directories: %w", err)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	// The HTTP server cannot be reused after shutdown, so it is rebuilt on
	// every start.
	d.metrics = metrics.NewServer(d.cfg, d.store, d.queue.Len, d.logger)
	if err := d.metrics.Start(d.ctx); err != nil {
		d.rollbackStart()
		return fmt.Errorf("start metrics server: %w", err)
	}

	if err := d.pool.Start(d.ctx); err != nil {
		d.metrics.Stop()
		d.rollbackStart()
		return fmt.Errorf("start worker pool: %w", err)
	}

	if err := d.watcher.Start(d.ctx); err != nil {
		d.stopWorkers()
		d.metrics.Stop()
		d.rollbackStart()
		return fmt.Errorf("start watcher: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("hopper daemon started",
		logging.String("lock", d.lockPath),
		logging.String("input_dir", d.cfg.Paths.InputDir),
		logging.String("output_dir", d.cfg.Paths.OutputDir),
		logging.Int("workers", d.cfg.Processing.Workers),
	)
	return nil
}

// Stop winds the services down in admission order: the watcher first so no
// new tasks arrive, then one sentinel per worker, then a bounded join.
// Calling Stop before Start, or twice, is a no-op.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.watcher.Stop()

	sentinelCtx, cancelSentinels := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout())
	defer cancelSentinels()
	for i := 0; i < d.cfg.Processing.Workers; i++ {
		if err := d.queue.PutStop(sentinelCtx); err != nil {
			d.logger.Warn("could not enqueue shutdown sentinel", logging.Error(err))
			break
		}
	}

	if !d.pool.Wait(d.cfg.ShutdownTimeout()) {
		d.logger.Warn("workers did not drain before timeout, cancelling",
			logging.Duration("timeout", d.cfg.ShutdownTimeout()))
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.metrics.Stop()
	d.metrics = nil

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("hopper daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		Workers:       d.cfg.Processing.Workers,
		QueueDepth:    d.queue.Len(),
		JournalDBPath: d.cfg.JournalPath(),
		LockFilePath:  d.lockPath,
		InputDir:      d.cfg.Paths.InputDir,
		OutputDir:     d.cfg.Paths.OutputDir,
		MetricsAddr:   d.metrics.Addr(),
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.Journal = stats
	}
	return status
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// stopWorkers drains an already started pool during a failed startup.
func (d *Daemon) stopWorkers() {
	sentinelCtx, cancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout())
	defer cancel()
	for i := 0; i < d.cfg.Processing.Workers; i++ {
		if err := d.queue.PutStop(sentinelCtx); err != nil {
			break
		}
	}
	_ = d.pool.Wait(d.cfg.ShutdownTimeout())
}

func (d *Daemon) rollbackStart() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	d.metrics = nil
	_ = d.lock.Unlock()
}
