package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"hopper/internal/config"
	"hopper/internal/logging"
	"hopper/internal/pipeline"
	"hopper/internal/queue"
)

// TaskHandler processes one claimed task to a terminal state.
type TaskHandler interface {
	Process(ctx context.Context, task queue.Task) error
}

// Pool owns the worker goroutines. Size is fixed at construction time; the
// pool never grows with backlog.
type Pool struct {
	cfg     *config.Config
	queue   *queue.Queue
	handler TaskHandler
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewPool builds a pool bound to the shared queue.
func NewPool(cfg *config.Config, q *queue.Queue, handler TaskHandler, logger *slog.Logger) *Pool {
	return &Pool{cfg: cfg, queue: q, handler: handler, logger: logging.NewComponentLogger(logger, "worker")}
}

// Start launches the configured number of workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("worker pool already running")
	}
	p.running = true

	count := p.cfg.Processing.Workers
	p.wg.Add(count)
	for i := 1; i <= count; i++ {
		go p.run(ctx, i)
	}
	p.logger.Info("worker pool started", logging.Int("workers", count))
	return nil
}

// Wait blocks until every worker has exited or the timeout lapses, and
// reports whether shutdown completed cleanly. On timeout the pool stays
// marked running since workers may still be draining tasks.
func (p *Pool) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		return true
	case <-timer.C:
		return false
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	workerCtx := pipeline.WithWorkerID(ctx, id)
	logger := logging.WithContext(workerCtx, p.logger)
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopping, context done")
			return
		default:
		}

		task, result := p.queue.Take(p.cfg.PollTimeout())
		switch result {
		case queue.TakeTimeout:
			continue
		case queue.TakeStop:
			logger.Debug("worker stopping, sentinel received")
			return
		case queue.TakeTask:
			if err := p.handler.Process(workerCtx, task); err != nil {
				// Already logged and journaled by the processor.
				logger.Debug("task ended in failure",
					logging.String(logging.FieldPath, task.Path), logging.Error(err))
			}
		}
	}
}
